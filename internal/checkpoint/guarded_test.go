package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/pipeline"
	apperrors "github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/resilience"
)

type stubCheckpoint struct {
	getErr error
	calls  int
}

func (s *stubCheckpoint) Get(_ context.Context, id string) (*pipeline.Result, error) {
	s.calls++
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &pipeline.Result{ID: id}, nil
}

func (s *stubCheckpoint) Save(context.Context, pipeline.Record, *pipeline.Result) error {
	s.calls++
	return s.getErr
}

func TestGuardedMissesDoNotTrip(t *testing.T) {
	stub := &stubCheckpoint{getErr: fmt.Errorf("%w: x", apperrors.ErrRecordNotFound)}
	g := NewGuarded(stub, resilience.BreakerConfig{Threshold: 1, Cooldown: time.Hour})
	for i := 0; i < 3; i++ {
		if _, err := g.Get(context.Background(), "x"); !errors.Is(err, apperrors.ErrRecordNotFound) {
			t.Fatalf("Get: %v", err)
		}
	}
	if g.State() != resilience.BreakerClosed || stub.calls != 3 {
		t.Errorf("state=%s calls=%d, want closed and 3", g.State(), stub.calls)
	}
}

func TestGuardedFailsFastWhenOpen(t *testing.T) {
	stub := &stubCheckpoint{getErr: errors.New("connection refused")}
	g := NewGuarded(stub, resilience.BreakerConfig{Threshold: 2, Cooldown: time.Hour})
	ctx := context.Background()
	_, _ = g.Get(ctx, "a")
	_ = g.Save(ctx, pipeline.Record{ID: "a"}, &pipeline.Result{})

	_, err := g.Get(ctx, "a")
	if !errors.Is(err, apperrors.ErrCheckpointUnavailable) {
		t.Fatalf("err = %v, want ErrCheckpointUnavailable", err)
	}
	if stub.calls != 2 {
		t.Errorf("open breaker reached the store: calls = %d", stub.calls)
	}
	if got := apperrors.HTTPStatusCode(err); got != 503 {
		t.Errorf("status = %d, want 503", got)
	}
}

func TestGuardedPassesResults(t *testing.T) {
	g := NewGuarded(&stubCheckpoint{}, resilience.BreakerConfig{})
	res, err := g.Get(context.Background(), "id-1")
	if err != nil || res.ID != "id-1" {
		t.Errorf("Get = %+v, %v", res, err)
	}
}
