package checkpoint

import (
	"context"
	"errors"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/pipeline"
	apperrors "github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/resilience"
)

// Guarded puts a circuit breaker in front of a checkpoint so an unreachable
// database fails records fast instead of stalling every worker on it. A
// miss is not a failure.
type Guarded struct {
	next    pipeline.Checkpoint
	breaker *resilience.Breaker
}

func NewGuarded(next pipeline.Checkpoint, cfg resilience.BreakerConfig) *Guarded {
	cfg.Counts = func(err error) bool {
		return !errors.Is(err, apperrors.ErrRecordNotFound)
	}
	return &Guarded{next: next, breaker: resilience.NewBreaker("checkpoint", cfg)}
}

func (g *Guarded) Get(ctx context.Context, id string) (*pipeline.Result, error) {
	var res *pipeline.Result
	err := g.breaker.Do(func() error {
		var err error
		res, err = g.next.Get(ctx, id)
		return err
	})
	return res, unavailable(err)
}

func (g *Guarded) Save(ctx context.Context, rec pipeline.Record, res *pipeline.Result) error {
	return unavailable(g.breaker.Do(func() error {
		return g.next.Save(ctx, rec, res)
	}))
}

func (g *Guarded) State() resilience.BreakerState {
	return g.breaker.State()
}

func unavailable(err error) error {
	if errors.Is(err, resilience.ErrBreakerOpen) {
		return fmt.Errorf("%w: %w", apperrors.ErrCheckpointUnavailable, err)
	}
	return err
}
