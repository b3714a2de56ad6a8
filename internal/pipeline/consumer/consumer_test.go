package consumer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/pipeline"
	apperrors "github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/kafka"
)

type fakeRunner struct {
	mu        sync.Mutex
	calls     []pipeline.Record
	reprocess []bool
	err       error
}

func (f *fakeRunner) Run(_ context.Context, rec pipeline.Record, reprocess bool) (*pipeline.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, rec)
	f.reprocess = append(f.reprocess, reprocess)
	if f.err != nil {
		return nil, f.err
	}
	return &pipeline.Result{ID: rec.ID, Text: rec.Text, Tokens: []string{rec.Text}}, nil
}

type fakePublisher struct {
	events []kafka.Event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, ev kafka.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func TestHandleMessagePublishes(t *testing.T) {
	runner := &fakeRunner{}
	pub := &fakePublisher{}
	h := HandleMessage(runner, pub, false)

	if err := h(context.Background(), []byte("k"), []byte(`{"id":"t1","text":"hello"}`)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(runner.calls) != 1 || runner.calls[0].ID != "t1" || runner.calls[0].Text != "hello" {
		t.Fatalf("runner calls = %+v", runner.calls)
	}
	if runner.reprocess[0] {
		t.Error("reprocess should default to false")
	}
	if len(pub.events) != 1 || pub.events[0].Key != "t1" {
		t.Fatalf("published = %+v", pub.events)
	}
	if res, ok := pub.events[0].Value.(*pipeline.Result); !ok || res.ID != "t1" {
		t.Errorf("published value = %#v", pub.events[0].Value)
	}
}

func TestHandleMessageKeyAsID(t *testing.T) {
	runner := &fakeRunner{}
	h := HandleMessage(runner, nil, true)
	if err := h(context.Background(), []byte("from-key"), []byte(`{"text":"hi"}`)); err != nil {
		t.Fatal(err)
	}
	if runner.calls[0].ID != "from-key" {
		t.Errorf("id = %q, want from-key", runner.calls[0].ID)
	}
	if !runner.reprocess[0] {
		t.Error("reprocessAll should force reprocessing")
	}
}

func TestHandleMessageRejectsBadInput(t *testing.T) {
	runner := &fakeRunner{}
	h := HandleMessage(runner, &fakePublisher{}, false)
	for _, value := range []string{`not json`, `{"text":"no id"}`} {
		if err := h(context.Background(), nil, []byte(value)); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("handler(%q) = %v, want ErrInvalidInput", value, err)
		}
	}
	if len(runner.calls) != 0 {
		t.Errorf("runner called for bad input: %+v", runner.calls)
	}
}

func TestHandleMessageErrors(t *testing.T) {
	runner := &fakeRunner{err: errors.New("boom")}
	h := HandleMessage(runner, &fakePublisher{}, false)
	if err := h(context.Background(), nil, []byte(`{"id":"a","text":"x"}`)); err == nil {
		t.Error("expected pipeline error to propagate")
	}

	pub := &fakePublisher{err: errors.New("broker down")}
	h = HandleMessage(&fakeRunner{}, pub, false)
	if err := h(context.Background(), nil, []byte(`{"id":"a","text":"x"}`)); err == nil {
		t.Error("expected publish error to propagate")
	}
}
