// Package tracing times the stages of one record's trip through the
// pipeline. A Trace travels in the context; stage boundaries are marked as
// they pass and the breakdown is logged once the record is done.
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type contextKey string

const traceKey contextKey = "record_trace"

// Stage is the time spent between two consecutive marks.
type Stage struct {
	Name     string
	Duration time.Duration
}

// Trace is safe for concurrent use. All methods accept a nil receiver so
// callers never need to check whether tracing is on.
type Trace struct {
	RecordID string

	mu     sync.Mutex
	start  time.Time
	last   time.Time
	stages []Stage
	attrs  map[string]any
}

// Start attaches a new Trace for recordID to ctx.
func Start(ctx context.Context, recordID string) (context.Context, *Trace) {
	now := time.Now()
	t := &Trace{
		RecordID: recordID,
		start:    now,
		last:     now,
		attrs:    make(map[string]any),
	}
	return context.WithValue(ctx, traceKey, t), t
}

// FromContext returns the Trace in ctx, or nil.
func FromContext(ctx context.Context) *Trace {
	if t, ok := ctx.Value(traceKey).(*Trace); ok {
		return t
	}
	return nil
}

// Mark closes the current stage under name and opens the next one.
func (t *Trace) Mark(name string) {
	if t == nil {
		return
	}
	now := time.Now()
	t.mu.Lock()
	t.stages = append(t.stages, Stage{Name: name, Duration: now.Sub(t.last)})
	t.last = now
	t.mu.Unlock()
}

func (t *Trace) SetAttr(key string, value any) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.attrs[key] = value
	t.mu.Unlock()
}

// Stages returns a copy of the marked stages in order.
func (t *Trace) Stages() []Stage {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Stage, len(t.stages))
	copy(out, t.stages)
	return out
}

// Elapsed is the time from Start to the latest mark.
func (t *Trace) Elapsed() time.Duration {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last.Sub(t.start)
}

// Log writes one debug line with a duration per stage.
func (t *Trace) Log(logger *slog.Logger) {
	if t == nil || !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	t.mu.Lock()
	attrs := []any{
		"record_id", t.RecordID,
		"total_us", t.last.Sub(t.start).Microseconds(),
	}
	for _, s := range t.stages {
		attrs = append(attrs, s.Name+"_us", s.Duration.Microseconds())
	}
	for k, v := range t.attrs {
		attrs = append(attrs, k, v)
	}
	t.mu.Unlock()
	logger.Debug("record trace", attrs...)
}
