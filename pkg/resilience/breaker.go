package resilience

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrBreakerOpen is returned without calling fn while a Breaker is open.
var ErrBreakerOpen = errors.New("breaker open")

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerProbing
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerProbing:
		return "probing"
	}
	return "unknown"
}

// BreakerConfig sets when a Breaker trips and how long it stays open.
// Counts, when set, decides which errors count as failures; by default
// every non-nil error does.
type BreakerConfig struct {
	Threshold int
	Cooldown  time.Duration
	Counts    func(error) bool
}

// Breaker stops calling a failing dependency after Threshold consecutive
// failures. Once Cooldown has passed a single trial call is let through;
// its outcome closes or reopens the breaker.
type Breaker struct {
	name   string
	cfg    BreakerConfig
	logger *slog.Logger

	mu       sync.Mutex
	state    BreakerState
	failures int
	openedAt time.Time
	now      func() time.Time
}

func NewBreaker(name string, cfg BreakerConfig) *Breaker {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.Counts == nil {
		cfg.Counts = func(err error) bool { return err != nil }
	}
	return &Breaker{
		name:   name,
		cfg:    cfg,
		logger: slog.Default().With("component", "breaker", "name", name),
		now:    time.Now,
	}
}

// Do runs fn unless the breaker is open.
func (b *Breaker) Do(fn func() error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := fn()
	b.record(err != nil && b.cfg.Counts(err))
	return err
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case BreakerOpen:
		wait := b.cfg.Cooldown - b.now().Sub(b.openedAt)
		if wait > 0 {
			return fmt.Errorf("%w: %s (retry in %v)", ErrBreakerOpen, b.name, wait.Round(time.Millisecond))
		}
		b.state = BreakerProbing
		b.logger.Info("breaker probing")
	case BreakerProbing:
		return fmt.Errorf("%w: %s (trial in flight)", ErrBreakerOpen, b.name)
	}
	return nil
}

func (b *Breaker) record(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !failed {
		if b.state != BreakerClosed {
			b.logger.Info("breaker closed")
		}
		b.state = BreakerClosed
		b.failures = 0
		return
	}
	b.failures++
	if b.state == BreakerProbing || b.failures >= b.cfg.Threshold {
		if b.state != BreakerOpen {
			b.logger.Warn("breaker opened", "consecutive_failures", b.failures)
		}
		b.state = BreakerOpen
		b.openedAt = b.now()
	}
}
