package dictionary

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	apperrors "github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/resilience"
)

// ProviderConfig wires a Provider to its corpus and cache.
type ProviderConfig struct {
	CorpusPath  string
	Store       Store
	LockTimeout time.Duration
	Retry       resilience.RetryConfig
	Metrics     *metrics.Metrics
}

// Provider hands out the process-wide Dictionary. The first Get loads it
// from the Store, or builds it from the corpus and saves it when the cache
// is missing; concurrent callers share that single load.
type Provider struct {
	cfg    ProviderConfig
	group  singleflight.Group
	mu     sync.RWMutex
	dict   *Dictionary
	logger *slog.Logger
}

func NewProvider(cfg ProviderConfig) *Provider {
	if cfg.Retry.Retryable == nil {
		cfg.Retry.Retryable = func(err error) bool {
			return !apperrors.IsMissingResource(err)
		}
	}
	return &Provider{
		cfg:    cfg,
		logger: slog.Default().With("component", "dictionary", "store", cfg.Store.Name()),
	}
}

// Get returns the loaded dictionary, loading it on first use.
func (p *Provider) Get(ctx context.Context) (*Dictionary, error) {
	p.mu.RLock()
	d := p.dict
	p.mu.RUnlock()
	if d != nil {
		return d, nil
	}
	v, err, _ := p.group.Do("load", func() (any, error) {
		p.mu.RLock()
		d := p.dict
		p.mu.RUnlock()
		if d != nil {
			return d, nil
		}
		d, err := p.load(ctx, false)
		if err != nil {
			return nil, err
		}
		p.set(d)
		return d, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrDictionaryUnavailable, err)
	}
	return v.(*Dictionary), nil
}

// Rebuild scans the corpus again, overwrites the cache and swaps the new
// dictionary in for later Get calls.
func (p *Provider) Rebuild(ctx context.Context) (*Dictionary, error) {
	v, err, _ := p.group.Do("rebuild", func() (any, error) {
		d, err := p.load(ctx, true)
		if err != nil {
			return nil, err
		}
		p.set(d)
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dictionary), nil
}

// Loaded reports whether a dictionary is in memory.
func (p *Provider) Loaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dict != nil
}

func (p *Provider) set(d *Dictionary) {
	p.mu.Lock()
	p.dict = d
	p.mu.Unlock()
	if p.cfg.Metrics != nil {
		p.cfg.Metrics.DictionaryWords.Set(float64(d.Len()))
	}
}

func (p *Provider) load(ctx context.Context, force bool) (*Dictionary, error) {
	if !force {
		d, err := p.loadCache(ctx)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, apperrors.ErrCacheNotFound) {
			return nil, err
		}
	}

	if locker, ok := p.cfg.Store.(Locker); ok {
		lockCtx := ctx
		if p.cfg.LockTimeout > 0 {
			var cancel context.CancelFunc
			lockCtx, cancel = context.WithTimeout(ctx, p.cfg.LockTimeout)
			defer cancel()
		}
		start := time.Now()
		unlock, err := locker.Lock(lockCtx)
		if err != nil {
			return nil, err
		}
		defer unlock()
		p.logger.Debug("dictionary lock acquired", "waited", time.Since(start))

		// Another process may have finished the build while we waited.
		if !force {
			d, err := p.loadCache(ctx)
			if err == nil {
				return d, nil
			}
			if !errors.Is(err, apperrors.ErrCacheNotFound) {
				return nil, err
			}
		}
	}

	d, err := p.buildFromCorpus()
	if err != nil {
		return nil, err
	}
	err = resilience.Retry(ctx, "dictionary-save", p.cfg.Retry, func() error {
		return p.cfg.Store.Save(ctx, d)
	})
	if err != nil {
		return nil, fmt.Errorf("saving dictionary cache: %w", err)
	}
	p.logger.Info("dictionary cache written", "words", d.Len())
	return d, nil
}

func (p *Provider) loadCache(ctx context.Context) (*Dictionary, error) {
	var d *Dictionary
	start := time.Now()
	err := resilience.Retry(ctx, "dictionary-load", p.cfg.Retry, func() error {
		var err error
		d, err = p.cfg.Store.Load(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("dictionary loaded from cache", "words", d.Len(), "duration", time.Since(start))
	if p.cfg.Metrics != nil {
		p.cfg.Metrics.DictionaryLoads.WithLabelValues("cache").Inc()
	}
	return d, nil
}

func (p *Provider) buildFromCorpus() (*Dictionary, error) {
	start := time.Now()
	f, err := os.Open(p.cfg.CorpusPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrCorpusNotFound, p.cfg.CorpusPath)
		}
		return nil, fmt.Errorf("opening corpus: %w", err)
	}
	defer f.Close()
	d, err := Build(f)
	if err != nil {
		return nil, err
	}
	p.logger.Info("dictionary built from corpus",
		"corpus", p.cfg.CorpusPath,
		"words", d.Len(),
		"tokens", d.Total(),
		"duration", time.Since(start),
	)
	if p.cfg.Metrics != nil {
		p.cfg.Metrics.DictionaryLoads.WithLabelValues("corpus").Inc()
	}
	return d, nil
}
