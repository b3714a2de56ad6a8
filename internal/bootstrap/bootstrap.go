// Package bootstrap assembles the dictionary, corrector and pipeline shared
// by the normalizer commands from a loaded Config.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/checkpoint"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/spelling"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/spelling/dictionary"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/stemmer"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/tagger"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/resilience"
)

// Services holds everything a command needs to normalize records. Close
// releases the connections opened for it.
type Services struct {
	Provider   *dictionary.Provider
	Dictionary *dictionary.Dictionary
	Corrector  *spelling.Corrector
	Pipeline   *pipeline.Pipeline
	Health     *health.Checker

	redis *redis.Client
	db    *postgres.Client
}

// NewProvider opens the configured dictionary store. The returned Redis
// client is nil for the file backend.
func NewProvider(cfg *config.Config, m *metrics.Metrics) (*dictionary.Provider, *redis.Client, error) {
	var (
		store dictionary.Store
		rc    *redis.Client
	)
	switch cfg.Dictionary.Backend {
	case "file":
		store = dictionary.NewFileStore(cfg.Dictionary.CachePath)
	case "redis":
		var err error
		rc, err = redis.NewClient(cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		store = dictionary.NewRedisStore(rc, cfg.Redis.DictionaryKey, cfg.Redis.LockTTL)
	default:
		return nil, nil, fmt.Errorf("unknown dictionary backend %q", cfg.Dictionary.Backend)
	}
	p := dictionary.NewProvider(dictionary.ProviderConfig{
		CorpusPath:  cfg.Dictionary.CorpusPath,
		Store:       store,
		LockTimeout: cfg.Dictionary.LockTimeout,
		Metrics:     m,
	})
	return p, rc, nil
}

// New loads the dictionary, opens the checkpoint store when enabled and
// builds the pipeline. It registers a health check per dependency.
func New(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*Services, error) {
	s := &Services{Health: health.NewChecker()}
	provider, rc, err := NewProvider(cfg, m)
	if err != nil {
		return nil, err
	}
	s.Provider, s.redis = provider, rc
	if rc != nil {
		s.Health.Register("redis", health.PingCheck(rc.Ping))
	}

	dict, err := provider.Get(ctx)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("loading dictionary: %w", err)
	}
	s.Dictionary = dict
	s.Health.Register("dictionary", health.DictionaryCheck(provider.Loaded, dict.Len))
	slog.Info("dictionary ready", "words", dict.Len(), "total", dict.Total())

	var cp pipeline.Checkpoint
	if cfg.Pipeline.Checkpoint {
		db, err := postgres.New(cfg.Postgres)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		s.db = db
		store := checkpoint.New(db)
		if err := store.EnsureSchema(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("preparing checkpoint schema: %w", err)
		}
		guarded := checkpoint.NewGuarded(store, resilience.BreakerConfig{})
		s.Health.Register("postgres", health.PingCheck(db.Ping))
		s.Health.Register("checkpoint", func(context.Context) health.ComponentHealth {
			if st := guarded.State(); st != resilience.BreakerClosed {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: "breaker " + st.String()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
		cp = guarded
		slog.Info("checkpointing enabled")
	}

	s.Corrector = spelling.NewCorrector(dict, spelling.Options{
		RivalKnownWords:    cfg.Pipeline.RivalKnownWords,
		MaxTier2Candidates: cfg.Pipeline.MaxTier2Candidates,
	})
	s.Pipeline = pipeline.New(s.Corrector, tagger.New(), stemmer.New(), pipeline.Config{
		Workers:       cfg.Pipeline.Workers,
		RecordTimeout: cfg.Pipeline.RecordTimeout,
		Reprocess:     cfg.Pipeline.Reprocess,
		Checkpoint:    cp,
		Metrics:       m,
	})
	return s, nil
}

func (s *Services) Close() {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Error("closing postgres", "error", err)
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			slog.Error("closing redis", "error", err)
		}
	}
}
