// Package pipeline runs one post through the full normalization chain:
// cleaning, tokenizing, repeated-letter collapsing, spelling correction,
// tagging, stemming and feature assembly. Records are independent, so
// batches fan out over a bounded worker pool.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/ngram"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/spelling"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/textnorm"
	apperrors "github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/tracing"
)

// Tagger assigns one part-of-speech tag per token.
type Tagger interface {
	Tag(tokens []string) []string
}

// Stemmer reduces tokens to their stems, one output per input.
type Stemmer interface {
	StemAll(tokens []string) []string
}

// Checkpoint stores finished results keyed by record ID. Get returns an
// error wrapping apperrors.ErrRecordNotFound for unseen records.
type Checkpoint interface {
	Get(ctx context.Context, id string) (*Result, error)
	Save(ctx context.Context, rec Record, res *Result) error
}

// Config tunes a Pipeline. Checkpoint and Metrics may be nil.
type Config struct {
	Workers       int
	RecordTimeout time.Duration
	Reprocess     bool
	Checkpoint    Checkpoint
	Metrics       *metrics.Metrics
}

type Pipeline struct {
	corrector *spelling.Corrector
	tagger    Tagger
	stemmer   Stemmer
	cfg       Config
	logger    *slog.Logger
}

func New(corrector *spelling.Corrector, tagger Tagger, stemmer Stemmer, cfg Config) *Pipeline {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Pipeline{
		corrector: corrector,
		tagger:    tagger,
		stemmer:   stemmer,
		cfg:       cfg,
		logger:    slog.Default().With("component", "pipeline"),
	}
}

// Process normalizes rec. It only fails when ctx is done; cancellation is
// checked between tokens and inside the two-edit spelling search.
func (p *Pipeline) Process(ctx context.Context, rec Record) (*Result, error) {
	start := time.Now()
	tr := tracing.FromContext(ctx)
	cleaned := textnorm.Clean(rec.Text)
	tr.Mark("clean")
	raw := textnorm.Tokenize(cleaned.Text)
	tr.Mark("tokenize")

	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("processing record %s: %w", rec.ID, err)
		}
		tokens = append(tokens, p.normalizeToken(ctx, tok))
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("processing record %s: %w", rec.ID, err)
	}
	tr.Mark("correct")

	tags := p.tagger.Tag(tokens)
	tr.Mark("tag")
	stemmed := p.stemmer.StemAll(tokens)
	tr.Mark("stem")
	stopped := textnorm.RemoveStopwords(stemmed)

	res := &Result{
		ID:              rec.ID,
		Text:            rec.Text,
		ContentHash:     ContentHash(rec.Text),
		Cleaned:         cleaned.Text,
		Tokens:          tokens,
		Emojis:          cleaned.Emojis,
		Hashtags:        cleaned.Hashtags,
		POS:             tags,
		Stemmed:         stemmed,
		Bigrams:         ngram.Bigrams(stemmed),
		Trigrams:        ngram.Trigrams(stemmed),
		BigramsPOS:      ngram.Bigrams(tags),
		TrigramsPOS:     ngram.Trigrams(tags),
		Rejoined:        textnorm.Rejoin(stemmed),
		Stopped:         stopped,
		RejoinedStopped: textnorm.Rejoin(stopped),
		ProcessedAt:     time.Now().UTC(),
	}
	tr.Mark("features")
	tr.SetAttr("tokens", len(tokens))
	if m := p.cfg.Metrics; m != nil {
		m.RecordDuration.Observe(time.Since(start).Seconds())
		m.TokensPerRecord.Observe(float64(len(tokens)))
	}
	return res, nil
}

func (p *Pipeline) normalizeToken(ctx context.Context, tok string) string {
	collapsed := spelling.CollapseRepeats(tok, p.corrector.Known)
	corr := p.corrector.CorrectContext(ctx, collapsed)
	if m := p.cfg.Metrics; m != nil {
		if collapsed != tok {
			m.CollapsedTokensTotal.Inc()
		}
		m.CorrectionsTotal.WithLabelValues(corr.Tier.String()).Inc()
	}
	return corr.Output
}

// Run returns the checkpointed result for rec when its content hash matches
// rec's text and reprocess is false; otherwise it processes rec under the configured
// per-record timeout and checkpoints the new result.
func (p *Pipeline) Run(ctx context.Context, rec Record, reprocess bool) (*Result, error) {
	ctx = logger.WithRecordID(ctx, rec.ID)
	log := logger.FromContext(ctx).With("component", "pipeline")
	ctx, tr := tracing.Start(ctx, rec.ID)
	defer tr.Log(log)

	if cp := p.cfg.Checkpoint; cp != nil && !reprocess {
		res, err := cp.Get(ctx, rec.ID)
		switch {
		case err == nil && res.ContentHash == ContentHash(rec.Text):
			res.Cached = true
			tr.SetAttr("cached", true)
			p.count("cached")
			if m := p.cfg.Metrics; m != nil {
				m.CheckpointHitsTotal.Inc()
			}
			log.Debug("record served from checkpoint")
			return res, nil
		case err == nil:
			log.Info("record text changed since checkpoint, reprocessing")
		case !errors.Is(err, apperrors.ErrRecordNotFound):
			p.count("error")
			return nil, fmt.Errorf("reading checkpoint for %s: %w", rec.ID, err)
		}
	}

	var res *Result
	err := resilience.WithTimeout(ctx, p.cfg.RecordTimeout, "process-record", func(ctx context.Context) error {
		var err error
		res, err = p.Process(ctx, rec)
		return err
	})
	if err != nil {
		p.count("error")
		return nil, err
	}

	if cp := p.cfg.Checkpoint; cp != nil {
		if err := cp.Save(ctx, rec, res); err != nil {
			p.count("error")
			return nil, fmt.Errorf("saving checkpoint for %s: %w", rec.ID, err)
		}
	}
	p.count("ok")
	log.Debug("record processed", "tokens", len(res.Tokens))
	return res, nil
}

// ProcessBatch runs every record with at most Config.Workers in flight.
// Results keep the order of recs. The first failure cancels the rest.
func (p *Pipeline) ProcessBatch(ctx context.Context, recs []Record) ([]*Result, error) {
	return p.RunBatch(ctx, recs, p.cfg.Reprocess)
}

// RunBatch is ProcessBatch with an explicit reprocess flag.
func (p *Pipeline) RunBatch(ctx context.Context, recs []Record, reprocess bool) ([]*Result, error) {
	results := make([]*Result, len(recs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, rec := range recs {
		g.Go(func() error {
			res, err := p.Run(ctx, rec, reprocess)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	p.logger.Debug("batch processed", "records", len(recs), "workers", p.cfg.Workers)
	return results, nil
}

func (p *Pipeline) count(status string) {
	if m := p.cfg.Metrics; m != nil {
		m.RecordsProcessed.WithLabelValues(status).Inc()
	}
}
