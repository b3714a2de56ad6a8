// Package consumer feeds raw posts from Kafka through the normalization
// pipeline and publishes each result to the processed-records topic.
package consumer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/pipeline"
	apperrors "github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/logger"
)

// RawRecord is the payload expected on the raw-records topic.
type RawRecord struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Reprocess bool   `json:"reprocess,omitempty"`
}

// Runner is the part of *pipeline.Pipeline the consumer drives.
type Runner interface {
	Run(ctx context.Context, rec pipeline.Record, reprocess bool) (*pipeline.Result, error)
}

// RecordConsumer wraps a Kafka consumer bound to HandleMessage.
type RecordConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

func New(kafkaConsumer *kafka.Consumer) *RecordConsumer {
	return &RecordConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "record-consumer"),
	}
}

// Start consumes until ctx is cancelled.
func (rc *RecordConsumer) Start(ctx context.Context) error {
	rc.logger.Info("record consumer starting")
	return rc.consumer.Start(ctx)
}

// HandleMessage returns a MessageHandler that normalizes each raw record.
// Undecodable messages and records with neither an ID nor a key fail with
// apperrors.ErrInvalidInput, which the consumer dead-letters without
// retrying. A record without an ID takes the message key as its ID. When
// pub is nil results are only checkpointed, not published.
func HandleMessage(runner Runner, pub kafka.Publisher, reprocessAll bool) kafka.MessageHandler {
	log := slog.Default().With("component", "record-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		raw, err := kafka.DecodeJSON[RawRecord](value)
		if err != nil {
			log.Error("failed to decode raw record",
				"error", err,
				"key", string(key),
			)
			return fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
		}
		if raw.ID == "" {
			raw.ID = string(key)
		}
		if raw.ID == "" {
			log.Warn("raw record without id or key", "value_size", len(value))
			return fmt.Errorf("%w: raw record has no id or key", apperrors.ErrInvalidInput)
		}

		ctx = logger.WithRecordID(ctx, raw.ID)
		rec := pipeline.Record{ID: raw.ID, Text: raw.Text}
		res, err := runner.Run(ctx, rec, raw.Reprocess || reprocessAll)
		if err != nil {
			return fmt.Errorf("normalizing record %s: %w", raw.ID, err)
		}

		if pub != nil {
			if err := pub.Publish(ctx, kafka.Event{Key: raw.ID, Value: res}); err != nil {
				return fmt.Errorf("publishing result for %s: %w", raw.ID, err)
			}
		}
		logger.FromContext(ctx).Debug("record normalized",
			"tokens", len(res.Tokens),
			"cached", res.Cached,
		)
		return nil
	}
}
