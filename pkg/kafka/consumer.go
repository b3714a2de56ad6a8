// Package kafka provides Kafka producer and consumer clients backed by
// segmentio/kafka-go. Records travel as JSON: the producer marshals
// values, the consumer hands raw message bytes to a MessageHandler.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/resilience"
)

// MessageHandler is a callback invoked for each Kafka message.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// DeadLetter is published for a message whose handler kept failing.
type DeadLetter struct {
	Topic     string    `json:"topic"`
	Partition int       `json:"partition"`
	Offset    int64     `json:"offset"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Error     string    `json:"error"`
	FailedAt  time.Time `json:"failed_at"`
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads messages from a Kafka topic and dispatches them to a
// MessageHandler. A failing message is retried HandlerAttempts times. It is
// then sent to the dead-letter publisher and committed; without one the
// consumer stops uncommitted so the group redelivers it. Errors wrapping
// apperrors.ErrInvalidInput are never retried, and are skipped when there
// is no dead-letter publisher.
type Consumer struct {
	reader     messageReader
	topic      string
	logger     *slog.Logger
	handler    MessageHandler
	retry      resilience.RetryConfig
	deadLetter Publisher
}

// NewConsumer creates a group Consumer for the given topic and handler.
// A new group starts from the oldest retained record so no raw input is
// skipped on first deployment.
func NewConsumer(cfg config.KafkaConfig, topic string, handler MessageHandler) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       topic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    1e3,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
	return newConsumer(r, topic, cfg.HandlerAttempts, handler)
}

func newConsumer(r messageReader, topic string, attempts int, handler MessageHandler) *Consumer {
	return &Consumer{
		reader:  r,
		topic:   topic,
		logger:  slog.Default().With("component", "kafka-consumer", "topic", topic),
		handler: handler,
		retry: resilience.RetryConfig{
			MaxAttempts:  attempts,
			InitialDelay: 200 * time.Millisecond,
			Retryable: func(err error) bool {
				return !errors.Is(err, apperrors.ErrInvalidInput)
			},
			MaxDelay:     5 * time.Second,
		},
	}
}

// WithDeadLetter routes messages that exhaust their retries to pub.
func (c *Consumer) WithDeadLetter(pub Publisher) *Consumer {
	c.deadLetter = pub
	return c
}

// Start fetches and handles messages until ctx is cancelled or a message
// can be neither handled nor dead-lettered.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started", "dead_letter", c.deadLetter != nil)
	defer c.reader.Close()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", "reason", ctx.Err())
				return nil
			}
			c.logger.Error("failed to fetch message", "error", err)
			continue
		}
		c.logger.Debug("message received",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
			"value_size", len(msg.Value),
		)
		if err := c.handle(ctx, msg); err != nil {
			return err
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("failed to commit message",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	err := resilience.Retry(ctx, "handle-message", c.retry, func() error {
		return c.handler(ctx, msg.Key, msg.Value)
	})
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return nil
	}
	c.logger.Error("message handling failed",
		"partition", msg.Partition,
		"offset", msg.Offset,
		"error", err,
	)
	if c.deadLetter == nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			c.logger.Warn("skipping invalid message", "partition", msg.Partition, "offset", msg.Offset)
			return nil
		}
		return fmt.Errorf("handling %s/%d@%d: %w", c.topic, msg.Partition, msg.Offset, err)
	}
	dl := DeadLetter{
		Topic:     c.topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       string(msg.Key),
		Value:     string(msg.Value),
		Error:     err.Error(),
		FailedAt:  time.Now().UTC(),
	}
	if perr := c.deadLetter.Publish(ctx, Event{Key: dl.Key, Value: dl}); perr != nil {
		return fmt.Errorf("dead-lettering %s/%d@%d: %w", c.topic, msg.Partition, msg.Offset, perr)
	}
	c.logger.Warn("message dead-lettered", "partition", msg.Partition, "offset", msg.Offset)
	return nil
}

// DecodeJSON is a generic helper that unmarshals a Kafka message value into T.
func DecodeJSON[T any](value []byte) (T, error) {
	var result T
	if err := json.Unmarshal(value, &result); err != nil {
		return result, fmt.Errorf("decoding kafka message: %w", err)
	}
	return result, nil
}
