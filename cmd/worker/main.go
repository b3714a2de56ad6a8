// Command worker consumes raw posts from Kafka, normalizes them and
// publishes each result to the processed-records topic.
//
// Usage:
//
//	go run ./cmd/worker [-config configs/development.yaml] [-publish=false]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/bootstrap"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/pipeline/consumer"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	publish := flag.Bool("publish", true, "publish results to the processed-records topic")
	flag.Parse()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting normalizer worker",
		"topic", cfg.Kafka.Topics.RawRecords,
		"group", cfg.Kafka.ConsumerGroup,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	svc, err := bootstrap.New(ctx, cfg, m)
	if err != nil {
		slog.Error("failed to initialise pipeline", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	var pub kafka.Publisher
	if *publish {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.ProcessedRecords)
		defer producer.Close()
		pub = producer
		slog.Info("kafka producer initialized", "topic", cfg.Kafka.Topics.ProcessedRecords)
	}

	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: svc.Health.ReadyHandler(),
	}
	go func() {
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("health server error", "error", err)
		}
	}()
	defer healthServer.Close()

	handle := consumer.HandleMessage(svc.Pipeline, pub, cfg.Pipeline.Reprocess)
	kc := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.RawRecords, handle)
	if topic := cfg.Kafka.Topics.DeadLetter; topic != "" {
		dlq := kafka.NewProducer(cfg.Kafka, topic)
		defer dlq.Close()
		kc.WithDeadLetter(dlq)
		slog.Info("dead-letter topic enabled", "topic", topic)
	}
	rc := consumer.New(kc)
	if err := rc.Start(ctx); err != nil {
		slog.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("normalizer worker stopped")
}
