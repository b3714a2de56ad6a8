// Command normalizer serves the tweet normalization HTTP API.
//
// POST /api/v1/normalize runs one post through the pipeline,
// POST /api/v1/normalize/batch runs many, and POST /api/v1/correct resolves
// a single token. Liveness and readiness live at /health/live and
// /health/ready.
//
// Usage:
//
//	go run ./cmd/normalizer [-config configs/development.yaml]
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

	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/api/handler"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/bootstrap"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/middleware"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting normalizer service", "port", cfg.Server.Port)

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

	mux := http.NewServeMux()
	handler.New(svc.Pipeline, svc.Corrector).Register(mux)
	mux.HandleFunc("GET /health/live", svc.Health.LiveHandler())
	mux.HandleFunc("GET /health/ready", svc.Health.ReadyHandler())

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: middleware.Chain(mux,
			middleware.RequestID,
			middleware.Metrics(m),
			middleware.Timeout(cfg.Server.WriteTimeout),
		),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()
	slog.Info("normalizer service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("normalizer service stopped")
}
