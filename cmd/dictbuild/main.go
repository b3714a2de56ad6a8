// Command dictbuild builds the word-frequency dictionary from the corpus
// and stores it in the configured cache, so services start from a warm
// cache. Without -force an existing cache is only verified.
//
// Usage:
//
//	go run ./cmd/dictbuild [-config configs/development.yaml] [-force] [-export words.tsv]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/bootstrap"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/spelling/dictionary"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	force := flag.Bool("force", false, "rebuild from the corpus even if a cache exists")
	export := flag.String("export", "", "also write the dictionary to this file")
	flag.Parse()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, rc, err := bootstrap.NewProvider(cfg, nil)
	if err != nil {
		slog.Error("failed to open dictionary store", "error", err)
		os.Exit(1)
	}
	if rc != nil {
		defer rc.Close()
	}

	var dict *dictionary.Dictionary
	if *force {
		dict, err = provider.Rebuild(ctx)
	} else {
		dict, err = provider.Get(ctx)
	}
	if err != nil {
		slog.Error("dictionary build failed", "error", err)
		os.Exit(1)
	}
	slog.Info("dictionary ready",
		"backend", cfg.Dictionary.Backend,
		"words", dict.Len(),
		"total", dict.Total(),
		"forced", *force,
	)

	if *export != "" {
		if err := writeFile(*export, dict); err != nil {
			slog.Error("export failed", "path", *export, "error", err)
			os.Exit(1)
		}
		slog.Info("dictionary exported", "path", *export)
	}
}

func writeFile(path string, dict *dictionary.Dictionary) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := dict.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
