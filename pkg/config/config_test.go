package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dictionary.Backend != "file" {
		t.Errorf("expected file backend, got %q", cfg.Dictionary.Backend)
	}
	if cfg.Pipeline.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Pipeline.Workers)
	}
	if cfg.Pipeline.MaxTier2Candidates != 500000 {
		t.Errorf("expected tier-2 cap 500000, got %d", cfg.Pipeline.MaxTier2Candidates)
	}
	if cfg.Kafka.Topics.RawRecords != "tweets.raw" {
		t.Errorf("unexpected raw topic %q", cfg.Kafka.Topics.RawRecords)
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
dictionary:
  corpusPath: /corpus/big.txt
  cachePath: /cache/words.tsv
pipeline:
  workers: 8
  maxTier2Candidates: 5000
  recordTimeout: 2s
logging:
  level: debug
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TN_PIPELINE_WORKERS", "2")
	t.Setenv("TN_LOGGING_FORMAT", "text")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dictionary.CorpusPath != "/corpus/big.txt" {
		t.Errorf("corpus path not read from yaml: %q", cfg.Dictionary.CorpusPath)
	}
	if cfg.Pipeline.Workers != 2 {
		t.Errorf("env override not applied, workers=%d", cfg.Pipeline.Workers)
	}
	if cfg.Pipeline.MaxTier2Candidates != 5000 {
		t.Errorf("expected tier-2 cap 5000, got %d", cfg.Pipeline.MaxTier2Candidates)
	}
	if cfg.Pipeline.RecordTimeout != 2*time.Second {
		t.Errorf("expected 2s record timeout, got %v", cfg.Pipeline.RecordTimeout)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Dictionary.Backend = "s3" }},
		{"no workers", func(c *Config) { c.Pipeline.Workers = 0 }},
		{"negative tier-2 cap", func(c *Config) { c.Pipeline.MaxTier2Candidates = -1 }},
		{"checkpoint without postgres", func(c *Config) { c.Pipeline.Checkpoint = true }},
		{"redis backend without key", func(c *Config) {
			c.Dictionary.Backend = "redis"
			c.Redis.DictionaryKey = ""
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
	if err := defaultConfig().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
