// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, Postgres, Kafka, Redis, Dictionary, Pipeline, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Redis      RedisConfig      `yaml:"redis"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// PostgresConfig holds PostgreSQL connection parameters for the checkpoint
// store.
type PostgresConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
// HandlerAttempts bounds how often one message is retried before it is
// dead-lettered.
type KafkaConfig struct {
	Brokers         []string    `yaml:"brokers"`
	ConsumerGroup   string      `yaml:"consumerGroup"`
	HandlerAttempts int         `yaml:"handlerAttempts"`
	Topics          KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings. An
// empty DeadLetter disables dead-lettering.
type KafkaTopics struct {
	RawRecords       string `yaml:"rawRecords"`
	ProcessedRecords string `yaml:"processedRecords"`
	DeadLetter       string `yaml:"deadLetter"`
}

// RedisConfig holds Redis connection parameters and the key under which a
// shared dictionary is kept.
type RedisConfig struct {
	Addr          string        `yaml:"addr"`
	Password      string        `yaml:"password"`
	DB            int           `yaml:"db"`
	PoolSize      int           `yaml:"poolSize"`
	DictionaryKey string        `yaml:"dictionaryKey"`
	LockTTL       time.Duration `yaml:"lockTTL"`
}

// DictionaryConfig selects where the word-frequency dictionary is built from
// and where its cache lives.
type DictionaryConfig struct {
	CorpusPath  string        `yaml:"corpusPath"`
	CachePath   string        `yaml:"cachePath"`
	Backend     string        `yaml:"backend"`
	LockTimeout time.Duration `yaml:"lockTimeout"`
}

// PipelineConfig controls the per-record normalization pipeline.
type PipelineConfig struct {
	Workers            int           `yaml:"workers"`
	MaxTier2Candidates int           `yaml:"maxTier2Candidates"`
	RivalKnownWords    bool          `yaml:"rivalKnownWords"`
	RecordTimeout      time.Duration `yaml:"recordTimeout"`
	Checkpoint         bool          `yaml:"checkpoint"`
	Reprocess          bool          `yaml:"reprocess"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	switch c.Dictionary.Backend {
	case "file":
		if c.Dictionary.CachePath == "" {
			return fmt.Errorf("dictionary.cachePath is required for the file backend")
		}
	case "redis":
		if c.Redis.DictionaryKey == "" {
			return fmt.Errorf("redis.dictionaryKey is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown dictionary backend %q", c.Dictionary.Backend)
	}
	if c.Kafka.HandlerAttempts < 1 {
		return fmt.Errorf("kafka.handlerAttempts must be at least 1, got %d", c.Kafka.HandlerAttempts)
	}
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline.workers must be at least 1, got %d", c.Pipeline.Workers)
	}
	if c.Pipeline.MaxTier2Candidates < 0 {
		return fmt.Errorf("pipeline.maxTier2Candidates must not be negative")
	}
	if c.Pipeline.Checkpoint && !c.Postgres.Enabled {
		return fmt.Errorf("pipeline.checkpoint requires postgres.enabled")
	}
	return nil
}

// defaultConfig returns a Config with defaults for local development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "tweetnorm",
			User:            "tweetnorm",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:         []string{"localhost:9092"},
			ConsumerGroup:   "tweetnorm-workers",
			HandlerAttempts: 3,
			Topics: KafkaTopics{
				RawRecords:       "tweets.raw",
				ProcessedRecords: "tweets.normalized",
			},
		},
		Redis: RedisConfig{
			Addr:          "localhost:6379",
			PoolSize:      10,
			DictionaryKey: "tweetnorm:dictionary",
			LockTTL:       5 * time.Minute,
		},
		Dictionary: DictionaryConfig{
			CorpusPath:  "data/wordlist.txt",
			CachePath:   "data/wordlist.tsv",
			Backend:     "file",
			LockTimeout: 10 * time.Minute,
		},
		Pipeline: PipelineConfig{
			Workers:            4,
			MaxTier2Candidates: 500000,
			RecordTimeout:      5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads TN_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TN_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("TN_POSTGRES_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Postgres.Enabled = b
		}
	}
	if v := os.Getenv("TN_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("TN_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("TN_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("TN_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("TN_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("TN_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("TN_KAFKA_DEAD_LETTER_TOPIC"); v != "" {
		cfg.Kafka.Topics.DeadLetter = v
	}
	if v := os.Getenv("TN_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("TN_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("TN_DICTIONARY_CORPUS"); v != "" {
		cfg.Dictionary.CorpusPath = v
	}
	if v := os.Getenv("TN_DICTIONARY_CACHE"); v != "" {
		cfg.Dictionary.CachePath = v
	}
	if v := os.Getenv("TN_DICTIONARY_BACKEND"); v != "" {
		cfg.Dictionary.Backend = v
	}
	if v := os.Getenv("TN_PIPELINE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.Workers = n
		}
	}
	if v := os.Getenv("TN_PIPELINE_REPROCESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Pipeline.Reprocess = b
		}
	}
	if v := os.Getenv("TN_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TN_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
