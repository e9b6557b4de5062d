package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Config defines configuration for the gulp CLI.
type Config struct {
	Workers   int
	ChunkSize int64
	Progress  bool
	Retry     RetryConfig
	Database  DatabaseConfig
	Archive   ArchiveConfig
	LogLevel  string
}

// RetryConfig defines HTTP retry behavior.
type RetryConfig struct {
	Attempts   int
	Backoff    time.Duration
	MaxBackoff time.Duration
}

// DatabaseConfig defines the relational store connection.
type DatabaseConfig struct {
	DSN      string
	MaxConns int
}

// ArchiveConfig defines the optional raw-artifact archive bucket.
type ArchiveConfig struct {
	Bucket string
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Workers:   16,
		ChunkSize: 100 * 1024 * 1024, // 100MB
		Retry: RetryConfig{
			Attempts:   5,
			Backoff:    time.Second,
			MaxBackoff: 30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConns: 4,
		},
		LogLevel: "info",
	}
}

// yamlConfig is used for YAML unmarshaling with string chunk size and
// durations.
type yamlConfig struct {
	Workers   int             `yaml:"workers"`
	ChunkSize string          `yaml:"chunk_size"`
	Progress  bool            `yaml:"progress"`
	Retry     yamlRetryConfig `yaml:"retry"`
	Database  yamlDBConfig    `yaml:"database"`
	Archive   struct {
		Bucket string `yaml:"bucket"`
	} `yaml:"archive"`
	LogLevel string `yaml:"log_level"`
}

type yamlRetryConfig struct {
	Attempts   int    `yaml:"attempts"`
	Backoff    string `yaml:"backoff"`
	MaxBackoff string `yaml:"max_backoff"`
}

type yamlDBConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int    `yaml:"max_conns"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	if yc.ChunkSize != "" {
		size, err := humanize.ParseBytes(yc.ChunkSize)
		if err != nil {
			return Config{}, fmt.Errorf("parse chunk_size: %w", err)
		}
		cfg.ChunkSize = int64(size)
	}
	cfg.Progress = yc.Progress
	if yc.Retry.Attempts != 0 {
		cfg.Retry.Attempts = yc.Retry.Attempts
	}
	if yc.Retry.Backoff != "" {
		d, err := time.ParseDuration(yc.Retry.Backoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.backoff: %w", err)
		}
		cfg.Retry.Backoff = d
	}
	if yc.Retry.MaxBackoff != "" {
		d, err := time.ParseDuration(yc.Retry.MaxBackoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.max_backoff: %w", err)
		}
		cfg.Retry.MaxBackoff = d
	}
	if yc.Database.DSN != "" {
		cfg.Database.DSN = yc.Database.DSN
	}
	if yc.Database.MaxConns != 0 {
		cfg.Database.MaxConns = yc.Database.MaxConns
	}
	if yc.Archive.Bucket != "" {
		cfg.Archive.Bucket = yc.Archive.Bucket
	}
	if yc.LogLevel != "" {
		cfg.LogLevel = yc.LogLevel
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the GULP_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("GULP_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse GULP_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("GULP_CHUNK_SIZE"); v != "" {
		size, err := humanize.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("parse GULP_CHUNK_SIZE: %w", err)
		}
		c.ChunkSize = int64(size)
	}
	if v := os.Getenv("GULP_DATABASE_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("GULP_DATABASE_MAX_CONNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse GULP_DATABASE_MAX_CONNS: %w", err)
		}
		c.Database.MaxConns = n
	}
	if v := os.Getenv("GULP_ARCHIVE_BUCKET"); v != "" {
		c.Archive.Bucket = v
	}
	if v := os.Getenv("GULP_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return errors.New("workers must be positive")
	}
	if c.ChunkSize <= 0 {
		return errors.New("chunk_size must be positive")
	}
	if c.Retry.Attempts < 0 {
		return errors.New("retry.attempts must not be negative")
	}
	if c.Database.MaxConns <= 0 {
		return errors.New("database.max_conns must be positive")
	}
	return nil
}
