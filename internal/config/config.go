package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config is the server configuration read from the environment
type Config struct {
	Host string `env:"CONQUEST_HOST"`
	Port int    `env:"CONQUEST_PORT" envDefault:"8080"`

	LogLevel string `env:"CONQUEST_LOG_LEVEL" envDefault:"info"`

	Storage    string `env:"CONQUEST_STORAGE" envDefault:"memory"`
	RedisURL   string `env:"CONQUEST_REDIS_ADDR" envDefault:"redis://localhost:6379"`
	SQLitePath string `env:"CONQUEST_SQLITE_PATH" envDefault:"conquest.db"`

	SessionDuration time.Duration `env:"CONQUEST_SESSION_DURATION" envDefault:"24h"`
	SweepInterval   time.Duration `env:"CONQUEST_SWEEP_INTERVAL" envDefault:"5m"`

	// RateLimit is requests per second per client address; zero disables it
	RateLimit float64 `env:"CONQUEST_RATE_LIMIT" envDefault:"20"`
	RateBurst int     `env:"CONQUEST_RATE_BURST" envDefault:"40"`
}

// Load reads the configuration from environment variables
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env cannot check on its own
func (c Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StorageRedis, StorageSQLite:
	default:
		return fmt.Errorf("CONQUEST_STORAGE must be memory, redis or sqlite, got %q", c.Storage)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("CONQUEST_PORT out of range: %d", c.Port)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("CONQUEST_RATE_LIMIT must not be negative")
	}
	return nil
}

// Level returns the slog level named by LogLevel, defaulting to info
func (c Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
