// Package config loads process settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/mcoot/trackmyhand/internal/model"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config is the server's environment configuration
type Config struct {
	Storage      string        `env:"TMH_STORAGE" envDefault:"memory"`
	RedisURL     string        `env:"TMH_REDIS_URL" envDefault:"redis://localhost:6379"`
	SQLitePath   string        `env:"TMH_SQLITE_PATH" envDefault:"trackmyhand.db"`
	HTTPPort     int           `env:"TMH_HTTP_PORT" envDefault:"8080"`
	LogLevel     string        `env:"TMH_LOG_LEVEL" envDefault:"info"`
	DefaultBuyIn string        `env:"TMH_DEFAULT_BUY_IN" envDefault:"5.00"`
	TickInterval time.Duration `env:"TMH_TICK_INTERVAL" envDefault:"1s"`
}

// Load reads the given .env files (default ".env") if they exist, then
// parses and validates the environment. Variables already set in the
// environment win over file values.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the parser cannot
func (c Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StorageRedis, StorageSQLite:
	default:
		return fmt.Errorf("TMH_STORAGE must be %s, %s or %s, got %q", StorageMemory, StorageRedis, StorageSQLite, c.Storage)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("TMH_HTTP_PORT out of range: %d", c.HTTPPort)
	}
	if _, err := c.BuyIn(); err != nil {
		return fmt.Errorf("TMH_DEFAULT_BUY_IN: %w", err)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("TMH_TICK_INTERVAL must be positive")
	}
	if _, err := c.SlogLevel(); err != nil {
		return fmt.Errorf("TMH_LOG_LEVEL: %w", err)
	}
	return nil
}

// BuyIn returns the default buy-in unit
func (c Config) BuyIn() (decimal.Decimal, error) {
	d, err := model.ParseAmount(c.DefaultBuyIn)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, model.Validationf("buy-in must be positive")
	}
	return d, nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error")
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}
