package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

type Config struct {
	Environment string  `env:"ENVIRONMENT" envDefault:"development"`
	RawLogLevel string  `env:"LOG_LEVEL" envDefault:"info"`
	DataDir     string  `env:"DATA_DIR" envDefault:"./data"`
	SaveBackend string  `env:"SAVE_BACKEND" envDefault:"file"`
	SaveDir     string  `env:"SAVE_DIR" envDefault:"./saves"`
	RedisURL    string  `env:"REDIS_URL" envDefault:"localhost:6379"`
	SQLitePath  string  `env:"SQLITE_PATH" envDefault:"./saves/five-acts.db"`
	DecayPerDay float64 `env:"DECAY_PER_DAY" envDefault:"2"`
	Autosave    bool    `env:"AUTOSAVE" envDefault:"true"`

	LogLevel slog.Level `env:"-"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.RawLogLevel)
	cfg.SaveBackend = strings.ToLower(strings.TrimSpace(cfg.SaveBackend))

	switch cfg.SaveBackend {
	case BackendFile, BackendRedis, BackendSQLite:
	default:
		return nil, fmt.Errorf("unknown SAVE_BACKEND %q", cfg.SaveBackend)
	}
	if cfg.DecayPerDay < 0 {
		return nil, fmt.Errorf("DECAY_PER_DAY must not be negative, got %v", cfg.DecayPerDay)
	}
	return &cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
