package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/five-acts/internal/config"
	"github.com/jwebster45206/five-acts/pkg/storage"
)

// Open builds the storage selected by cfg.SaveBackend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	switch cfg.SaveBackend {
	case config.BackendFile, "":
		logger.Info("Using file save backend", "save_dir", cfg.SaveDir)
		return NewFileStorage(cfg.SaveDir, cfg.DataDir, logger), nil

	case config.BackendRedis:
		logger.Info("Using Redis save backend", "redis_url", cfg.RedisURL)
		rs := NewRedisStorage(cfg.RedisURL, cfg.DataDir, logger)
		if err := rs.WaitForConnection(ctx, 5, time.Second); err != nil {
			_ = rs.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return rs, nil

	case config.BackendSQLite:
		logger.Info("Using SQLite save backend", "path", cfg.SQLitePath)
		return OpenSQLite(cfg.SQLitePath, cfg.DataDir, logger)

	default:
		return nil, fmt.Errorf("unknown save backend %q", cfg.SaveBackend)
	}
}
