package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jwebster45206/five-acts/pkg/save"
	"github.com/jwebster45206/five-acts/pkg/storage"
	"github.com/redis/go-redis/v9"
)

// RedisStorage implements the Storage interface using Redis for the save
// slot and the filesystem for act content
type RedisStorage struct {
	*ContentLoader
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance. redisURL is either a
// host:port address or a redis:// URL.
func NewRedisStorage(redisURL string, dataDir string, logger *slog.Logger) *RedisStorage {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opts := &redis.Options{Addr: redisURL}
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.Warn("Invalid Redis URL, using it as an address", "url", redisURL, "error", err)
		} else {
			opts = parsed
		}
	}

	return &RedisStorage{
		ContentLoader: NewContentLoader(dataDir, logger),
		client:        redis.NewClient(opts),
		logger:        logger,
	}
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context, maxRetries int, retryDelay time.Duration) error {
	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Save slot operations (Redis-backed). The slot has no TTL.

func (r *RedisStorage) SaveGame(ctx context.Context, rec *save.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		r.logger.Error("Failed to marshal save", "id", rec.ID, "error", err)
		return fmt.Errorf("failed to marshal save: %w", err)
	}

	if err := r.client.Set(ctx, save.Key, string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save game", "id", rec.ID, "error", err)
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadGame(ctx context.Context) (*save.Record, error) {
	data, err := r.client.Get(ctx, save.Key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		r.logger.Error("Failed to load save", "error", err)
		return nil, fmt.Errorf("failed to load save: %w", err)
	}
	if data == "" {
		return nil, nil
	}

	var rec save.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		r.logger.Error("Failed to unmarshal save", "error", err)
		return nil, fmt.Errorf("failed to unmarshal save: %w", err)
	}
	return &rec, nil
}

func (r *RedisStorage) DeleteGame(ctx context.Context) error {
	if err := r.client.Del(ctx, save.Key).Err(); err != nil {
		r.logger.Error("Failed to delete save", "error", err)
		return fmt.Errorf("failed to delete save: %w", err)
	}
	return nil
}
