package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/jwebster45206/five-acts/pkg/save"
	"github.com/jwebster45206/five-acts/pkg/storage"

	_ "modernc.org/sqlite"
)

const createSavesTable = `CREATE TABLE IF NOT EXISTS saves (
	slot       TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStorage keeps the save slot in a SQLite table and reads content from
// the filesystem.
type SQLiteStorage struct {
	*ContentLoader
	db     *sql.DB
	logger *slog.Logger
}

var _ storage.Storage = (*SQLiteStorage)(nil)

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path, dataDir string, logger *slog.Logger) (*SQLiteStorage, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}
	if _, err := db.Exec(createSavesTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create saves table: %w", err)
	}

	return &SQLiteStorage{
		ContentLoader: NewContentLoader(dataDir, logger),
		db:            db,
		logger:        logger,
	}, nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStorage) SaveGame(ctx context.Context, r *save.Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal save: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saves (slot, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		save.Key, string(data), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		s.logger.Error("Failed to save game", "id", r.ID, "error", err)
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) LoadGame(ctx context.Context) (*save.Record, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM saves WHERE slot = ?`, save.Key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load save: %w", err)
	}

	var r save.Record
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		s.logger.Error("Failed to unmarshal save", "error", err)
		return nil, fmt.Errorf("failed to unmarshal save: %w", err)
	}
	return &r, nil
}

func (s *SQLiteStorage) DeleteGame(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE slot = ?`, save.Key); err != nil {
		return fmt.Errorf("failed to delete save: %w", err)
	}
	return nil
}
