package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jwebster45206/five-acts/pkg/save"
	"github.com/jwebster45206/five-acts/pkg/storage"
)

// FileStorage keeps the save slot as a JSON file and reads content from
// the filesystem.
type FileStorage struct {
	*ContentLoader
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

var _ storage.Storage = (*FileStorage)(nil)

// NewFileStorage stores the save under saveDir.
func NewFileStorage(saveDir, dataDir string, logger *slog.Logger) *FileStorage {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if saveDir == "" {
		saveDir = "."
	}
	name := strings.ReplaceAll(save.Key, ":", "-") + ".json"
	return &FileStorage{
		ContentLoader: NewContentLoader(dataDir, logger),
		path:          filepath.Join(saveDir, name),
		logger:        logger,
	}
}

// Path returns the save file location.
func (f *FileStorage) Path() string { return f.path }

func (f *FileStorage) Ping(ctx context.Context) error {
	dir := filepath.Dir(f.path)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("save directory unavailable: %w", err)
	}
	return nil
}

func (f *FileStorage) Close() error { return nil }

// SaveGame writes to a temp file and renames it over the slot.
func (f *FileStorage) SaveGame(ctx context.Context, r *save.Record) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal save: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create save directory: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write save: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to write save: %w", err)
	}
	return nil
}

func (f *FileStorage) LoadGame(ctx context.Context) (*save.Record, error) {
	f.mu.Lock()
	data, err := os.ReadFile(f.path)
	f.mu.Unlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read save: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var r save.Record
	if err := json.Unmarshal(data, &r); err != nil {
		f.logger.Error("Failed to unmarshal save", "path", f.path, "error", err)
		return nil, fmt.Errorf("failed to unmarshal save: %w", err)
	}
	return &r, nil
}

func (f *FileStorage) DeleteGame(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete save: %w", err)
	}
	return nil
}
