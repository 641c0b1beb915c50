package storage

import (
	"context"
	"errors"

	"github.com/jwebster45206/five-acts/pkg/narrative"
	"github.com/jwebster45206/five-acts/pkg/save"
)

// ErrContentNotFound is returned when an act or palette file does not exist.
var ErrContentNotFound = errors.New("content not found")

// Storage defines a unified interface for all storage operations.
// The save slot lives in one of several backends; act content is always
// read from the filesystem.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Save slot operations. LoadGame returns nil, nil when nothing is saved.
	SaveGame(ctx context.Context, r *save.Record) error
	LoadGame(ctx context.Context) (*save.Record, error)
	DeleteGame(ctx context.Context) error

	// Content operations (filesystem-backed)
	GetAct(ctx context.Context, act int) (*narrative.Act, error)
	GetPalettes(ctx context.Context) (map[int]narrative.Palette, error)
}

var _ save.Slot = Storage(nil)
