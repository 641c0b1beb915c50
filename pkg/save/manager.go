package save

import (
	"context"
	"fmt"
	"log/slog"
)

// Slot is the single save slot a Manager writes to.
type Slot interface {
	SaveGame(ctx context.Context, r *Record) error
	// LoadGame returns nil, nil when no save exists.
	LoadGame(ctx context.Context) (*Record, error)
	DeleteGame(ctx context.Context) error
}

// Manager saves and loads the game through a Slot. Persistence is best
// effort: failures are logged and never surface to the flow.
type Manager struct {
	slot   Slot
	logger *slog.Logger
}

func NewManager(slot Slot, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{slot: slot, logger: logger}
}

// Save snapshots st into the slot. It reports whether the write succeeded.
func (m *Manager) Save(ctx context.Context, st State) bool {
	if m.slot == nil {
		return false
	}
	r := Snapshot(st)
	if err := m.slot.SaveGame(ctx, r); err != nil {
		m.logger.Warn("Failed to save game", "id", r.ID, "error", err)
		return false
	}
	m.logger.Debug("Game saved", "id", r.ID, "act", r.NarrativeProgress.CurrentAct, "flow_index", r.NarrativeProgress.FlowIndex)
	return true
}

// Load returns the stored record, or nil when there is no usable save. A
// record that cannot be read is treated as absent.
func (m *Manager) Load(ctx context.Context) *Record {
	if m.slot == nil {
		return nil
	}
	r, err := m.slot.LoadGame(ctx)
	if err != nil {
		m.logger.Warn("Failed to load save, starting fresh", "error", err)
		return nil
	}
	if r == nil {
		return nil
	}
	if r.Version > Version {
		m.logger.Warn("Save is from a newer version, ignoring", "version", r.Version)
		return nil
	}
	if len(r.Skipped) > 0 {
		m.logger.Warn("Save fields unreadable, using defaults", "fields", r.Skipped)
	}
	return r
}

// Delete clears the slot.
func (m *Manager) Delete(ctx context.Context) error {
	if m.slot == nil {
		return nil
	}
	if err := m.slot.DeleteGame(ctx); err != nil {
		return fmt.Errorf("failed to delete save: %w", err)
	}
	return nil
}
