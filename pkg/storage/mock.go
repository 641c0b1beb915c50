package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jwebster45206/five-acts/pkg/narrative"
	"github.com/jwebster45206/five-acts/pkg/save"
)

// MockStorage is an in-memory Storage for tests. The save slot is kept as
// JSON so loads never alias a caller's record.
type MockStorage struct {
	mu        sync.RWMutex
	saved     []byte
	saves     int
	acts      map[int]*narrative.Act
	palettes  map[int]narrative.Palette
	pingError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		acts:     make(map[int]*narrative.Act),
		palettes: make(map[int]narrative.Palette),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError makes every SaveGame fail with err until cleared with nil.
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// SetRawSave stores raw bytes in the slot, e.g. a corrupt save.
func (m *MockStorage) SetRawSave(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = data
}

// SaveCount returns how many successful saves were made.
func (m *MockStorage) SaveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveGame(ctx context.Context, r *save.Record) error {
	if r == nil {
		return fmt.Errorf("save record cannot be nil")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal save: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.saved = data
	m.saves++
	return nil
}

func (m *MockStorage) LoadGame(ctx context.Context) (*save.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.saved == nil {
		return nil, nil
	}
	var r save.Record
	if err := json.Unmarshal(m.saved, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal save: %w", err)
	}
	return &r, nil
}

func (m *MockStorage) DeleteGame(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = nil
	return nil
}

func (m *MockStorage) GetAct(ctx context.Context, act int) (*narrative.Act, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.acts[act]
	if !ok {
		return nil, fmt.Errorf("act %d: %w", act, ErrContentNotFound)
	}
	out := *a
	return &out, nil
}

func (m *MockStorage) GetPalettes(ctx context.Context) (map[int]narrative.Palette, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int]narrative.Palette, len(m.palettes))
	for k, v := range m.palettes {
		out[k] = v
	}
	return out, nil
}

// AddAct adds act content to the mock storage (for testing)
func (m *MockStorage) AddAct(a *narrative.Act) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acts[a.Number] = a
}

// AddPalette adds an act palette to the mock storage (for testing)
func (m *MockStorage) AddPalette(act int, p narrative.Palette) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.palettes[act] = p
}
