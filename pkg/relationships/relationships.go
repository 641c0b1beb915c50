package relationships

import (
	"cmp"
	"log/slog"
	"math"
	"slices"

	"github.com/jwebster45206/five-acts/pkg/cue"
	"github.com/jwebster45206/five-acts/pkg/textfx"
)

const (
	MaxConnection = 100.0

	// DefaultDecay is the connection lost by every relationship per day.
	DefaultDecay = 2.0

	// ReachOutThreshold is the lowest connection at which a character still
	// reaches out to the player.
	ReachOutThreshold = 10.0

	// MinPortraitOpacity keeps faded portraits visible.
	MinPortraitOpacity = 0.15
)

// DecayThresholds are checked in this order when daily decay is applied.
var DecayThresholds = []float64{75, 50, 25, 10}

// Character seeds a relationship. It is the shape of a roster entry.
type Character struct {
	ID         string  `json:"id" yaml:"id"`
	Name       string  `json:"name,omitempty" yaml:"name,omitempty"`
	Connection float64 `json:"connection" yaml:"connection"`
}

// Relationship is the player's standing with one character.
type Relationship struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Connection float64 `json:"connection"`
	ReachesOut bool    `json:"reaches_out"`
	Lost       bool    `json:"lost"`
}

// Change is the result of a single connection modification.
type Change struct {
	Relationship
	JustLost bool `json:"just_lost"`
}

// LostEvent reports a relationship that reached zero during decay.
type LostEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Manager owns every relationship. Records are never removed; a lost
// relationship stays as a record with Lost set.
type Manager struct {
	byID   map[string]*Relationship
	order  []string
	cues   cue.Player
	logger *slog.Logger
}

// NewManager creates an empty manager. cues and logger may be nil.
func NewManager(cues cue.Player, logger *slog.Logger) *Manager {
	if cues == nil {
		cues = cue.Nop{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		byID:   make(map[string]*Relationship),
		cues:   cues,
		logger: logger,
	}
}

// Reset drops every relationship. Only used for a new game.
func (m *Manager) Reset() {
	m.byID = make(map[string]*Relationship)
	m.order = nil
}

// Init seeds relationships in bulk. Existing ids are left untouched.
func (m *Manager) Init(cast []Character) {
	for _, c := range cast {
		m.Add(c.ID, c)
	}
}

// Add creates a relationship if id is not already known. It reports whether
// a record was created.
func (m *Manager) Add(id string, c Character) bool {
	if id == "" {
		return false
	}
	if _, exists := m.byID[id]; exists {
		return false
	}
	name := c.Name
	if name == "" {
		name = textfx.DisplayName(id)
	}
	conn := clamp(c.Connection)
	m.byID[id] = &Relationship{
		ID:         id,
		Name:       name,
		Connection: conn,
		ReachesOut: conn >= ReachOutThreshold,
		Lost:       conn <= 0,
	}
	m.order = append(m.order, id)
	return true
}

// Get returns a copy of a relationship.
func (m *Manager) Get(id string) (Relationship, bool) {
	r, ok := m.byID[id]
	if !ok {
		return Relationship{}, false
	}
	return *r, true
}

// Connection returns the connection score for id, or 0 when unknown.
func (m *Manager) Connection(id string) float64 {
	if r, ok := m.byID[id]; ok {
		return r.Connection
	}
	return 0
}

// Modify changes a connection by delta. Lost relationships do not change.
// The second return is false when id is unknown.
func (m *Manager) Modify(id string, delta float64) (Change, bool) {
	r, ok := m.byID[id]
	if !ok {
		m.logger.Debug("Ignoring connection change for unknown character", "character_id", id)
		return Change{}, false
	}
	justLost := m.apply(r, delta)
	return Change{Relationship: *r, JustLost: justLost}, true
}

// apply writes delta to r and reports whether r was lost by this write.
func (m *Manager) apply(r *Relationship, delta float64) bool {
	if r.Lost {
		return false
	}
	before := r.Connection
	r.Connection = clamp(before + delta)
	r.ReachesOut = r.Connection >= ReachOutThreshold
	if before > 0 && r.Connection == 0 {
		r.Lost = true
		m.logger.Info("Relationship lost", "character_id", r.ID)
		return true
	}
	return false
}

// ApplyDailyDecay lowers every non-lost relationship by amount and returns
// the relationships lost as a result. At most one cue is played per call:
// the first threshold crossed (or loss), in insertion order.
func (m *Manager) ApplyDailyDecay(amount float64) []LostEvent {
	var (
		lost []LostEvent
		cued bool
	)
	for _, id := range m.order {
		r := m.byID[id]
		if r.Lost {
			continue
		}
		before := r.Connection
		justLost := m.apply(r, -amount)
		if justLost {
			lost = append(lost, LostEvent{ID: r.ID, Name: r.Name})
		}
		if cued {
			continue
		}
		t, crossed := crossedThreshold(before, r.Connection)
		if crossed || justLost {
			cued = true
			c := cue.RelationshipFade
			if justLost {
				c = cue.RelationshipLost
			}
			m.cues.Play(c, map[string]any{"character_id": r.ID, "threshold": t})
		}
	}
	return lost
}

func crossedThreshold(before, after float64) (float64, bool) {
	for _, t := range DecayThresholds {
		if before >= t && after < t {
			return t, true
		}
	}
	return 0, false
}

// PortraitOpacity maps connection onto [MinPortraitOpacity, 1].
func (m *Manager) PortraitOpacity(id string) float64 {
	r, ok := m.byID[id]
	if !ok {
		return MinPortraitOpacity
	}
	return math.Max(MinPortraitOpacity, r.Connection/MaxConnection)
}

// All returns every relationship in insertion order.
func (m *Manager) All() []Relationship {
	out := make([]Relationship, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.byID[id])
	}
	return out
}

// Sorted returns relationships by descending connection. Ties keep
// insertion order.
func (m *Manager) Sorted() []Relationship {
	out := m.All()
	slices.SortStableFunc(out, func(a, b Relationship) int {
		return cmp.Compare(b.Connection, a.Connection)
	})
	return out
}

// Snapshot returns relationships keyed by id for persistence.
func (m *Manager) Snapshot() map[string]Relationship {
	out := make(map[string]Relationship, len(m.byID))
	for id, r := range m.byID {
		out[id] = *r
	}
	return out
}

// Restore replaces every relationship with the given records. order fixes
// insertion order for ids it names; remaining ids follow sorted by id.
func (m *Manager) Restore(records map[string]Relationship, order []string) {
	m.Reset()
	seen := make(map[string]bool, len(records))
	add := func(id string) {
		r, ok := records[id]
		if !ok || seen[id] {
			return
		}
		seen[id] = true
		r.ID = id
		r.Connection = clamp(r.Connection)
		if r.Connection == 0 {
			r.Lost = true
		}
		r.ReachesOut = r.Connection >= ReachOutThreshold
		if r.Name == "" {
			r.Name = textfx.DisplayName(id)
		}
		m.byID[id] = &r
		m.order = append(m.order, id)
	}
	for _, id := range order {
		add(id)
	}
	rest := make([]string, 0, len(records))
	for id := range records {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	slices.Sort(rest)
	for _, id := range rest {
		add(id)
	}
}

// Order returns relationship ids in insertion order.
func (m *Manager) Order() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(MaxConnection, v))
}
