package stats

import (
	"log/slog"
	"math"
	"time"

	"github.com/jwebster45206/five-acts/pkg/cue"
)

// Stat names. Effect keys in content use these strings verbatim.
const (
	GPA          = "gpa"
	Network      = "network"
	Authenticity = "authenticity"
	Burnout      = "burnout"
	Wealth       = "wealth"
	Prestige     = "prestige"
)

// Names lists every stat in display order.
var Names = []string{GPA, Network, Authenticity, Burnout, Wealth, Prestige}

// Snapshot is a copy of all stat values, keyed by stat name.
type Snapshot map[string]float64

// Defaults returns the starting values for a new game.
func Defaults() Snapshot {
	return Snapshot{
		GPA:          75,
		Network:      20,
		Authenticity: 80,
		Burnout:      10,
		Wealth:       500,
		Prestige:     5,
	}
}

type bound struct {
	min, max float64
}

var bounds = map[string]bound{
	GPA:          {0, 100},
	Network:      {0, 100},
	Authenticity: {0, 100},
	Burnout:      {0, 100},
	Wealth:       {0, math.Inf(1)},
	Prestige:     {0, 100},
}

// inversePair lowers target by ratio*delta whenever source rises by delta.
type inversePair struct {
	target string
	ratio  float64
}

var inversePairs = map[string][]inversePair{
	Prestige: {{target: Authenticity, ratio: 0.5}},
}

// Manager owns the six player stats. All writes go through clamp, so no
// caller can observe an out-of-range value.
type Manager struct {
	values       Snapshot
	burnoutFired bool
	cues         cue.Player
	logger       *slog.Logger
}

// NewManager creates a manager at default values. cues and logger may be nil.
func NewManager(cues cue.Player, logger *slog.Logger) *Manager {
	if cues == nil {
		cues = cue.Nop{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Manager{cues: cues, logger: logger}
	m.Reset()
	return m
}

// Reset restores defaults and re-arms the burnout cue.
func (m *Manager) Reset() {
	m.values = Defaults()
	m.burnoutFired = false
}

// Get returns the current value of a stat, or 0 for an unknown name.
func (m *Manager) Get(name string) float64 {
	return m.values[name]
}

// Modify adjusts a stat and applies any configured inverse correlation.
func (m *Manager) Modify(name string, delta float64) {
	m.ModifyWith(name, delta, true)
}

// ModifyWith adjusts a stat. Unknown names are ignored. When applyInverse is
// set and delta is positive, inverse pairs are written as a second,
// non-inverted modification.
func (m *Manager) ModifyWith(name string, delta float64, applyInverse bool) {
	b, ok := bounds[name]
	if !ok {
		m.logger.Debug("Ignoring unknown stat", "stat", name, "delta", delta)
		return
	}

	m.values[name] = clamp(m.values[name]+delta, b)

	if name == Burnout && m.values[Burnout] >= 100 && !m.burnoutFired {
		m.burnoutFired = true
		m.cues.Play(cue.BurnoutMax, map[string]any{"burnout": m.values[Burnout]})
	}

	if applyInverse && delta > 0 {
		for _, pair := range inversePairs[name] {
			m.ModifyWith(pair.target, -delta*pair.ratio, false)
		}
	}
}

// All returns a copy of every stat.
func (m *Manager) All() Snapshot {
	out := make(Snapshot, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Restore overwrites stats from a snapshot. Missing names keep their
// defaults, unknown names are dropped, and every value is re-clamped.
func (m *Manager) Restore(s Snapshot) {
	m.Reset()
	for name, v := range s {
		b, ok := bounds[name]
		if !ok {
			continue
		}
		m.values[name] = clamp(v, b)
	}
	m.burnoutFired = m.values[Burnout] >= 100
}

func clamp(v float64, b bound) float64 {
	if math.IsNaN(v) {
		return b.min
	}
	return math.Max(b.min, math.Min(b.max, v))
}

// BurnoutEffects are UI-facing consequences of the current burnout level.
type BurnoutEffects struct {
	Tier               int           `json:"tier"`
	InputDelay         time.Duration `json:"input_delay"`
	Desaturation       float64       `json:"desaturation"`
	DialogueCorruption bool          `json:"dialogue_corruption"`
	PerformancePenalty float64       `json:"performance_penalty"`
}

// BurnoutEffects maps burnout onto discrete effect tiers at 50 and 70.
func (m *Manager) BurnoutEffects() BurnoutEffects {
	b := m.values[Burnout]
	switch {
	case b >= 70:
		return BurnoutEffects{Tier: 2, InputDelay: 400 * time.Millisecond, Desaturation: 0.6, DialogueCorruption: true, PerformancePenalty: 0.7}
	case b >= 50:
		return BurnoutEffects{Tier: 1, InputDelay: 150 * time.Millisecond, Desaturation: 0.3, PerformancePenalty: 0.85}
	default:
		return BurnoutEffects{PerformancePenalty: 1.0}
	}
}

// CollegeTier buckets gpa*0.6 + network*0.4 into tiers 1 (best) to 3.
func (m *Manager) CollegeTier() int {
	score := m.values[GPA]*0.6 + m.values[Network]*0.4
	switch {
	case score >= 70:
		return 1
	case score >= 45:
		return 2
	default:
		return 3
	}
}

// Rating is the outcome band of a performance review.
type Rating string

const (
	RatingExceeds          Rating = "exceeds"
	RatingMeets            Rating = "meets"
	RatingNeedsImprovement Rating = "needs_improvement"
	RatingUnsatisfactory   Rating = "unsatisfactory"
)

// PerformanceRating is a review result and the salary change it carries.
type PerformanceRating struct {
	Rating      Rating  `json:"rating"`
	Score       float64 `json:"score"`
	SalaryDelta float64 `json:"salary_delta"`
}

// PerformanceRating blends gpa, network and prestige into a review outcome.
func (m *Manager) PerformanceRating() PerformanceRating {
	score := m.values[GPA]*0.5 + m.values[Network]*0.25 + m.values[Prestige]*0.25
	switch {
	case score >= 80:
		return PerformanceRating{Rating: RatingExceeds, Score: score, SalaryDelta: 15000}
	case score >= 60:
		return PerformanceRating{Rating: RatingMeets, Score: score, SalaryDelta: 5000}
	case score >= 40:
		return PerformanceRating{Rating: RatingNeedsImprovement, Score: score, SalaryDelta: 0}
	default:
		return PerformanceRating{Rating: RatingUnsatisfactory, Score: score, SalaryDelta: -5000}
	}
}
