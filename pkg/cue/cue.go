// Package cue carries one-shot notifications from the game core to whatever
// presentation layer is attached. The core never plays sound itself.
package cue

import "sync"

type Cue string

const (
	BurnoutMax       Cue = "burnout_max"
	RelationshipFade Cue = "relationship_fade"
	RelationshipLost Cue = "relationship_lost"
)

// Player receives cues. Implementations must not call back into the core.
type Player interface {
	Play(c Cue, attrs map[string]any)
}

// Nop discards every cue.
type Nop struct{}

func (Nop) Play(Cue, map[string]any) {}

// Event is a cue as captured by a Recorder.
type Event struct {
	Cue   Cue
	Attrs map[string]any
}

// Recorder keeps every cue it receives, in order. Useful in tests and for
// presenters that drain cues after each step.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Play(c Cue, attrs map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Cue: c, Attrs: attrs})
}

// Events returns a copy of the recorded cues.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Drain returns the recorded cues and clears the recorder.
func (r *Recorder) Drain() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}
