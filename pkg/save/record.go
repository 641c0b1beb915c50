// Package save converts live game state to and from the persisted save record.
package save

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/five-acts/pkg/narrative"
	"github.com/jwebster45206/five-acts/pkg/relationships"
	"github.com/jwebster45206/five-acts/pkg/session"
	"github.com/jwebster45206/five-acts/pkg/stats"
)

// Version is bumped whenever the record layout changes incompatibly.
const Version = 1

// Key is the single save slot's key in keyed backends.
const Key = "five-acts:save:v1"

// Record is the flat persisted form of a game.
type Record struct {
	Version             int                                   `json:"version"`
	ID                  uuid.UUID                             `json:"id"`
	Stats               stats.Snapshot                        `json:"stats"`
	Relationships       map[string]relationships.Relationship `json:"relationships"`
	RelationshipOrder   []string                              `json:"relationshipOrder,omitempty"`
	Resume              map[string]any                        `json:"resume"`
	Time                *session.Clock                        `json:"time"`
	CareerTrack         *string                               `json:"careerTrack"`
	HoursWorked         int                                   `json:"hoursWorked"`
	HoursWithPeople     int                                   `json:"hoursWithPeople"`
	DoorDashOrders      int                                   `json:"doorDashOrders"`
	ConsecutiveRestDays int                                   `json:"consecutiveRestDays"`
	Scrapbook           []session.ScrapbookEntry              `json:"scrapbook"`
	NarrativeProgress   *narrative.Progress                   `json:"narrativeProgress"`
	Timestamp           int64                                 `json:"timestamp"` // Unix milliseconds

	// Skipped lists top-level fields that were present but unreadable.
	Skipped []string `json:"-"`
}

// UnmarshalJSON decodes each top-level field on its own. A field that does
// not decode keeps its zero value and is listed in Skipped, so one bad field
// does not cost the rest of the save.
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var out Record
	decoders := map[string]func(json.RawMessage) error{
		"version":             into(&out.Version),
		"id":                  into(&out.ID),
		"stats":               into(&out.Stats),
		"relationships":       into(&out.Relationships),
		"relationshipOrder":   into(&out.RelationshipOrder),
		"resume":              into(&out.Resume),
		"time":                into(&out.Time),
		"careerTrack":         into(&out.CareerTrack),
		"hoursWorked":         into(&out.HoursWorked),
		"hoursWithPeople":     into(&out.HoursWithPeople),
		"doorDashOrders":      into(&out.DoorDashOrders),
		"consecutiveRestDays": into(&out.ConsecutiveRestDays),
		"scrapbook":           into(&out.Scrapbook),
		"narrativeProgress":   into(&out.NarrativeProgress),
		"timestamp":           into(&out.Timestamp),
	}
	for name, raw := range fields {
		decode, ok := decoders[name]
		if !ok {
			continue
		}
		if err := decode(raw); err != nil {
			out.Skipped = append(out.Skipped, name)
		}
	}
	slices.Sort(out.Skipped)
	*r = out
	return nil
}

// into decodes a raw field into dst, leaving dst untouched on failure.
func into[T any](dst *T) func(json.RawMessage) error {
	return func(raw json.RawMessage) error {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

// State groups the live objects a record is taken from and applied to.
type State struct {
	Stats         *stats.Manager
	Relationships *relationships.Manager
	Session       *session.Session
	Engine        *narrative.Engine
}

// Snapshot captures the current state as a record.
func Snapshot(st State) *Record {
	ss := st.Session.State()
	clock := ss.Clock
	progress := st.Engine.Progress()
	return &Record{
		Version:             Version,
		ID:                  ss.ID,
		Stats:               st.Stats.All(),
		Relationships:       st.Relationships.Snapshot(),
		RelationshipOrder:   st.Relationships.Order(),
		Resume:              ss.Resume,
		Time:                &clock,
		CareerTrack:         ss.CareerTrack,
		HoursWorked:         ss.Metrics.HoursWorked,
		HoursWithPeople:     ss.Metrics.HoursWithPeople,
		DoorDashOrders:      ss.Metrics.DoorDashOrders,
		ConsecutiveRestDays: ss.Metrics.ConsecutiveRestDays,
		Scrapbook:           ss.Scrapbook,
		NarrativeProgress:   &progress,
		Timestamp:           time.Now().UnixMilli(),
	}
}

// Apply overwrites the live state with a record. Missing fields take their
// defaults. Act content is not loaded here; the engine's cursor is clamped
// once the caller loads the act.
func Apply(r *Record, st State) {
	st.Stats.Restore(r.Stats)
	st.Relationships.Restore(r.Relationships, r.RelationshipOrder)

	clock := session.NewClock(1)
	if r.Time != nil {
		clock = *r.Time
	}
	st.Session.Restore(session.State{
		ID:    r.ID,
		Clock: clock,
		Metrics: session.Metrics{
			HoursWorked:         r.HoursWorked,
			HoursWithPeople:     r.HoursWithPeople,
			DoorDashOrders:      r.DoorDashOrders,
			ConsecutiveRestDays: r.ConsecutiveRestDays,
		},
		Resume:      r.Resume,
		Scrapbook:   r.Scrapbook,
		CareerTrack: r.CareerTrack,
	})

	progress := narrative.Progress{CurrentAct: clock.Act}
	if r.NarrativeProgress != nil {
		progress = *r.NarrativeProgress
	}
	if progress.CurrentAct <= 0 {
		progress.CurrentAct = max(clock.Act, 1)
	}
	st.Engine.Reset()
	st.Engine.RestoreProgress(progress)
}
