// Package session holds the bookkeeping that sits next to the core stats:
// the calendar, activity metrics, the résumé, the scrapbook and the chosen
// career track. All of it is owned by one Session and written through its
// methods.
package session

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/five-acts/pkg/narrative"
)

// Clock is the player's position in time.
type Clock struct {
	Week int `json:"week"`
	Day  int `json:"day"`
	Act  int `json:"act"`
}

// NewClock returns the first day of the given act.
func NewClock(act int) Clock {
	return Clock{Week: 1, Day: 1, Act: act}
}

// AdvanceDay moves to the next day, rolling into a new week after
// daysPerWeek days. It reports whether a new week started.
func (c *Clock) AdvanceDay(daysPerWeek int) bool {
	if daysPerWeek <= 0 {
		daysPerWeek = narrative.DefaultDaysPerWeek
	}
	c.Day++
	if c.Day > daysPerWeek {
		c.Day = 1
		c.Week++
		return true
	}
	return false
}

// Metrics are running totals derived from planning allocations.
type Metrics struct {
	HoursWorked         int `json:"hoursWorked"`
	HoursWithPeople     int `json:"hoursWithPeople"`
	DoorDashOrders      int `json:"doorDashOrders"`
	ConsecutiveRestDays int `json:"consecutiveRestDays"`
}

// Allocation is hours spent per activity id for one planned day.
type Allocation map[string]int

// Total returns the hours allocated.
func (a Allocation) Total() int {
	total := 0
	for _, h := range a {
		if h > 0 {
			total += h
		}
	}
	return total
}

// ScrapbookEntry is a keepsake collected along the way.
type ScrapbookEntry struct {
	Act      int       `json:"act"`
	MomentID string    `json:"momentId,omitempty"`
	Text     string    `json:"text"`
	AddedAt  time.Time `json:"addedAt"`
}

// Session is the single owner of non-stat progress for one playthrough.
type Session struct {
	ID          uuid.UUID
	clock       Clock
	metrics     Metrics
	resume      map[string]any
	scrapbook   []ScrapbookEntry
	careerTrack *string
	now         func() time.Time
}

// New starts a fresh session at act 1.
func New() *Session {
	return &Session{
		ID:     uuid.New(),
		clock:  NewClock(1),
		resume: make(map[string]any),
		now:    time.Now,
	}
}

// Clock returns the current time position.
func (s *Session) Clock() Clock { return s.clock }

// StartAct resets the clock to the first day of act.
func (s *Session) StartAct(act int) { s.clock = NewClock(act) }

// AdvanceDay moves the clock forward one day.
func (s *Session) AdvanceDay(daysPerWeek int) bool { return s.clock.AdvanceDay(daysPerWeek) }

// Metrics returns a copy of the running totals.
func (s *Session) Metrics() Metrics { return s.metrics }

// RecordDay folds one day's allocation into the metrics. categories maps
// activity id to its category; unknown activities are ignored.
func (s *Session) RecordDay(alloc Allocation, categories map[string]narrative.ActivityCategory) {
	total, rest := 0, 0
	for id, hours := range alloc {
		if hours <= 0 {
			continue
		}
		cat, ok := categories[id]
		if !ok {
			continue
		}
		total += hours
		switch cat {
		case narrative.CategoryWork:
			s.metrics.HoursWorked += hours
		case narrative.CategoryGig:
			s.metrics.HoursWorked += hours
			s.metrics.DoorDashOrders += hours
		case narrative.CategoryPeople:
			s.metrics.HoursWithPeople += hours
		case narrative.CategoryRest:
			rest += hours
		}
	}
	if total > 0 && rest*2 >= total {
		s.metrics.ConsecutiveRestDays++
	} else {
		s.metrics.ConsecutiveRestDays = 0
	}
}

// Resume returns a copy of the résumé fields.
func (s *Session) Resume() map[string]any { return maps.Clone(s.resume) }

// UpdateResume merges fields into the résumé.
func (s *Session) UpdateResume(fields map[string]any) {
	for k, v := range fields {
		s.resume[k] = v
	}
}

// Scrapbook returns the collected entries in order.
func (s *Session) Scrapbook() []ScrapbookEntry { return slices.Clone(s.scrapbook) }

// AddScrapbook appends a keepsake for the current act.
func (s *Session) AddScrapbook(momentID, text string) {
	if text == "" {
		return
	}
	s.scrapbook = append(s.scrapbook, ScrapbookEntry{
		Act:      s.clock.Act,
		MomentID: momentID,
		Text:     text,
		AddedAt:  s.now().UTC(),
	})
}

// CareerTrack returns the chosen track, or "" before the roulette.
func (s *Session) CareerTrack() string {
	if s.careerTrack == nil {
		return ""
	}
	return *s.careerTrack
}

// SetCareerTrack records the career track.
func (s *Session) SetCareerTrack(track string) {
	if track == "" {
		s.careerTrack = nil
		return
	}
	s.careerTrack = &track
}

// State is the persisted form of a session.
type State struct {
	ID          uuid.UUID
	Clock       Clock
	Metrics     Metrics
	Resume      map[string]any
	Scrapbook   []ScrapbookEntry
	CareerTrack *string
}

// State returns a copy of the session for persistence.
func (s *Session) State() State {
	var track *string
	if s.careerTrack != nil {
		t := *s.careerTrack
		track = &t
	}
	return State{
		ID:          s.ID,
		Clock:       s.clock,
		Metrics:     s.metrics,
		Resume:      maps.Clone(s.resume),
		Scrapbook:   slices.Clone(s.scrapbook),
		CareerTrack: track,
	}
}

// Restore overwrites the session from persisted state. A nil ID keeps the
// current one; a zero clock starts at act 1.
func (s *Session) Restore(st State) {
	if st.ID != uuid.Nil {
		s.ID = st.ID
	}
	s.clock = st.Clock
	if s.clock.Act <= 0 {
		s.clock.Act = 1
	}
	if s.clock.Week <= 0 {
		s.clock.Week = 1
	}
	if s.clock.Day <= 0 {
		s.clock.Day = 1
	}
	s.metrics = st.Metrics
	s.resume = make(map[string]any, len(st.Resume))
	maps.Copy(s.resume, st.Resume)
	s.scrapbook = slices.Clone(st.Scrapbook)
	s.careerTrack = nil
	if st.CareerTrack != nil {
		s.SetCareerTrack(*st.CareerTrack)
	}
}
