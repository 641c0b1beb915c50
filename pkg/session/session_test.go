package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/five-acts/pkg/narrative"
	"github.com/stretchr/testify/assert"
)

var categories = map[string]narrative.ActivityCategory{
	"study":    narrative.CategoryStudy,
	"barista":  narrative.CategoryWork,
	"doordash": narrative.CategoryGig,
	"friends":  narrative.CategoryPeople,
	"sleep":    narrative.CategoryRest,
}

func TestClock_AdvanceDay(t *testing.T) {
	c := NewClock(2)
	for i := 0; i < 4; i++ {
		assert.False(t, c.AdvanceDay(5))
	}
	assert.Equal(t, Clock{Week: 1, Day: 5, Act: 2}, c)
	assert.True(t, c.AdvanceDay(5))
	assert.Equal(t, Clock{Week: 2, Day: 1, Act: 2}, c)
}

func TestClock_AdvanceDayDefaultWeek(t *testing.T) {
	c := NewClock(1)
	for i := 0; i < 7; i++ {
		c.AdvanceDay(0)
	}
	assert.Equal(t, 2, c.Week)
	assert.Equal(t, 1, c.Day)
}

func TestSession_RecordDay(t *testing.T) {
	s := New()
	s.RecordDay(Allocation{"barista": 4, "doordash": 3, "friends": 2, "study": 5, "mystery": 9}, categories)

	m := s.Metrics()
	assert.Equal(t, 7, m.HoursWorked)
	assert.Equal(t, 3, m.DoorDashOrders)
	assert.Equal(t, 2, m.HoursWithPeople)
	assert.Equal(t, 0, m.ConsecutiveRestDays)
}

func TestSession_RestStreak(t *testing.T) {
	s := New()
	s.RecordDay(Allocation{"sleep": 8, "study": 8}, categories)
	s.RecordDay(Allocation{"sleep": 10, "study": 2}, categories)
	assert.Equal(t, 2, s.Metrics().ConsecutiveRestDays)

	s.RecordDay(Allocation{"sleep": 2, "study": 10}, categories)
	assert.Equal(t, 0, s.Metrics().ConsecutiveRestDays)

	s.RecordDay(Allocation{}, categories)
	assert.Equal(t, 0, s.Metrics().ConsecutiveRestDays)
}

func TestSession_ScrapbookAndResume(t *testing.T) {
	s := New()
	s.StartAct(3)
	s.AddScrapbook("graduation", "Tassel, slightly crooked.")
	s.AddScrapbook("graduation", "")
	s.UpdateResume(map[string]any{"degree": "B.A. Economics"})
	s.UpdateResume(map[string]any{"internship": "Hartwell Capital"})

	book := s.Scrapbook()
	assert.Len(t, book, 1)
	assert.Equal(t, 3, book[0].Act)
	assert.Equal(t, map[string]any{"degree": "B.A. Economics", "internship": "Hartwell Capital"}, s.Resume())
}

func TestSession_CareerTrack(t *testing.T) {
	s := New()
	assert.Empty(t, s.CareerTrack())
	s.SetCareerTrack("finance")
	assert.Equal(t, "finance", s.CareerTrack())
	assert.Equal(t, "finance", *s.State().CareerTrack)
	s.SetCareerTrack("")
	assert.Nil(t, s.State().CareerTrack)
}

func TestSession_StateRestore(t *testing.T) {
	s := New()
	s.StartAct(4)
	s.AdvanceDay(7)
	s.RecordDay(Allocation{"barista": 6}, categories)
	s.SetCareerTrack("nonprofit")
	s.AddScrapbook("", "A ticket stub.")

	restored := New()
	restored.Restore(s.State())

	assert.Equal(t, s.State(), restored.State())
}

func TestSession_RestoreDefaults(t *testing.T) {
	s := New()
	id := s.ID
	s.Restore(State{ID: uuid.Nil})

	assert.Equal(t, id, s.ID)
	assert.Equal(t, NewClock(1), s.Clock())
	assert.NotNil(t, s.Resume())
}
