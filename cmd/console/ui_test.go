package main

import (
	"context"
	"testing"

	"github.com/jwebster45206/five-acts/pkg/cue"
	"github.com/jwebster45206/five-acts/pkg/flow"
	"github.com/jwebster45206/five-acts/pkg/narrative"
	"github.com/jwebster45206/five-acts/pkg/relationships"
	"github.com/jwebster45206/five-acts/pkg/session"
	"github.com/stretchr/testify/assert"
)

func planningPrompt() *flow.Prompt {
	return &flow.Prompt{
		Ticket:      4,
		Kind:        narrative.StepPlanning,
		HoursPerDay: 3,
		Activities: []narrative.Activity{
			{ID: "study", Label: "Study", Category: narrative.CategoryStudy},
			{ID: "friends", Label: "Friends", Category: narrative.CategoryPeople},
		},
	}
}

func TestConsoleUI_PlanningAllocation(t *testing.T) {
	m := NewConsoleUI(context.Background(), nil)
	m.setPrompt(planningPrompt())

	m.adjustHours(1)
	m.adjustHours(1)
	m.selected = 1
	m.adjustHours(1)
	m.adjustHours(1) // past the day's hours, ignored
	assert.Equal(t, 3, m.alloc.Total())

	m.adjustHours(-1)
	m.adjustHours(-1)
	_, present := m.alloc["friends"]
	assert.False(t, present)

	res := m.result()
	assert.Equal(t, uint64(4), res.Ticket)
	assert.Equal(t, session.Allocation{"study": 2}, res.Allocation)

	// The result holds a copy.
	m.adjustHours(1)
	assert.Equal(t, session.Allocation{"study": 2}, res.Allocation)
}

func TestConsoleUI_ChoiceResult(t *testing.T) {
	m := NewConsoleUI(context.Background(), nil)
	m.setPrompt(&flow.Prompt{
		Ticket: 2,
		Kind:   narrative.StepMoment,
		Moment: &narrative.Moment{ID: "move_in", Narrative: []narrative.Entry{
			{Type: narrative.EntryDescription, Text: "Boxes everywhere."},
			{Type: narrative.EntryChoices, Choices: []narrative.Choice{
				{ID: "call_mom", Text: "Call Mom"},
				{ID: "party", Text: "Find the party"},
			}},
		}},
	})

	assert.Equal(t, []string{"Call Mom", "Find the party"}, m.options())
	m.selected = 1
	assert.Equal(t, "party", m.result().ChoiceID)

	out := m.renderPrompt(60)
	assert.Contains(t, out, "Boxes everywhere.")
	assert.Contains(t, out, "Find the party")
}

func TestConsoleUI_RouletteSpin(t *testing.T) {
	m := NewConsoleUI(context.Background(), nil)
	m.setPrompt(&flow.Prompt{Ticket: 9, Kind: narrative.StepCareerRoulette, Options: []string{"finance", "art"}})

	assert.Equal(t, []string{"Finance", "Art", spinLabel}, m.options())
	assert.Equal(t, "finance", m.result().CareerTrack)

	m.selected = 2
	assert.Empty(t, m.result().CareerTrack)
}

func TestNotices(t *testing.T) {
	msg := promptMsg{
		cues: []cue.Event{
			{Cue: cue.RelationshipFade, Attrs: map[string]any{"character_id": "aunt_mae", "threshold": 50.0}},
			{Cue: cue.RelationshipLost, Attrs: map[string]any{"character_id": "zoe"}},
		},
		prompt: &flow.Prompt{Lost: []relationships.LostEvent{{ID: "zoe", Name: "Zoe"}}},
	}

	got := notices(msg)
	assert.Equal(t, []string{
		"Aunt Mae feels further away.",
		"Zoe is gone. Some doors don't reopen.",
	}, got)
}

func TestDesaturate(t *testing.T) {
	assert.Equal(t, "#ff0000", desaturate("#ff0000", 0))
	assert.Equal(t, "not-a-color", desaturate("not-a-color", 0.5))

	grey := desaturate("#ff0000", 1)
	assert.NotEqual(t, "#ff0000", grey)
	assert.Len(t, grey, 7)
}

func TestOpacityColor(t *testing.T) {
	assert.Equal(t, "235", string(opacityColor(relationships.MinPortraitOpacity)))
	assert.Equal(t, "255", string(opacityColor(1)))
}
