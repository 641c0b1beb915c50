package narrative

import (
	"encoding/json"
	"testing"

	"github.com/jwebster45206/five-acts/pkg/conditionals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStats map[string]float64

func (m mockStats) Get(name string) float64 { return m[name] }

type mockRels map[string]float64

func (m mockRels) Connection(id string) float64 { return m[id] }

func cond(c conditionals.Condition) *conditionals.Condition { return &c }

func testManifest() Manifest {
	return Manifest{
		Act:  1,
		Name: "Freshman Fall",
		Flow: []Step{
			{Type: StepTitleCard, Title: "Act I"},
			{Type: StepMoment, Moment: "move_in"},
			{Type: StepDayEnd},
		},
	}
}

func testMoments() []Moment {
	return []Moment{
		{
			ID:      "move_in",
			Setting: "Dorm hallway",
			Narrative: []Entry{
				{Type: EntryDescription, Text: "Boxes everywhere."},
				{Type: EntryDialogue, Speaker: "mom", Text: "Call me tonight.",
					Condition: cond(conditionals.Condition{Relationship: "mom", Operator: conditionals.OpGTE, Value: conditionals.Number(50)})},
				{Type: EntryMonologue, Text: "I should study.",
					Condition: cond(conditionals.Condition{Stat: "gpa", Operator: conditionals.OpLT, Value: conditionals.Number(60)})},
				{Type: EntryChoices, Prompt: "Tonight:", Choices: []Choice{
					{ID: "call_mom", Text: "Call mom", Effects: map[string]float64{"mom_connection": 5}},
					{ID: "party", Text: "Floor party", Effects: map[string]float64{"network": 4},
						Condition: cond(conditionals.Condition{Stat: "burnout", Operator: conditionals.OpLT, Value: conditionals.Number(80)})},
				}},
			},
		},
		{ID: "roommate", Narrative: []Entry{{Type: EntryDescription, Text: "First version"}}},
		{ID: "roommate", Narrative: []Entry{{Type: EntryDescription, Text: "Second version"}}},
	}
}

func TestEngine_NextStepSequence(t *testing.T) {
	e := NewEngine(nil)
	e.LoadAct(1, testManifest(), testMoments())

	for i, want := range testManifest().Flow {
		got := e.NextStep()
		require.NotNil(t, got, "step %d", i)
		assert.Equal(t, want, *got)
	}
	assert.Nil(t, e.NextStep())
	assert.Nil(t, e.NextStep())
	assert.Equal(t, 3, e.Cursor())
}

func TestEngine_LoadActResetsCursor(t *testing.T) {
	e := NewEngine(nil)
	e.LoadAct(1, testManifest(), testMoments())
	e.NextStep()
	e.NextStep()

	e.LoadAct(2, testManifest(), nil)
	assert.Equal(t, 0, e.Cursor())
	assert.Equal(t, 2, e.Act())
	assert.Nil(t, e.LoadMoment("move_in"))
}

func TestEngine_DuplicateMomentLastWins(t *testing.T) {
	e := NewEngine(nil)
	e.LoadAct(1, testManifest(), testMoments())

	m := e.LoadMoment("roommate")
	require.NotNil(t, m)
	assert.Equal(t, "Second version", m.Narrative[0].Text)
}

func TestEngine_LoadMomentUnknown(t *testing.T) {
	e := NewEngine(nil)
	assert.Nil(t, e.LoadMoment("move_in"))
	e.LoadAct(1, testManifest(), testMoments())
	assert.Nil(t, e.LoadMoment("nope"))
}

func TestEngine_ResolveMomentFilters(t *testing.T) {
	e := NewEngine(nil)
	e.LoadAct(1, testManifest(), testMoments())

	m := e.ResolveMoment("move_in", mockStats{"gpa": 80, "burnout": 90}, mockRels{"mom": 60})
	require.NotNil(t, m)
	require.Len(t, m.Narrative, 3)
	assert.Equal(t, EntryDescription, m.Narrative[0].Type)
	assert.Equal(t, EntryDialogue, m.Narrative[1].Type)
	require.Len(t, m.Narrative[2].Choices, 1)
	assert.Equal(t, "call_mom", m.Narrative[2].Choices[0].ID)

	// The stored moment is untouched by filtering.
	raw := e.LoadMoment("move_in")
	assert.Len(t, raw.Narrative, 4)
	assert.Len(t, raw.Narrative[3].Choices, 2)
}

func TestEngine_FilterDropsEmptyChoiceEntry(t *testing.T) {
	e := NewEngine(nil)
	entries := []Entry{{Type: EntryChoices, Choices: []Choice{
		{ID: "a", Condition: cond(conditionals.Condition{Stat: "gpa", Operator: conditionals.OpGT, Value: conditionals.Number(99)})},
	}}}
	assert.Empty(t, e.FilterByConditions(entries, mockStats{"gpa": 10}, nil))
}

func TestEngine_ChoiceConditions(t *testing.T) {
	e := NewEngine(nil)
	e.CompleteMoment("dorm_party", "stay_in")

	eq := conditionals.Condition{Choice: "dorm_party", Operator: conditionals.OpEQ, Value: conditionals.String("stay_in")}
	ne := conditionals.Condition{Choice: "dorm_party", Operator: conditionals.OpNE, Value: conditionals.String("stay_in")}
	assert.True(t, e.EvaluateCondition(eq, nil, nil))
	assert.False(t, e.EvaluateCondition(ne, nil, nil))
}

func TestEngine_UnknownOperatorPasses(t *testing.T) {
	e := NewEngine(nil)
	c := conditionals.Condition{Stat: "gpa", Operator: "weird", Value: conditionals.Number(0)}
	for _, gpa := range []float64{0, 50, 100} {
		assert.True(t, e.EvaluateCondition(c, mockStats{"gpa": gpa}, nil))
	}
}

func TestEngine_CompleteMomentDedups(t *testing.T) {
	e := NewEngine(nil)
	e.CompleteMoment("move_in", "call_mom")
	e.CompleteMoment("move_in", "party")

	p := e.Progress()
	assert.Equal(t, []string{"move_in"}, p.CompletedMoments)
	assert.Equal(t, "party", p.ChoiceHistory["move_in"])
	assert.True(t, e.Completed("move_in"))
}

func TestEngine_CurrentMomentClearedOnComplete(t *testing.T) {
	e := NewEngine(nil)
	e.SetCurrentMoment("move_in")
	assert.Equal(t, "move_in", e.Progress().CurrentMomentID)
	e.CompleteMoment("move_in", "")
	assert.Empty(t, e.CurrentMoment())
}

func TestEngine_ProgressRoundTrip(t *testing.T) {
	e := NewEngine(nil)
	e.LoadAct(3, testManifest(), testMoments())
	e.NextStep()
	e.NextStep()
	e.CompleteMoment("move_in", "call_mom")
	e.CompleteMoment("roommate", "")

	data, err := json.Marshal(e.Progress())
	require.NoError(t, err)

	var p Progress
	require.NoError(t, json.Unmarshal(data, &p))

	fresh := NewEngine(nil)
	fresh.RestoreProgress(p)

	assert.Equal(t, e.Progress(), fresh.Progress())
	assert.Equal(t, 2, fresh.Cursor())
	assert.Equal(t, 3, fresh.Act())
}

func TestEngine_RestoreClampsToLoadedFlow(t *testing.T) {
	e := NewEngine(nil)
	e.LoadAct(1, testManifest(), testMoments())
	e.RestoreProgress(Progress{CurrentAct: 1, FlowIndex: 99})
	assert.Equal(t, 3, e.Cursor())
	assert.Nil(t, e.NextStep())
}

func TestMoment_FindChoice(t *testing.T) {
	m := testMoments()[0]
	c, ok := m.FindChoice("party")
	require.True(t, ok)
	assert.Equal(t, 4.0, c.Effects["network"])
	_, ok = m.FindChoice("nope")
	assert.False(t, ok)
}
