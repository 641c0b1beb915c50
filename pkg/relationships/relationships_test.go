package relationships

import (
	"testing"

	"github.com/jwebster45206/five-acts/pkg/cue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_LostIsSticky(t *testing.T) {
	m := NewManager(nil, nil)
	m.Init([]Character{{ID: "mom", Connection: 60}})

	change, ok := m.Modify("mom", -60)
	require.True(t, ok)
	assert.Equal(t, 0.0, change.Connection)
	assert.True(t, change.Lost)
	assert.True(t, change.JustLost)

	change, ok = m.Modify("mom", 50)
	require.True(t, ok)
	assert.Equal(t, 0.0, change.Connection)
	assert.True(t, change.Lost)
	assert.False(t, change.JustLost)
}

func TestManager_AddIsIdempotent(t *testing.T) {
	m := NewManager(nil, nil)
	assert.True(t, m.Add("jordan", Character{Connection: 40}))
	assert.False(t, m.Add("jordan", Character{Connection: 90}))

	r, ok := m.Get("jordan")
	require.True(t, ok)
	assert.Equal(t, 40.0, r.Connection)
	assert.Equal(t, "Jordan", r.Name)
}

func TestManager_ModifyClampsAndReachesOut(t *testing.T) {
	m := NewManager(nil, nil)
	m.Init([]Character{{ID: "priya", Name: "Priya", Connection: 12}})

	change, _ := m.Modify("priya", 200)
	assert.Equal(t, 100.0, change.Connection)
	assert.True(t, change.ReachesOut)

	change, _ = m.Modify("priya", -91)
	assert.Equal(t, 9.0, change.Connection)
	assert.False(t, change.ReachesOut)
	assert.False(t, change.Lost)
}

func TestManager_ModifyUnknown(t *testing.T) {
	m := NewManager(nil, nil)
	_, ok := m.Modify("ghost", 10)
	assert.False(t, ok)
}

func TestManager_SeededAtZeroIsLost(t *testing.T) {
	m := NewManager(nil, nil)
	m.Add("ex", Character{Connection: 0})
	r, _ := m.Get("ex")
	assert.True(t, r.Lost)

	change, _ := m.Modify("ex", 30)
	assert.Equal(t, 0.0, change.Connection)
}

func TestManager_ApplyDailyDecay(t *testing.T) {
	rec := &cue.Recorder{}
	m := NewManager(rec, nil)
	m.Init([]Character{
		{ID: "mom", Connection: 76},
		{ID: "jordan", Connection: 51},
		{ID: "priya", Connection: 1},
		{ID: "ex", Connection: 30},
	})
	m.Modify("ex", -30)

	lost := m.ApplyDailyDecay(DefaultDecay)

	assert.Equal(t, 74.0, m.Connection("mom"))
	assert.Equal(t, 49.0, m.Connection("jordan"))
	assert.Equal(t, 0.0, m.Connection("priya"))
	assert.Equal(t, 0.0, m.Connection("ex"))

	require.Len(t, lost, 1)
	assert.Equal(t, "priya", lost[0].ID)

	events := rec.Events()
	require.Len(t, events, 1, "at most one cue per decay")
	assert.Equal(t, cue.RelationshipFade, events[0].Cue)
	assert.Equal(t, "mom", events[0].Attrs["character_id"])
	assert.Equal(t, 75.0, events[0].Attrs["threshold"])
}

func TestManager_ApplyDailyDecayLostCue(t *testing.T) {
	rec := &cue.Recorder{}
	m := NewManager(rec, nil)
	m.Init([]Character{{ID: "priya", Connection: 2}, {ID: "mom", Connection: 76}})

	lost := m.ApplyDailyDecay(DefaultDecay)

	require.Len(t, lost, 1)
	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, cue.RelationshipLost, events[0].Cue)
	assert.Equal(t, "priya", events[0].Attrs["character_id"])
}

func TestManager_ApplyDailyDecayNoCrossing(t *testing.T) {
	rec := &cue.Recorder{}
	m := NewManager(rec, nil)
	m.Init([]Character{{ID: "mom", Connection: 90}})

	assert.Empty(t, m.ApplyDailyDecay(DefaultDecay))
	assert.Empty(t, rec.Events())
	assert.Equal(t, 88.0, m.Connection("mom"))
}

func TestManager_PortraitOpacity(t *testing.T) {
	m := NewManager(nil, nil)
	for c := 0.0; c <= 100; c++ {
		m.Reset()
		m.Add("x", Character{Connection: c})
		got := m.PortraitOpacity("x")
		assert.GreaterOrEqual(t, got, MinPortraitOpacity)
		if c >= 15 {
			assert.Equal(t, c/100, got)
		}
	}
	assert.Equal(t, MinPortraitOpacity, m.PortraitOpacity("unknown"))
}

func TestManager_SortedIsStable(t *testing.T) {
	m := NewManager(nil, nil)
	m.Init([]Character{
		{ID: "a", Connection: 50},
		{ID: "b", Connection: 80},
		{ID: "c", Connection: 50},
		{ID: "d", Connection: 20},
	})

	var ids []string
	for _, r := range m.Sorted() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, ids)
}

func TestManager_SnapshotRestore(t *testing.T) {
	m := NewManager(nil, nil)
	m.Init([]Character{{ID: "mom", Connection: 60}, {ID: "jordan", Connection: 5}})
	m.Modify("jordan", -5)

	restored := NewManager(nil, nil)
	restored.Restore(m.Snapshot(), m.Order())

	assert.Equal(t, m.All(), restored.All())
	r, _ := restored.Get("jordan")
	assert.True(t, r.Lost)
}
