package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/five-acts/pkg/narrative"
	"github.com/jwebster45206/five-acts/pkg/save"
	"github.com/jwebster45206/five-acts/pkg/session"
	"github.com/jwebster45206/five-acts/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testRecord() *save.Record {
	track := "design"
	return &save.Record{
		Version:       save.Version,
		ID:            uuid.New(),
		Stats:         map[string]float64{"gpa": 82, "wealth": 1400},
		Resume:        map[string]any{"major": "Art"},
		Time:          &session.Clock{Week: 2, Day: 4, Act: 3},
		CareerTrack:   &track,
		HoursWorked:   12,
		Scrapbook:     []session.ScrapbookEntry{{Act: 1, Text: "Polaroid", AddedAt: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)}},
		Timestamp:     time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC).UnixMilli(),
		Relationships: nil,
		NarrativeProgress: &narrative.Progress{
			CurrentAct:       3,
			FlowIndex:        4,
			CompletedMoments: []string{"a", "b"},
			ChoiceHistory:    map[string]string{"a": "x"},
		},
	}
}

// exerciseSlot runs the save slot contract against a backend.
func exerciseSlot(t *testing.T, s storage.Storage) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))

	loaded, err := s.LoadGame(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded, "empty slot should load as nil")

	want := testRecord()
	require.NoError(t, s.SaveGame(ctx, want))

	loaded, err = s.LoadGame(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, want, loaded)

	// Saving again overwrites the single slot.
	want.HoursWorked = 20
	require.NoError(t, s.SaveGame(ctx, want))
	loaded, err = s.LoadGame(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, loaded.HoursWorked)

	require.NoError(t, s.DeleteGame(ctx))
	loaded, err = s.LoadGame(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Deleting an empty slot is fine.
	require.NoError(t, s.DeleteGame(ctx))
}
