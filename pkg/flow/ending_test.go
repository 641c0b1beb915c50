package flow

import (
	"testing"

	"github.com/jwebster45206/five-acts/pkg/relationships"
	"github.com/jwebster45206/five-acts/pkg/stats"
	"github.com/stretchr/testify/assert"
)

func TestDetermineEnding(t *testing.T) {
	near := []relationships.Relationship{{ID: "mom", Connection: 72}}
	distant := []relationships.Relationship{{ID: "mom", Connection: 40}}

	with := func(overrides stats.Snapshot) stats.Snapshot {
		s := stats.Defaults()
		for k, v := range overrides {
			s[k] = v
		}
		return s
	}

	tests := []struct {
		name  string
		stats stats.Snapshot
		rels  []relationships.Relationship
		want  EndingID
	}{
		{"burnout wins over everything", with(stats.Snapshot{stats.Burnout: 90, stats.Prestige: 99}), near, EndingBurnout},
		{"true self needs a close relationship", with(stats.Snapshot{stats.Authenticity: 60}), near, EndingTrueSelf},
		{"authentic but alone", with(stats.Snapshot{stats.Authenticity: 95}), distant, EndingDrift},
		{"golden cage", with(stats.Snapshot{stats.Prestige: 70, stats.Authenticity: 30}), near, EndingGoldenCage},
		{"comfortable", with(stats.Snapshot{stats.Wealth: 50000}), nil, EndingComfortable},
		{"prestige before wealth", with(stats.Snapshot{stats.Prestige: 80, stats.Wealth: 90000}), nil, EndingGoldenCage},
		{"drift", with(nil), distant, EndingDrift},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetermineEnding(tt.stats, tt.rels)
			assert.Equal(t, tt.want, got.ID)
			assert.NotEmpty(t, got.Title)
			assert.NotEmpty(t, got.Text)
		})
	}
}
