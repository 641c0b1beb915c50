package flow

import (
	"github.com/jwebster45206/five-acts/pkg/relationships"
	"github.com/jwebster45206/five-acts/pkg/stats"
)

type EndingID string

const (
	EndingBurnout     EndingID = "burnout"
	EndingTrueSelf    EndingID = "true_self"
	EndingGoldenCage  EndingID = "golden_cage"
	EndingComfortable EndingID = "comfortable"
	EndingDrift       EndingID = "drift"
)

// Ending is the narrative outcome computed from final state.
type Ending struct {
	ID    EndingID `json:"id"`
	Title string   `json:"title"`
	Text  string   `json:"text"`
}

var endings = map[EndingID]Ending{
	EndingBurnout: {
		ID:    EndingBurnout,
		Title: "Running on Empty",
		Text:  "You gave everything to the schedule and the schedule kept it.",
	},
	EndingTrueSelf: {
		ID:    EndingTrueSelf,
		Title: "True Self",
		Text:  "Not the life on the brochure, but yours, and someone is still calling.",
	},
	EndingGoldenCage: {
		ID:    EndingGoldenCage,
		Title: "The Golden Cage",
		Text:  "The title is impressive. You rehearse it for people who stopped asking.",
	},
	EndingComfortable: {
		ID:    EndingComfortable,
		Title: "Comfortable",
		Text:  "The bills are paid early now. Some evenings that is enough.",
	},
	EndingDrift: {
		ID:    EndingDrift,
		Title: "Drift",
		Text:  "Five acts, and the story never quite picked a direction.",
	},
}

const (
	burnoutEndingAt       = 90
	trueSelfAuthenticity  = 60
	trueSelfConnection    = 70
	goldenCagePrestige    = 70
	comfortableWealthFrom = 50000
)

// DetermineEnding picks the ending for the given final state. The first
// matching rule wins.
func DetermineEnding(s stats.Snapshot, rels []relationships.Relationship) Ending {
	switch {
	case s[stats.Burnout] >= burnoutEndingAt:
		return endings[EndingBurnout]
	case s[stats.Authenticity] >= trueSelfAuthenticity && anyConnectionAtLeast(rels, trueSelfConnection):
		return endings[EndingTrueSelf]
	case s[stats.Prestige] >= goldenCagePrestige:
		return endings[EndingGoldenCage]
	case s[stats.Wealth] >= comfortableWealthFrom:
		return endings[EndingComfortable]
	default:
		return endings[EndingDrift]
	}
}

func anyConnectionAtLeast(rels []relationships.Relationship, n float64) bool {
	for _, r := range rels {
		if r.Connection >= n {
			return true
		}
	}
	return false
}
