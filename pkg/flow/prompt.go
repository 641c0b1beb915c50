package flow

import (
	"github.com/jwebster45206/five-acts/pkg/narrative"
	"github.com/jwebster45206/five-acts/pkg/relationships"
	"github.com/jwebster45206/five-acts/pkg/session"
	"github.com/jwebster45206/five-acts/pkg/stats"
)

// Prompt is a step waiting on the player. Exactly one prompt is pending at a
// time; it is answered with a Result carrying the same Ticket.
type Prompt struct {
	Ticket uint64             `json:"ticket"`
	Kind   narrative.StepType `json:"kind"`
	Act    int                `json:"act"`
	Clock  session.Clock      `json:"clock"`

	Title    string             `json:"title,omitempty"`
	Subtitle string             `json:"subtitle,omitempty"`
	Text     string             `json:"text,omitempty"`
	Palette  *narrative.Palette `json:"palette,omitempty"`

	// moment and climax
	Moment *narrative.Moment `json:"moment,omitempty"`

	// planning
	Activities  []narrative.Activity `json:"activities,omitempty"`
	HoursPerDay int                  `json:"hoursPerDay,omitempty"`

	// career_roulette
	Options []string `json:"options,omitempty"`

	// mirror_moment
	Mirror *Mirror `json:"mirror,omitempty"`

	// scrapbook
	Scrapbook []session.ScrapbookEntry `json:"scrapbook,omitempty"`
	Ending    *Ending                  `json:"ending,omitempty"`
	Final     bool                     `json:"final,omitempty"`

	Burnout stats.BurnoutEffects `json:"burnout"`
	// Lost lists relationships lost since the previous prompt.
	Lost []relationships.LostEvent `json:"lost,omitempty"`
}

// Mirror is the reflective stat summary shown by mirror_moment steps.
type Mirror struct {
	Stats         stats.Snapshot               `json:"stats"`
	Relationships []relationships.Relationship `json:"relationships"`
	CollegeTier   int                          `json:"collegeTier"`
	Performance   stats.PerformanceRating      `json:"performance"`
	Metrics       session.Metrics              `json:"metrics"`
	CareerTrack   string                       `json:"careerTrack,omitempty"`
}

// Result answers a Prompt. Only the field matching the prompt's kind is read.
type Result struct {
	Ticket      uint64             `json:"ticket"`
	ChoiceID    string             `json:"choiceId,omitempty"`
	Allocation  session.Allocation `json:"allocation,omitempty"`
	CareerTrack string             `json:"careerTrack,omitempty"`
}

// Ack answers a prompt that needs no input.
func Ack(p *Prompt) Result { return Result{Ticket: p.Ticket} }
