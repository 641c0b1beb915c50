package narrative

import (
	"github.com/jwebster45206/five-acts/pkg/conditionals"
	"github.com/jwebster45206/five-acts/pkg/relationships"
)

// FinalAct is the last playable act. Starting an act past it ends the game.
const FinalAct = 5

type StepType string

const (
	StepTitleCard      StepType = "title_card"
	StepPlanning       StepType = "planning"
	StepMoment         StepType = "moment"
	StepDayEnd         StepType = "day_end"
	StepClimax         StepType = "climax"
	StepActTransition  StepType = "act_transition"
	StepCareerRoulette StepType = "career_roulette"
	StepMirrorMoment   StepType = "mirror_moment"
	StepScrapbook      StepType = "scrapbook"
)

// StepTypes lists every step type the flow controller dispatches.
var StepTypes = []StepType{
	StepTitleCard, StepPlanning, StepMoment, StepDayEnd, StepClimax,
	StepActTransition, StepCareerRoulette, StepMirrorMoment, StepScrapbook,
}

// Step is one entry of an act's flow.
type Step struct {
	Type     StepType `json:"type" yaml:"type"`
	Moment   string   `json:"moment,omitempty" yaml:"moment,omitempty"`     // moment and climax steps
	Title    string   `json:"title,omitempty" yaml:"title,omitempty"`       // title cards and transitions
	Subtitle string   `json:"subtitle,omitempty" yaml:"subtitle,omitempty"` // title cards
	Text     string   `json:"text,omitempty" yaml:"text,omitempty"`         // mirror moments
	Options  []string `json:"options,omitempty" yaml:"options,omitempty"`   // career roulette tracks
}

// Manifest is the ordered flow of one act.
type Manifest struct {
	Act  int    `json:"act" yaml:"act"`
	Name string `json:"name" yaml:"name"`
	Flow []Step `json:"flow" yaml:"flow"`
}

type EntryType string

const (
	EntryDescription EntryType = "description"
	EntryDialogue    EntryType = "dialogue"
	EntryChoices     EntryType = "choices"
	EntryMonologue   EntryType = "monologue"
)

// Entry is one beat of a moment's narrative.
type Entry struct {
	Type      EntryType               `json:"type" yaml:"type"`
	Text      string                  `json:"text,omitempty" yaml:"text,omitempty"`
	Speaker   string                  `json:"speaker,omitempty" yaml:"speaker,omitempty"` // character id for dialogue
	Prompt    string                  `json:"prompt,omitempty" yaml:"prompt,omitempty"`   // choices entries
	Choices   []Choice                `json:"choices,omitempty" yaml:"choices,omitempty"`
	Condition *conditionals.Condition `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// Choice is a selectable option inside a choices entry.
type Choice struct {
	ID        string                  `json:"id" yaml:"id"`
	Text      string                  `json:"text" yaml:"text"`
	Effects   map[string]float64      `json:"effects,omitempty" yaml:"effects,omitempty"` // stat name or <character>_connection
	Next      string                  `json:"next,omitempty" yaml:"next,omitempty"`       // moment id to jump to
	Scrapbook string                  `json:"scrapbook,omitempty" yaml:"scrapbook,omitempty"`
	Resume    map[string]any          `json:"resume,omitempty" yaml:"resume,omitempty"`
	Condition *conditionals.Condition `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// Moment is a keyed narrative beat.
type Moment struct {
	ID        string  `json:"id" yaml:"id"`
	Setting   string  `json:"setting,omitempty" yaml:"setting,omitempty"`
	Narrative []Entry `json:"narrative" yaml:"narrative"`
}

// Choices returns every choice in the moment, in entry order.
func (m *Moment) Choices() []Choice {
	var out []Choice
	for _, e := range m.Narrative {
		if e.Type == EntryChoices {
			out = append(out, e.Choices...)
		}
	}
	return out
}

// FindChoice looks a choice up by id.
func (m *Moment) FindChoice(id string) (Choice, bool) {
	for _, c := range m.Choices() {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}

// MomentSet is the moments file of one act.
type MomentSet struct {
	Moments []Moment `json:"moments" yaml:"moments"`
}

type ActivityCategory string

const (
	CategoryWork   ActivityCategory = "work"
	CategoryPeople ActivityCategory = "people"
	CategoryGig    ActivityCategory = "gig"
	CategoryRest   ActivityCategory = "rest"
	CategoryStudy  ActivityCategory = "study"
)

// Activity is something the player can spend hours on during planning.
type Activity struct {
	ID          string             `json:"id" yaml:"id"`
	Label       string             `json:"label" yaml:"label"`
	Category    ActivityCategory   `json:"category" yaml:"category"`
	Effects     map[string]float64 `json:"effects,omitempty" yaml:"effects,omitempty"`         // per hour
	Connections map[string]float64 `json:"connections,omitempty" yaml:"connections,omitempty"` // per hour, keyed by character id
}

// ActConfig holds the day length, activities and cast introduced by an act.
type ActConfig struct {
	Act         int                       `json:"act" yaml:"act"`
	Name        string                    `json:"name" yaml:"name"`
	DaysPerWeek int                       `json:"days_per_week" yaml:"days_per_week"`
	HoursPerDay int                       `json:"hours_per_day" yaml:"hours_per_day"`
	Activities  []Activity                `json:"activities" yaml:"activities"`
	Cast        []relationships.Character `json:"cast" yaml:"cast"`
}

const (
	DefaultDaysPerWeek = 7
	DefaultHoursPerDay = 16
)

// WithDefaults fills zero day-length fields.
func (c ActConfig) WithDefaults() ActConfig {
	if c.DaysPerWeek <= 0 {
		c.DaysPerWeek = DefaultDaysPerWeek
	}
	if c.HoursPerDay <= 0 {
		c.HoursPerDay = DefaultHoursPerDay
	}
	return c
}

// Act bundles everything loaded for one act.
type Act struct {
	Number   int
	Manifest Manifest
	Moments  []Moment
	Config   ActConfig
}

// Palette is a named color gradient used by title cards and transitions.
type Palette struct {
	Name   string   `json:"name" yaml:"name"`
	Colors []string `json:"colors" yaml:"colors"`
}
