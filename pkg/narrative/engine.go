package narrative

import (
	"log/slog"
	"slices"

	"github.com/jwebster45206/five-acts/pkg/conditionals"
)

// Progress is everything needed to resume an act mid-flow.
type Progress struct {
	CurrentAct       int               `json:"currentAct"`
	FlowIndex        int               `json:"flowIndex"`
	CurrentMomentID  string            `json:"currentMomentId,omitempty"`
	CompletedMoments []string          `json:"completedMoments"`
	ChoiceHistory    map[string]string `json:"choiceHistory"`
}

// Engine walks one act at a time: it holds the act's flow and moments, a
// cursor into the flow, and the history of completed moments and choices.
// Completed moments and choices persist across acts.
type Engine struct {
	act           int
	loaded        bool
	flow          []Step
	cursor        int
	moments       map[string]*Moment
	currentMoment string
	completed     []string
	choices       map[string]string
	logger        *slog.Logger
}

// NewEngine returns an unloaded engine. logger may be nil.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		moments: make(map[string]*Moment),
		choices: make(map[string]string),
		logger:  logger,
	}
}

// Reset clears all progress, including history from earlier acts.
func (e *Engine) Reset() {
	e.act = 0
	e.loaded = false
	e.flow = nil
	e.cursor = 0
	e.moments = make(map[string]*Moment)
	e.currentMoment = ""
	e.completed = nil
	e.choices = make(map[string]string)
}

// LoadAct replaces the loaded act and rewinds the cursor. Moments with a
// duplicate id overwrite earlier ones.
func (e *Engine) LoadAct(act int, manifest Manifest, moments []Moment) {
	e.act = act
	e.loaded = true
	e.flow = slices.Clone(manifest.Flow)
	e.cursor = 0
	e.currentMoment = ""
	e.moments = make(map[string]*Moment, len(moments))
	for i := range moments {
		m := moments[i]
		if _, dup := e.moments[m.ID]; dup {
			e.logger.Debug("Duplicate moment id, later definition wins", "act", act, "moment_id", m.ID)
		}
		e.moments[m.ID] = &m
	}
	e.logger.Debug("Act loaded", "act", act, "steps", len(e.flow), "moments", len(e.moments))
}

// Loaded reports whether an act has been loaded.
func (e *Engine) Loaded() bool { return e.loaded }

// Act returns the loaded act number.
func (e *Engine) Act() int { return e.act }

// Cursor returns the index of the next step.
func (e *Engine) Cursor() int { return e.cursor }

// NextStep returns the step at the cursor and advances. It returns nil once
// the flow is exhausted; the cursor does not move past the end.
func (e *Engine) NextStep() *Step {
	if e.cursor >= len(e.flow) {
		return nil
	}
	step := e.flow[e.cursor]
	e.cursor++
	return &step
}

// LoadMoment looks up a moment by id. It returns nil for unknown ids.
func (e *Engine) LoadMoment(id string) *Moment {
	m, ok := e.moments[id]
	if !ok {
		return nil
	}
	out := *m
	out.Narrative = slices.Clone(m.Narrative)
	return &out
}

// ResolveMoment loads a moment and filters its entries against the current
// state. The result is a snapshot; it is not re-evaluated as state changes.
func (e *Engine) ResolveMoment(id string, stats conditionals.StatView, rels conditionals.RelationshipView) *Moment {
	m := e.LoadMoment(id)
	if m == nil {
		return nil
	}
	m.Narrative = e.FilterByConditions(m.Narrative, stats, rels)
	return m
}

// EvaluateCondition checks a condition against stats, relationships and the
// engine's own choice history.
func (e *Engine) EvaluateCondition(c conditionals.Condition, stats conditionals.StatView, rels conditionals.RelationshipView) bool {
	return conditionals.Evaluate(c, stats, rels, e)
}

// FilterByConditions drops entries, and choices inside choice entries, whose
// conditions fail. A choices entry left with no choices is dropped too.
func (e *Engine) FilterByConditions(entries []Entry, stats conditionals.StatView, rels conditionals.RelationshipView) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.Condition != nil && !e.EvaluateCondition(*entry.Condition, stats, rels) {
			continue
		}
		if entry.Type == EntryChoices {
			var kept []Choice
			for _, c := range entry.Choices {
				if c.Condition != nil && !e.EvaluateCondition(*c.Condition, stats, rels) {
					continue
				}
				kept = append(kept, c)
			}
			if len(kept) == 0 {
				continue
			}
			entry.Choices = kept
		}
		out = append(out, entry)
	}
	return out
}

// ChoiceFor returns the choice recorded for a moment.
func (e *Engine) ChoiceFor(momentID string) (string, bool) {
	c, ok := e.choices[momentID]
	return c, ok
}

// Completed reports whether a moment has been completed.
func (e *Engine) Completed(momentID string) bool {
	return slices.Contains(e.completed, momentID)
}

// CompleteMoment marks a moment completed and records the choice made in
// it. An empty choiceID records completion only.
func (e *Engine) CompleteMoment(momentID, choiceID string) {
	if !slices.Contains(e.completed, momentID) {
		e.completed = append(e.completed, momentID)
	}
	if choiceID != "" {
		e.choices[momentID] = choiceID
	}
	if e.currentMoment == momentID {
		e.currentMoment = ""
	}
}

// SetCurrentMoment records the moment being shown so a save taken mid-moment
// can re-present it.
func (e *Engine) SetCurrentMoment(id string) { e.currentMoment = id }

// CurrentMoment returns the moment being shown, if any.
func (e *Engine) CurrentMoment() string { return e.currentMoment }

// Progress returns a serializable copy of the engine's position.
func (e *Engine) Progress() Progress {
	choices := make(map[string]string, len(e.choices))
	for k, v := range e.choices {
		choices[k] = v
	}
	completed := slices.Clone(e.completed)
	if completed == nil {
		completed = []string{}
	}
	return Progress{
		CurrentAct:       e.act,
		FlowIndex:        e.cursor,
		CurrentMomentID:  e.currentMoment,
		CompletedMoments: completed,
		ChoiceHistory:    choices,
	}
}

// RestoreProgress applies saved progress. The act's content must be loaded
// separately with LoadAct first when the flow is to be resumed; the cursor is
// clamped to the loaded flow.
func (e *Engine) RestoreProgress(p Progress) {
	e.act = p.CurrentAct
	e.cursor = max(p.FlowIndex, 0)
	if e.loaded && e.cursor > len(e.flow) {
		e.cursor = len(e.flow)
	}
	e.currentMoment = p.CurrentMomentID
	e.completed = nil
	for _, id := range p.CompletedMoments {
		if !slices.Contains(e.completed, id) {
			e.completed = append(e.completed, id)
		}
	}
	e.choices = make(map[string]string, len(p.ChoiceHistory))
	for k, v := range p.ChoiceHistory {
		e.choices[k] = v
	}
}
