package flow

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/jwebster45206/five-acts/pkg/narrative"
	"github.com/jwebster45206/five-acts/pkg/relationships"
	"github.com/jwebster45206/five-acts/pkg/session"
	"github.com/jwebster45206/five-acts/pkg/stats"
	"github.com/jwebster45206/five-acts/pkg/textfx"
)

// connectionSuffix marks an effect key as a relationship delta.
const connectionSuffix = "_connection"

// dispatch handles one step. It returns a prompt when the step needs the
// player and nil when the loop should continue.
func (c *Controller) dispatch(ctx context.Context, step narrative.Step) *Prompt {
	switch step.Type {
	case narrative.StepTitleCard:
		return &Prompt{
			Kind:     step.Type,
			Title:    step.Title,
			Subtitle: step.Subtitle,
			Palette:  c.palette(c.currentAct()),
		}

	case narrative.StepPlanning:
		cfg := c.config()
		return &Prompt{
			Kind:        step.Type,
			Title:       step.Title,
			Activities:  slices.Clone(cfg.Activities),
			HoursPerDay: cfg.HoursPerDay,
		}

	case narrative.StepMoment, narrative.StepClimax:
		return c.momentPrompt(step.Type, step.Moment)

	case narrative.StepDayEnd:
		c.dayEnd(ctx)
		return nil

	case narrative.StepActTransition:
		return &Prompt{
			Kind:     step.Type,
			Title:    step.Title,
			Subtitle: step.Subtitle,
			Palette:  c.palette(c.currentAct() + 1),
		}

	case narrative.StepCareerRoulette:
		return &Prompt{
			Kind:    step.Type,
			Title:   step.Title,
			Options: slices.Clone(step.Options),
		}

	case narrative.StepMirrorMoment:
		return &Prompt{
			Kind:   step.Type,
			Title:  step.Title,
			Text:   step.Text,
			Mirror: c.mirror(),
		}

	case narrative.StepScrapbook:
		ending := DetermineEnding(c.stats.All(), c.rels.All())
		return &Prompt{
			Kind:      step.Type,
			Title:     step.Title,
			Scrapbook: c.session.Scrapbook(),
			Ending:    &ending,
		}

	default:
		c.logger.Warn("Unknown step type, skipping", "act", c.currentAct(), "type", step.Type)
		return nil
	}
}

// momentPrompt resolves a moment against current state. A missing moment is
// logged and skipped.
func (c *Controller) momentPrompt(kind narrative.StepType, id string) *Prompt {
	m := c.engine.ResolveMoment(id, c.stats, c.rels)
	if m == nil {
		c.logger.Warn("Moment not found, skipping", "act", c.currentAct(), "moment_id", id)
		return nil
	}
	c.engine.SetCurrentMoment(id)

	if fx := c.stats.BurnoutEffects(); fx.DialogueCorruption {
		intensity := c.stats.Get(stats.Burnout) / 100
		for i := range m.Narrative {
			switch m.Narrative[i].Type {
			case narrative.EntryDialogue, narrative.EntryMonologue:
				m.Narrative[i].Text = textfx.Corrupt(m.Narrative[i].Text, intensity)
			}
		}
	}
	return &Prompt{Kind: kind, Title: m.Setting, Moment: m}
}

func (c *Controller) finalPrompt() *Prompt {
	ending := DetermineEnding(c.stats.All(), c.rels.All())
	c.logger.Info("Game reached its ending", "ending", ending.ID)
	return &Prompt{
		Kind:      narrative.StepScrapbook,
		Title:     ending.Title,
		Scrapbook: c.session.Scrapbook(),
		Ending:    &ending,
		Final:     true,
	}
}

func (c *Controller) mirror() *Mirror {
	return &Mirror{
		Stats:         c.stats.All(),
		Relationships: c.rels.Sorted(),
		CollegeTier:   c.stats.CollegeTier(),
		Performance:   c.stats.PerformanceRating(),
		Metrics:       c.session.Metrics(),
		CareerTrack:   c.session.CareerTrack(),
	}
}

func (c *Controller) config() narrative.ActConfig {
	if c.act == nil {
		return narrative.ActConfig{}.WithDefaults()
	}
	return c.act.Config
}

// validate rejects a result without consuming the pending prompt.
func (c *Controller) validate(p *Prompt, res Result) error {
	if p.Kind != narrative.StepMoment && p.Kind != narrative.StepClimax {
		return nil
	}
	choices := p.Moment.Choices()
	if len(choices) == 0 {
		return nil
	}
	for _, ch := range choices {
		if ch.ID == res.ChoiceID {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidChoice, res.ChoiceID)
}

// apply folds a result into state. It returns a follow-up prompt when the
// result branches directly to another moment.
func (c *Controller) apply(ctx context.Context, p *Prompt, res Result) *Prompt {
	switch p.Kind {
	case narrative.StepPlanning:
		c.applyAllocation(res.Allocation)

	case narrative.StepMoment, narrative.StepClimax:
		return c.applyChoice(p, res.ChoiceID)

	case narrative.StepActTransition:
		return c.enterAct(ctx, c.currentAct()+1)

	case narrative.StepCareerRoulette:
		track := res.CareerTrack
		if track == "" && len(p.Options) > 0 {
			track = p.Options[c.rng.IntN(len(p.Options))]
			c.logger.Debug("Career roulette spun", "track", track)
		}
		if track != "" {
			c.session.SetCareerTrack(track)
			c.logger.Info("Career track chosen", "track", track)
		}

	case narrative.StepMirrorMoment:
		if c.session.CareerTrack() != "" {
			review := c.stats.PerformanceRating()
			c.stats.Modify(stats.Wealth, review.SalaryDelta)
			c.logger.Info("Performance review", "rating", review.Rating, "salary_delta", review.SalaryDelta)
		}

	case narrative.StepScrapbook:
		c.state = StateComplete
		c.logger.Info("Game complete", "ending", p.Ending.ID)
	}
	return nil
}

func (c *Controller) applyChoice(p *Prompt, choiceID string) *Prompt {
	m := p.Moment
	choice, ok := m.FindChoice(choiceID)
	if !ok {
		c.engine.CompleteMoment(m.ID, "")
		return nil
	}

	c.applyEffects(choice.Effects, 1)
	if choice.Scrapbook != "" {
		c.session.AddScrapbook(m.ID, choice.Scrapbook)
	}
	if len(choice.Resume) > 0 {
		c.session.UpdateResume(choice.Resume)
	}
	c.engine.CompleteMoment(m.ID, choice.ID)
	c.logger.Debug("Choice made", "moment_id", m.ID, "choice_id", choice.ID)

	if choice.Next == "" {
		return nil
	}
	return c.momentPrompt(narrative.StepMoment, choice.Next)
}

// applyAllocation applies per-hour activity effects for one planned day.
// Hours beyond the day's total are trimmed in activity order.
func (c *Controller) applyAllocation(alloc session.Allocation) {
	cfg := c.config()
	penalty := c.stats.BurnoutEffects().PerformancePenalty
	remaining := cfg.HoursPerDay
	trimmed := make(session.Allocation, len(alloc))
	categories := make(map[string]narrative.ActivityCategory, len(cfg.Activities))

	for _, a := range cfg.Activities {
		categories[a.ID] = a.Category
		hours := min(alloc[a.ID], remaining)
		if hours <= 0 {
			continue
		}
		remaining -= hours
		trimmed[a.ID] = hours

		c.applyEffects(scaleGains(a.Effects, penalty), float64(hours))
		for _, id := range slices.Sorted(maps.Keys(a.Connections)) {
			c.modifyConnection(id, a.Connections[id]*float64(hours))
		}
	}
	if total := alloc.Total(); total > trimmed.Total() {
		c.logger.Debug("Allocation trimmed to the day's hours", "requested", total, "applied", trimmed.Total())
	}
	c.session.RecordDay(trimmed, categories)
}

// scaleGains scales positive gpa and prestige gains by the burnout penalty.
func scaleGains(effects map[string]float64, penalty float64) map[string]float64 {
	if penalty >= 1 {
		return effects
	}
	out := make(map[string]float64, len(effects))
	for k, v := range effects {
		if v > 0 && (k == stats.GPA || k == stats.Prestige) {
			v *= penalty
		}
		out[k] = v
	}
	return out
}

// applyEffects applies stat and <id>_connection deltas times n, in key
// order. Unknown keys are ignored.
func (c *Controller) applyEffects(effects map[string]float64, n float64) {
	for _, key := range slices.Sorted(maps.Keys(effects)) {
		delta := effects[key] * n
		switch {
		case slices.Contains(stats.Names, key):
			c.stats.Modify(key, delta)
		case strings.HasSuffix(key, connectionSuffix):
			c.modifyConnection(strings.TrimSuffix(key, connectionSuffix), delta)
		}
	}
}

func (c *Controller) modifyConnection(id string, delta float64) {
	ch, ok := c.rels.Modify(id, delta)
	if ok && ch.JustLost {
		c.logger.Info("Relationship lost", "character_id", id)
		c.lost = append(c.lost, relationships.LostEvent{ID: id, Name: ch.Name})
	}
}
