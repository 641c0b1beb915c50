// Package flow drives a game through its acts. The Controller pulls steps
// from the narrative engine, resolves the ones it can on its own and hands
// the rest to the presentation layer as a Prompt.
package flow

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jwebster45206/five-acts/internal/logger"
	"github.com/jwebster45206/five-acts/pkg/cue"
	"github.com/jwebster45206/five-acts/pkg/narrative"
	"github.com/jwebster45206/five-acts/pkg/relationships"
	"github.com/jwebster45206/five-acts/pkg/save"
	"github.com/jwebster45206/five-acts/pkg/session"
	"github.com/jwebster45206/five-acts/pkg/stats"
	"github.com/jwebster45206/five-acts/pkg/storage"
)

var (
	ErrStepInFlight   = errors.New("a step is already awaiting a result")
	ErrNoPendingStep  = errors.New("no step is awaiting a result")
	ErrTicketMismatch = errors.New("result ticket does not match the pending step")
	ErrGameComplete   = errors.New("game is complete")
	ErrInvalidChoice  = errors.New("choice is not available in this moment")
)

// State is where the controller is in its step cycle.
type State int

const (
	StateIdle State = iota
	StateAwaiting
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaiting:
		return "awaiting"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Options tunes a Controller. Zero values take defaults.
type Options struct {
	// DecayPerDay is subtracted from every relationship at each day end.
	DecayPerDay float64
	// Autosave writes the save slot after every resumed step and day end.
	Autosave bool
	Cues     cue.Player
	// Rand spins the career roulette when the player does not pick.
	Rand *rand.Rand
}

// Controller owns every manager for one game and is not safe for concurrent
// use; the ticket guard keeps a single step in flight.
type Controller struct {
	store    storage.Storage
	saves    *save.Manager
	stats    *stats.Manager
	rels     *relationships.Manager
	session  *session.Session
	engine   *narrative.Engine
	base     *slog.Logger
	logger   *slog.Logger
	opts     Options
	rng      *rand.Rand
	act      *narrative.Act
	palettes map[int]narrative.Palette

	state   State
	pending *Prompt
	ticket  uint64
	lost    []relationships.LostEvent
}

// New creates a controller reading content and saves through store.
func New(store storage.Storage, opts Options, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if opts.Cues == nil {
		opts.Cues = cue.Nop{}
	}
	if opts.DecayPerDay <= 0 {
		opts.DecayPerDay = relationships.DefaultDecay
	}
	rng := opts.Rand
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>17))
	}
	c := &Controller{
		store:   store,
		saves:   save.NewManager(store, log),
		stats:   stats.NewManager(opts.Cues, log),
		rels:    relationships.NewManager(opts.Cues, log),
		session: session.New(),
		engine:  narrative.NewEngine(log),
		base:    log,
		opts:    opts,
		rng:     rng,
	}
	c.bindSession()
	return c
}

// bindSession tags controller logs with the current session id.
func (c *Controller) bindSession() {
	c.logger = logger.WithSession(c.base, c.session.ID.String())
}

func (c *Controller) Stats() *stats.Manager                 { return c.stats }
func (c *Controller) Relationships() *relationships.Manager { return c.rels }
func (c *Controller) Session() *session.Session             { return c.session }
func (c *Controller) Engine() *narrative.Engine             { return c.engine }
func (c *Controller) State() State                          { return c.state }

// Pending returns the prompt awaiting a result, or nil.
func (c *Controller) Pending() *Prompt { return c.pending }

// NewGame discards all state, including the save slot, and starts act 1.
func (c *Controller) NewGame(ctx context.Context) (*Prompt, error) {
	c.reset(ctx)
	if err := c.saves.Delete(ctx); err != nil {
		c.logger.Warn("Failed to clear previous save", "error", err)
	}
	c.session = session.New()
	c.bindSession()
	c.logger.Info("Starting new game")
	return c.StartAct(ctx, 1)
}

func (c *Controller) reset(ctx context.Context) {
	c.stats.Reset()
	c.rels.Reset()
	c.engine.Reset()
	c.act = nil
	c.state = StateIdle
	c.pending = nil
	c.lost = nil
	c.loadPalettes(ctx)
}

// StartAct enters act n and runs until the first prompt. Acts past the last
// one produce the final ending prompt.
func (c *Controller) StartAct(ctx context.Context, n int) (*Prompt, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if p := c.enterAct(ctx, n); p != nil {
		return c.present(p), nil
	}
	return c.advance(ctx)
}

// ProcessNextStep pulls steps until one needs the player.
func (c *Controller) ProcessNextStep(ctx context.Context) (*Prompt, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.advance(ctx)
}

// HandleActComplete moves to the next act regardless of where the cursor is.
func (c *Controller) HandleActComplete(ctx context.Context) (*Prompt, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if p := c.enterAct(ctx, c.currentAct()+1); p != nil {
		return c.present(p), nil
	}
	return c.advance(ctx)
}

// HandleDayEnd applies one day of relationship decay, advances the clock and
// autosaves. It returns relationships lost to the decay.
func (c *Controller) HandleDayEnd(ctx context.Context) ([]relationships.LostEvent, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.dayEnd(ctx), nil
}

func (c *Controller) dayEnd(ctx context.Context) []relationships.LostEvent {
	lost := c.rels.ApplyDailyDecay(c.opts.DecayPerDay)
	for _, ev := range lost {
		c.logger.Info("Relationship lost", "character_id", ev.ID)
	}
	c.lost = append(c.lost, lost...)

	days := narrative.DefaultDaysPerWeek
	if c.act != nil {
		days = c.act.Config.DaysPerWeek
	}
	if c.session.AdvanceDay(days) {
		c.logger.Debug("New week", "week", c.session.Clock().Week, "act", c.session.Clock().Act)
	}
	c.autosave(ctx)
	return lost
}

// Resume answers the pending prompt and runs until the next one. It returns
// nil with no error once the game completes.
func (c *Controller) Resume(ctx context.Context, res Result) (*Prompt, error) {
	switch {
	case c.state == StateComplete:
		return nil, ErrGameComplete
	case c.state != StateAwaiting || c.pending == nil:
		return nil, ErrNoPendingStep
	case res.Ticket != c.pending.Ticket:
		return nil, ErrTicketMismatch
	}
	if err := c.validate(c.pending, res); err != nil {
		return nil, err
	}

	p := c.pending
	c.pending = nil
	c.state = StateIdle

	next := c.apply(ctx, p, res)
	c.autosave(ctx)

	if c.state == StateComplete {
		return nil, nil
	}
	if next != nil {
		return c.present(next), nil
	}
	return c.advance(ctx)
}

// ResumeFromSave restores the saved game, or starts a new one when there is
// no usable save.
func (c *Controller) ResumeFromSave(ctx context.Context) (*Prompt, error) {
	r := c.saves.Load(ctx)
	if r == nil {
		c.logger.Info("No save found, starting new game")
		return c.NewGame(ctx)
	}

	c.reset(ctx)
	save.Apply(r, c.saveState())
	c.bindSession()
	progress := c.engine.Progress()
	c.logger.Info("Resuming saved game", "act", progress.CurrentAct, "flow_index", progress.FlowIndex)

	if progress.CurrentAct > narrative.FinalAct {
		return c.present(c.finalPrompt()), nil
	}

	act, err := c.store.GetAct(ctx, progress.CurrentAct)
	if err != nil {
		c.logger.Warn("Failed to load saved act, moving on", "act", progress.CurrentAct, "error", err)
		if p := c.enterAct(ctx, progress.CurrentAct+1); p != nil {
			return c.present(p), nil
		}
		return c.advance(ctx)
	}
	c.act = act
	c.engine.LoadAct(act.Number, act.Manifest, act.Moments)
	c.engine.RestoreProgress(progress)

	if id := progress.CurrentMomentID; id != "" {
		if p := c.momentPrompt(narrative.StepMoment, id); p != nil {
			return c.present(p), nil
		}
	}
	return c.advance(ctx)
}

func (c *Controller) ready() error {
	switch c.state {
	case StateAwaiting:
		return ErrStepInFlight
	case StateComplete:
		return ErrGameComplete
	}
	return nil
}

// advance is the dispatch loop. Steps that resolve on their own, and steps
// that are skipped, fall through to the next iteration.
func (c *Controller) advance(ctx context.Context) (*Prompt, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		step := c.engine.NextStep()
		if step == nil {
			c.logger.Info("Act complete", "act", c.currentAct())
			if p := c.enterAct(ctx, c.currentAct()+1); p != nil {
				return c.present(p), nil
			}
			continue
		}
		if p := c.dispatch(ctx, *step); p != nil {
			return c.present(p), nil
		}
	}
}

// enterAct loads act n, skipping acts whose content cannot be loaded. It
// returns the final prompt once n passes the last act.
func (c *Controller) enterAct(ctx context.Context, n int) *Prompt {
	for ; n <= narrative.FinalAct; n++ {
		act, err := c.store.GetAct(ctx, n)
		if err != nil {
			c.logger.Warn("Failed to load act content, skipping act", "act", n, "error", err)
			continue
		}
		c.applyAct(act)
		return nil
	}
	c.act = nil
	c.session.StartAct(n)
	c.engine.LoadAct(n, narrative.Manifest{Act: n}, nil)
	return c.finalPrompt()
}

func (c *Controller) applyAct(act *narrative.Act) {
	c.act = act
	c.session.StartAct(act.Number)
	for _, ch := range act.Config.Cast {
		if c.rels.Add(ch.ID, ch) {
			c.logger.Debug("Character introduced", "act", act.Number, "character_id", ch.ID)
		}
	}
	c.engine.LoadAct(act.Number, act.Manifest, act.Moments)
	c.logger.Info("Act started", "act", act.Number, "name", act.Manifest.Name)
}

func (c *Controller) currentAct() int {
	if c.engine.Loaded() {
		return c.engine.Act()
	}
	return c.session.Clock().Act
}

// present stamps a ticket on p and makes it the pending prompt.
func (c *Controller) present(p *Prompt) *Prompt {
	c.ticket++
	p.Ticket = c.ticket
	p.Act = c.currentAct()
	p.Clock = c.session.Clock()
	p.Burnout = c.stats.BurnoutEffects()
	p.Lost = c.lost
	c.lost = nil
	c.pending = p
	c.state = StateAwaiting
	return p
}

func (c *Controller) saveState() save.State {
	return save.State{
		Stats:         c.stats,
		Relationships: c.rels,
		Session:       c.session,
		Engine:        c.engine,
	}
}

func (c *Controller) autosave(ctx context.Context) {
	if !c.opts.Autosave {
		return
	}
	c.saves.Save(ctx, c.saveState())
}

func (c *Controller) loadPalettes(ctx context.Context) {
	if c.palettes != nil {
		return
	}
	p, err := c.store.GetPalettes(ctx)
	if err != nil {
		c.logger.Warn("Failed to load palettes", "error", err)
		p = map[int]narrative.Palette{}
	}
	c.palettes = p
}

func (c *Controller) palette(act int) *narrative.Palette {
	p, ok := c.palettes[act]
	if !ok {
		return nil
	}
	return &p
}
