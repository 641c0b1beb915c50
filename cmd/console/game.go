package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/five-acts/pkg/cue"
	"github.com/jwebster45206/five-acts/pkg/flow"
	"github.com/jwebster45206/five-acts/pkg/session"
	"github.com/jwebster45206/five-acts/pkg/stats"
)

// game runs the flow controller off the UI goroutine. Only one command is in
// flight at a time, so the controller is never touched concurrently.
type game struct {
	ctrl *flow.Controller
	cues *cue.Recorder
}

// status is what the side panel shows, captured alongside each prompt.
type status struct {
	Clock         session.Clock
	Stats         stats.Snapshot
	Relationships []relRow
	CareerTrack   string
}

type relRow struct {
	Name       string
	Connection float64
	Opacity    float64
	Lost       bool
}

type promptMsg struct {
	prompt *flow.Prompt
	status status
	cues   []cue.Event
	err    error
}

func (g *game) start(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		p, err := g.ctrl.ResumeFromSave(ctx)
		return g.msg(p, err)
	}
}

func (g *game) newGame(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		p, err := g.ctrl.NewGame(ctx)
		return g.msg(p, err)
	}
}

// submit answers the pending prompt after delay, which models the sluggish
// input of a burned out player.
func (g *game) submit(ctx context.Context, res flow.Result, delay time.Duration) tea.Cmd {
	return func() tea.Msg {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return promptMsg{err: ctx.Err()}
			}
		}
		p, err := g.ctrl.Resume(ctx, res)
		if err != nil {
			return g.msg(g.ctrl.Pending(), fmt.Errorf("failed to continue: %w", err))
		}
		return g.msg(p, nil)
	}
}

func (g *game) msg(p *flow.Prompt, err error) promptMsg {
	rels := g.ctrl.Relationships()
	var rows []relRow
	for _, r := range rels.Sorted() {
		rows = append(rows, relRow{
			Name:       r.Name,
			Connection: r.Connection,
			Opacity:    rels.PortraitOpacity(r.ID),
			Lost:       r.Lost,
		})
	}
	return promptMsg{
		prompt: p,
		status: status{
			Clock:         g.ctrl.Session().Clock(),
			Stats:         g.ctrl.Stats().All(),
			Relationships: rows,
			CareerTrack:   g.ctrl.Session().CareerTrack(),
		},
		cues: g.cues.Drain(),
		err:  err,
	}
}
