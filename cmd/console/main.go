package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/five-acts/internal/config"
	"github.com/jwebster45206/five-acts/internal/logger"
	"github.com/jwebster45206/five-acts/internal/storage"
	"github.com/jwebster45206/five-acts/pkg/cue"
	"github.com/jwebster45206/five-acts/pkg/flow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file next to the saves.
	if err := os.MkdirAll(cfg.SaveDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create save directory: %v\n", err)
		os.Exit(1)
	}
	logFile, err := os.OpenFile(filepath.Join(cfg.SaveDir, "console.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logFile.Close()
	}()
	log := logger.SetupTo(logFile, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = store.Close()
	}()

	cues := &cue.Recorder{}
	ctrl := flow.New(store, flow.Options{
		DecayPerDay: cfg.DecayPerDay,
		Autosave:    cfg.Autosave,
		Cues:        cues,
	}, log)

	g := &game{ctrl: ctrl, cues: cues}
	p := tea.NewProgram(NewConsoleUI(ctx, g), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
