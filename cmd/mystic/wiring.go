package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mystictarot/mystic/internal/config"
	"github.com/mystictarot/mystic/internal/deck"
	"github.com/mystictarot/mystic/internal/history"
	"github.com/mystictarot/mystic/internal/oracle"
	"github.com/mystictarot/mystic/internal/reading"
	"github.com/mystictarot/mystic/internal/session"
	"github.com/mystictarot/mystic/internal/spread"
	"github.com/mystictarot/mystic/internal/tui"
)

// runTUI loads configuration, wires the reading pipeline, and runs the
// bubbletea program until the user quits.
func runTUI(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closeLog := newLogger(cfg)
	defer closeLog()

	client := oracle.NewClient(
		&http.Client{Timeout: 2 * time.Minute},
		oracle.Config{
			BaseURL:     cfg.API.BaseURL,
			APIKey:      cfg.API.Key,
			Model:       cfg.API.Model,
			Temperature: cfg.API.Temperature,
			MaxTokens:   cfg.API.MaxTokens,
		},
		logger,
	)

	sess := session.New(deck.NewProvider(), session.SystemRNG(), spread.Default())
	store := history.NewStore(cfg.HistoryFile(), logger)
	ctrl := reading.NewController(sess, store, client, logger)

	model := tui.New(ctrl, store, cfg.TUI.AccentColor, time.Duration(cfg.Shuffle.DelayMS)*time.Millisecond)
	program := tea.NewProgram(model, tea.WithAltScreen())

	if _, runErr := program.Run(); runErr != nil {
		return fmt.Errorf("tui: %w", runErr)
	}
	return nil
}

// newLogger opens a text slog logger on a file next to the history store.
// The TUI owns the terminal, so nothing may log to stdout/stderr while it
// runs; if the file cannot be opened, logging is discarded.
func newLogger(cfg *config.Config) (*slog.Logger, func()) {
	path := filepath.Join(filepath.Dir(cfg.HistoryFile()), "mystic.log")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}
	return slog.New(slog.NewTextHandler(f, nil)), func() { f.Close() }
}
