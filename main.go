package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"timewallet/internal/api"
	"timewallet/internal/config"
	"timewallet/internal/session"
	"timewallet/internal/stores"
	"timewallet/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	sess, err := session.New(cfg.SessionPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening session store: %v\n", err)
		os.Exit(1)
	}
	defer sess.Close()

	client := api.NewClient(cfg.BaseURL, sess, logger)
	set := stores.NewSet(client, sess, logger)

	ctx := context.Background()
	app := tui.NewApp(ctx, set, logger)
	p := tea.NewProgram(app, tea.WithAltScreen())

	// A 401 can arrive from any in-flight request; the client has already
	// cleared the session by the time this fires.
	client.SetUnauthorizedHook(func() {
		p.Send(tui.UnauthorizedMsg())
	})

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// openLogger writes structured logs to a file; the terminal belongs to
// the TUI.
func openLogger(cfg config.Config) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.LogLevel}))
	return logger, func() { f.Close() }, nil
}
