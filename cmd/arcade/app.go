package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/duel-arcade/internal/config"
	"github.com/vovakirdan/duel-arcade/internal/core"
	"github.com/vovakirdan/duel-arcade/internal/platform/tui"
	"github.com/vovakirdan/duel-arcade/internal/storage"
)

const openTimeout = 15 * time.Second

// newLogger builds the application logger. Interactive commands log to the
// configured file so the screen stays clean; serve logs to stderr.
func newLogger(cfg config.LogConfig, interactive bool) (*log.Logger, io.Closer, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}

	if !interactive {
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "arcade",
			Level:           level,
		})
		return logger, io.NopCloser(nil), nil
	}

	path := cfg.FilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Formatter:       log.LogfmtFormatter,
	})
	return logger, f, nil
}

// openStore opens the configured backend. A failure falls back to memory so
// the arcade still plays.
func openStore(cfg config.StorageConfig, logger *log.Logger) storage.Backend {
	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Warn("storage unavailable, results will not be kept", "driver", cfg.Driver, "err", err)
		fmt.Fprintf(os.Stderr, "Warning: could not open storage: %v\n", err)
		return storage.NewMemory()
	}
	return store
}

// terminalSize returns the size of the controlling terminal, or 80x24.
func terminalSize() (int, int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return w, h
	}
	return 80, 24
}

// runtimeConfig builds the match runtime settings for the local terminal.
func runtimeConfig(ai bool) core.RuntimeConfig {
	rc := core.DefaultConfig()
	rc.Width, rc.Height = terminalSize()
	rc.Seed = flagSeed
	rc.AI = ai
	return rc
}

// environment is what every interactive command needs.
type environment struct {
	cfg    config.Config
	deps   tui.Deps
	closer io.Closer
}

func (e environment) Close() {
	if e.deps.Store != nil {
		if err := e.deps.Store.Close(); err != nil {
			e.deps.Logger.Warn("cannot close storage", "err", err)
		}
	}
	_ = e.closer.Close()
}

// setup loads the configuration, the logger and the storage backend.
func setup(interactive bool) (environment, error) {
	cfg, err := loadConfig()
	if err != nil {
		return environment{}, err
	}
	logger, closer, err := newLogger(cfg.Log, interactive)
	if err != nil {
		return environment{}, err
	}
	store := openStore(cfg.Storage, logger)
	return environment{
		cfg:    cfg,
		deps:   tui.Deps{Store: store, Config: cfg, Logger: logger},
		closer: closer,
	}, nil
}
