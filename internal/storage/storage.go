// Package storage provides the persistence channel used by matches to park
// their snapshot, and the match results table behind the scoreboard. Three
// backends implement it: in-memory, SQLite and PostgreSQL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/duel-arcade/internal/config"
	"github.com/vovakirdan/duel-arcade/internal/core"
)

// ErrUnknownDriver is returned by Open for an unsupported storage driver.
var ErrUnknownDriver = errors.New("storage: unknown driver")

// KV is the persistence channel: one string value per key.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Recorder stores finished match results.
type Recorder interface {
	Record(ctx context.Context, rec MatchRecord) error
}

// Backend is a full storage implementation.
type Backend interface {
	KV
	Recorder

	// Results lists the most recent results, newest first. An empty gameID
	// lists every game.
	Results(ctx context.Context, gameID string, limit int) ([]MatchRecord, error)

	// Stats aggregates results per game id.
	Stats(ctx context.Context) (map[string]*GameStats, error)

	// Clear deletes the results of one game, or all results when gameID is
	// empty.
	Clear(ctx context.Context, gameID string) error

	Close() error
}

// MatchRecord is one finished match, seen from player 1.
type MatchRecord struct {
	ID        string
	GameID    string
	Outcome   string
	Score1    int
	Score2    int
	Duration  time.Duration
	CreatedAt time.Time
}

// RecordFromResult builds a record for a match result.
func RecordFromResult(res core.Result) MatchRecord {
	return MatchRecord{
		GameID:   res.GameID,
		Outcome:  res.Outcome.String(),
		Score1:   res.Score1,
		Score2:   res.Score2,
		Duration: res.Duration,
	}
}

// GameStats contains aggregated results for a game.
type GameStats struct {
	GameID     string
	Played     int
	Wins       int
	Losses     int
	Draws      int
	Abandoned  int
	BestScore  int
	LastPlayed time.Time
}

func (s *GameStats) add(rec MatchRecord) {
	s.Played++
	switch rec.Outcome {
	case core.OutcomeWin.String():
		s.Wins++
	case core.OutcomeLoss.String():
		s.Losses++
	case core.OutcomeDraw.String():
		s.Draws++
	case core.OutcomeAbandoned.String():
		s.Abandoned++
	}
	s.BestScore = max(s.BestScore, rec.Score1)
	if rec.CreatedAt.After(s.LastPlayed) {
		s.LastPlayed = rec.CreatedAt
	}
}

// stamp fills the id and creation time of a new record.
func stamp(rec MatchRecord) MatchRecord {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return rec
}

// Open connects the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(cfg.DatabasePath())
	case "postgres":
		return OpenPostgres(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// ExpandPath resolves a leading ~ to the home directory.
func ExpandPath(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("storage: cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
