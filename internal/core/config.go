package core

import (
	"math/rand"
	"time"
)

// RuntimeConfig contains configuration passed to matches at initialization.
type RuntimeConfig struct {
	Width  int   // Play-field width in cells
	Height int   // Play-field height in cells
	Seed   int64 // RNG seed; 0 means seed from the clock
	AI     bool  // Player 2 is computer controlled
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		Width:  80,
		Height: 24,
		AI:     true,
	}
}

// Rand returns a generator for the configured seed.
func (c RuntimeConfig) Rand() *rand.Rand {
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Outcome is the final result of a match from player 1's point of view.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWin
	OutcomeLoss
	OutcomeDraw
	OutcomeAbandoned
)

// String returns the stored form of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLoss:
		return "loss"
	case OutcomeDraw:
		return "draw"
	case OutcomeAbandoned:
		return "abandoned"
	default:
		return "none"
	}
}

// Result summarizes a finished match.
type Result struct {
	GameID   string
	Outcome  Outcome
	Score1   int
	Score2   int
	Duration time.Duration
}
