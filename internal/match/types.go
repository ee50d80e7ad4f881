// Package match is the lifecycle controller shared by every game: countdown,
// pause and resume, resize, snapshot persistence and termination. One Session
// drives one match on a clock.Scheduler.
package match

import (
	"errors"

	"github.com/google/uuid"

	"github.com/vovakirdan/duel-arcade/internal/core"
	"github.com/vovakirdan/duel-arcade/internal/registry"
)

// ErrNoClock is returned when a session is built without a scheduler.
var ErrNoClock = errors.New("match: clock required")

// ID uniquely identifies a match session.
type ID string

// NewID returns a fresh random session id.
func NewID() ID {
	return ID(uuid.NewString())
}

// Phase is the lifecycle state of a session.
type Phase int

const (
	PhaseIdle Phase = iota // Built, not started
	PhaseCountdown
	PhasePlaying
	PhasePaused
	PhaseEnded
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseCountdown:
		return "Countdown"
	case PhasePlaying:
		return "Playing"
	case PhasePaused:
		return "Paused"
	case PhaseEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// Navigator is the hook called when a match ends or the player leaves.
type Navigator interface {
	ReturnToLobby()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

func (f NavigatorFunc) ReturnToLobby() { f() }

// View is a consistent copy of the session state for the renderer.
type View struct {
	ID        ID
	Mode      string
	Phase     Phase
	Countdown string // Current countdown label, empty when none is shown
	Input     bool   // Whether input is accepted
	Restored  bool   // The match resumed from a snapshot
	Status    registry.Status
	Result    core.Result // Set once Phase is PhaseEnded
}

// CountdownLabels is the sequence shown before play starts or resumes.
var CountdownLabels = []string{"3", "2", "1", "Go"}
