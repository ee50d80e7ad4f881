// Package registry provides a global registry for game modes.
// Games register their modes in init() functions, allowing the platform
// to discover and instantiate matches without hardcoded dependencies.
package registry

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/duel-arcade/internal/clock"
	"github.com/vovakirdan/duel-arcade/internal/config"
	"github.com/vovakirdan/duel-arcade/internal/core"
)

// Game is the interface every match simulation implements.
// Games contain pure logic with no Bubble Tea dependency. All methods are
// called from the match clock goroutine, so implementations need no locking.
type Game interface {
	// ID returns the mode identifier (e.g. "pong-classic").
	ID() string

	// Start places every entity for a fresh match.
	Start()

	// Tick advances the simulation by one fast clock tick.
	Tick()

	// AITick runs the slower opponent refresh.
	AITick()

	// Handle applies one input event. Events arriving while the match is
	// over are ignored.
	Handle(ev core.Event)

	// Resize rescales the match to a new field size.
	Resize(width, height int)

	// Over reports whether the match has reached a terminal state.
	Over() bool

	// Result summarizes the match from player 1's point of view.
	Result() core.Result

	// Status returns the HUD state shown next to the field.
	Status() Status

	// Close releases background resources (search workers).
	Close()
}

// Snapshotter is implemented by games that can resume after a restart.
type Snapshotter interface {
	Snapshot() ([]byte, error)
	Restore(data []byte) error
}

// Concealer is implemented by games with entities hidden during countdown.
type Concealer interface {
	Conceal(hidden bool)
}

// Suspender is implemented by games with work scheduled outside the
// periodic ticks. Suspend(true) holds that work while the match is paused or
// counting down; Suspend(false) releases it.
type Suspender interface {
	Suspend(suspended bool)
}

// Status is the HUD state of a match.
type Status struct {
	Score1 int
	Score2 int
	Turn   int      // Player to move (turn-based games), 0 otherwise
	Lines  []string // Extra lines such as held tokens or active effects
}

// Env carries the collaborators a game is built with.
type Env struct {
	Clock    clock.Scheduler
	Surfaces *core.Adapter
	Log      *log.Logger
	Rand     *rand.Rand
	Runtime  core.RuntimeConfig
	Config   config.Config
}

// Mode describes a playable game variant.
type Mode struct {
	ID          string
	Title       string
	Description string
	Family      string // Shared game id for score grouping ("pong", "connectfour")

	// SnapshotKey is the persistence key of resumable modes, empty otherwise.
	SnapshotKey string

	// Layout returns the surface geometry for a field of the given size.
	Layout func(width, height int) map[string]core.Rect

	// New builds a match. It fails if a required surface is missing.
	New func(env Env) (Game, error)
}

// Info contains metadata about a registered mode.
type Info struct {
	ID          string
	Title       string
	Description string
	Family      string
}

// ErrUnknownMode is returned by Get for an unregistered mode id.
var ErrUnknownMode = errors.New("registry: unknown mode")

var (
	modes = make(map[string]Mode)
	mu    sync.RWMutex
)

// Register adds a mode to the registry.
// Typically called from a game's init() function.
// Panics if a mode with the same ID is already registered.
func Register(m Mode) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := modes[m.ID]; exists {
		panic(fmt.Sprintf("registry: mode %q already registered", m.ID))
	}
	if m.New == nil || m.Layout == nil {
		panic(fmt.Sprintf("registry: mode %q needs New and Layout", m.ID))
	}

	modes[m.ID] = m
}

// List returns information about all registered modes, sorted by ID.
func List() []Info {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Info, 0, len(modes))
	for _, m := range modes {
		result = append(result, Info{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			Family:      m.Family,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Get returns a mode by its ID.
// Returns an error if the mode ID is not registered.
func Get(id string) (Mode, error) {
	mu.RLock()
	defer mu.RUnlock()

	m, ok := modes[id]
	if !ok {
		return Mode{}, fmt.Errorf("%w %q", ErrUnknownMode, id)
	}

	return m, nil
}

// Exists checks if a mode with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := modes[id]
	return ok
}
