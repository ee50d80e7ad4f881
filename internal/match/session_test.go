package match

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/duel-arcade/internal/clock"
	"github.com/vovakirdan/duel-arcade/internal/config"
	"github.com/vovakirdan/duel-arcade/internal/core"
	"github.com/vovakirdan/duel-arcade/internal/registry"
	"github.com/vovakirdan/duel-arcade/internal/storage"
)

const (
	step = time.Second
	sim  = 30 * time.Millisecond
	key  = "gameState"
)

var errBadSnapshot = errors.New("fake: bad snapshot")

// fakeGame counts calls and ends when endAt ticks have run.
type fakeGame struct {
	ticks    int
	aiTicks  int
	events   []core.Event
	endAt    int
	hidden   []bool
	w, h     int
	closed   int
	restored int
}

func (g *fakeGame) ID() string     { return "fake" }
func (g *fakeGame) Start()         {}
func (g *fakeGame) Tick()          { g.ticks++ }
func (g *fakeGame) AITick()        { g.aiTicks++ }
func (g *fakeGame) Handle(ev core.Event) {
	g.events = append(g.events, ev)
	if ev == (core.ColumnClick{Column: 9}) {
		g.endAt = g.ticks
	}
}
func (g *fakeGame) Resize(w, h int) { g.w, g.h = w, h }
func (g *fakeGame) Over() bool      { return g.endAt > 0 && g.ticks >= g.endAt }
func (g *fakeGame) Close()          { g.closed++ }
func (g *fakeGame) Conceal(h bool)  { g.hidden = append(g.hidden, h) }

func (g *fakeGame) Result() core.Result {
	out := core.OutcomeAbandoned
	if g.Over() {
		out = core.OutcomeWin
	}
	return core.Result{GameID: "fake", Outcome: out, Score1: g.ticks, Duration: time.Duration(g.ticks) * sim}
}

func (g *fakeGame) Status() registry.Status { return registry.Status{Score1: g.ticks} }

func (g *fakeGame) Snapshot() ([]byte, error) {
	return []byte(strconv.Itoa(g.ticks)), nil
}

func (g *fakeGame) Restore(data []byte) error {
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("%w: %v", errBadSnapshot, err)
	}
	g.ticks, g.restored = n, g.restored+1
	return nil
}

type fixture struct {
	s      *Session
	game   *fakeGame
	clk    *clock.Manual
	store  *storage.Memory
	labels []string
	navs   int
}

func newFixture(t *testing.T, endAt int) *fixture {
	t.Helper()
	return newFixtureWith(t, &fakeGame{endAt: endAt}, storage.NewMemory())
}

func newFixtureWith(t *testing.T, game *fakeGame, store *storage.Memory) *fixture {
	t.Helper()
	f := &fixture{game: game, clk: clock.NewManual(), store: store}
	mode := registry.Mode{
		ID:          "fake",
		SnapshotKey: key,
		Layout:      func(int, int) map[string]core.Rect { return nil },
		New:         func(registry.Env) (registry.Game, error) { return game, nil },
	}
	cfg := config.Default()
	cfg.Pong.Gameplay.TickMs = int(sim / time.Millisecond)
	cfg.Pong.AI.TickMs = 1000
	cfg.Match.CountdownStepMs = int(step / time.Millisecond)
	cfg.Match.PersistEveryTicks = 1

	s, err := New(mode, Options{
		Clock:       f.clk,
		Store:       store,
		Recorder:    store,
		Navigator:   NavigatorFunc(func() { f.navs++ }),
		Config:      cfg,
		Runtime:     core.DefaultConfig(),
		OnCountdown: func(l string) { f.labels = append(f.labels, l) },
	})
	require.NoError(t, err)
	f.s = s
	return f
}

// startPlaying runs the whole countdown.
func (f *fixture) startPlaying(t *testing.T) {
	t.Helper()
	f.s.Start()
	f.clk.Advance(3 * step)
	require.Equal(t, PhasePlaying, f.s.View().Phase)
}

func (f *fixture) stored(t *testing.T) (string, bool) {
	t.Helper()
	v, ok, err := f.store.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func TestNewRequiresClock(t *testing.T) {
	_, err := New(registry.Mode{ID: "fake"}, Options{})
	assert.ErrorIs(t, err, ErrNoClock)
}

func TestNewWrapsGameError(t *testing.T) {
	mode := registry.Mode{
		ID: "fake",
		New: func(registry.Env) (registry.Game, error) {
			return nil, core.ErrMissingSurface
		},
	}
	_, err := New(mode, Options{Clock: clock.NewManual()})
	assert.ErrorIs(t, err, core.ErrMissingSurface)
}

func TestCountdownSequence(t *testing.T) {
	f := newFixture(t, 0)
	assert.Equal(t, PhaseIdle, f.s.View().Phase)

	f.s.Start()
	f.clk.Flush()
	v := f.s.View()
	assert.Equal(t, PhaseCountdown, v.Phase)
	assert.Equal(t, "3", v.Countdown)
	assert.False(t, v.Input)
	assert.Equal(t, []bool{true}, f.game.hidden, "ball hidden during the first countdown")

	f.s.Input(core.KeyEvent{Key: core.KeyW, Down: true})
	f.clk.Advance(2 * step)
	assert.Empty(t, f.game.events, "input is disabled during the countdown")
	assert.Zero(t, f.game.ticks, "no ticks during the countdown")
	assert.Equal(t, "1", f.s.View().Countdown)

	f.clk.Advance(step)
	v = f.s.View()
	assert.Equal(t, PhasePlaying, v.Phase)
	assert.Equal(t, "Go", v.Countdown)
	assert.True(t, v.Input)
	assert.Equal(t, []bool{true, false}, f.game.hidden)

	f.clk.Advance(step)
	assert.Empty(t, f.s.View().Countdown)
	assert.Equal(t, []string{"3", "2", "1", "Go", ""}, f.labels)
	assert.InDelta(t, int(step/sim), f.game.ticks, 1)
}

func TestInputReachesGame(t *testing.T) {
	f := newFixture(t, 0)
	f.startPlaying(t)

	f.s.Input(core.KeyEvent{Key: core.KeyS, Down: true})
	f.s.Input(core.ColumnClick{Column: 2})
	f.clk.Flush()
	assert.Equal(t, []core.Event{core.KeyEvent{Key: core.KeyS, Down: true}, core.ColumnClick{Column: 2}}, f.game.events)
}

func TestPauseFreezesAndResumeCountsDown(t *testing.T) {
	f := newFixture(t, 0)
	f.startPlaying(t)
	f.clk.Advance(300 * time.Millisecond)
	ticks := f.game.ticks
	require.Positive(t, ticks)

	f.s.Input(core.KeyEvent{Key: core.KeyPause, Down: true})
	f.clk.Advance(5 * time.Second)
	v := f.s.View()
	assert.Equal(t, PhasePaused, v.Phase)
	assert.False(t, v.Input)
	assert.Equal(t, ticks, f.game.ticks, "ticks freeze while paused")
	aiTicks := f.game.aiTicks

	stored, ok := f.stored(t)
	require.True(t, ok, "pausing persists the snapshot")
	assert.Equal(t, strconv.Itoa(ticks), stored)

	f.s.Input(core.ColumnClick{Column: 1})
	f.clk.Flush()
	assert.Empty(t, f.game.events)

	f.labels = nil
	f.s.Resume()
	f.clk.Advance(2 * step)
	assert.Equal(t, PhaseCountdown, f.s.View().Phase)
	assert.Equal(t, ticks, f.game.ticks)
	assert.Equal(t, aiTicks, f.game.aiTicks, "the AI clock freezes too")
	f.clk.Advance(step)
	assert.Equal(t, PhasePlaying, f.s.View().Phase)
	assert.Equal(t, []string{"3", "2", "1", "Go"}, f.labels)
	assert.Equal(t, []bool{true, false, false}, f.game.hidden, "resume does not hide the ball again")
}

func TestPauseKeyToggles(t *testing.T) {
	f := newFixture(t, 0)
	f.startPlaying(t)

	f.s.Input(core.KeyEvent{Key: core.KeyPause, Down: true})
	f.s.Input(core.KeyEvent{Key: core.KeyPause, Down: false})
	f.clk.Flush()
	assert.Equal(t, PhasePaused, f.s.View().Phase)

	f.s.Input(core.KeyEvent{Key: core.KeyPause, Down: true})
	f.clk.Flush()
	assert.Equal(t, PhaseCountdown, f.s.View().Phase)
}

func TestPersistsEveryTick(t *testing.T) {
	f := newFixture(t, 0)
	f.startPlaying(t)
	f.clk.Advance(10 * sim)

	stored, ok := f.stored(t)
	require.True(t, ok)
	assert.Equal(t, strconv.Itoa(f.game.ticks), stored)
}

func TestValidSnapshotSkipsCountdown(t *testing.T) {
	store := storage.NewMemory()
	require.NoError(t, store.Set(context.Background(), key, "17"))
	f := newFixtureWith(t, &fakeGame{}, store)

	f.s.Start()
	f.clk.Flush()
	v := f.s.View()
	assert.Equal(t, PhasePaused, v.Phase)
	assert.True(t, v.Restored)
	assert.Empty(t, f.labels, "no countdown after a restore")
	assert.Equal(t, 17, f.game.ticks)
	assert.Equal(t, 1, f.game.restored)

	f.clk.Advance(time.Second)
	assert.Equal(t, 17, f.game.ticks, "a restored match waits for resume")
}

func TestInvalidSnapshotIsDiscarded(t *testing.T) {
	store := storage.NewMemory()
	require.NoError(t, store.Set(context.Background(), key, "{not a number"))
	f := newFixtureWith(t, &fakeGame{}, store)

	f.s.Start()
	f.clk.Flush()
	assert.Equal(t, PhaseCountdown, f.s.View().Phase)
	assert.False(t, f.s.View().Restored)
	_, ok := f.stored(t)
	assert.False(t, ok, "the invalid snapshot is removed")
}

func TestEndRecordsAndNavigates(t *testing.T) {
	f := newFixture(t, 5)
	f.startPlaying(t)
	f.clk.Advance(time.Second)

	v := f.s.View()
	assert.Equal(t, PhaseEnded, v.Phase)
	assert.Equal(t, core.OutcomeWin, v.Result.Outcome)
	assert.Equal(t, 5, f.game.ticks, "no ticks after the end")
	assert.True(t, f.clk.Stopped())
	assert.Equal(t, 1, f.navs)
	assert.Equal(t, 1, f.game.closed)

	_, ok := f.stored(t)
	assert.False(t, ok, "the snapshot is removed at the end")
	results, err := f.store.Results(context.Background(), "fake", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "win", results[0].Outcome)
	assert.Equal(t, 5, results[0].Score1)

	select {
	case <-f.s.Done():
	default:
		t.Fatal("Done is not closed")
	}
}

func TestInputCanEndMatch(t *testing.T) {
	f := newFixture(t, 0)
	f.startPlaying(t)
	f.clk.Advance(sim)

	f.s.Input(core.ColumnClick{Column: 9})
	f.clk.Flush()
	assert.Equal(t, PhaseEnded, f.s.View().Phase)
	assert.Equal(t, 1, f.navs)
}

func TestExitClearsSnapshot(t *testing.T) {
	f := newFixture(t, 0)
	f.startPlaying(t)
	f.clk.Advance(5 * sim)
	_, ok := f.stored(t)
	require.True(t, ok)

	f.s.Exit()
	f.clk.Flush()
	assert.Equal(t, PhaseEnded, f.s.View().Phase)
	assert.Equal(t, 1, f.navs)
	_, ok = f.stored(t)
	assert.False(t, ok)

	results, err := f.store.Results(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "abandoned", results[0].Outcome)

	f.s.Exit()
	f.s.Close()
	assert.Equal(t, 1, f.navs, "teardown happens once")
	assert.Equal(t, 1, f.game.closed)
}

func TestExitBeforePlayRecordsNothing(t *testing.T) {
	f := newFixture(t, 0)
	f.s.Start()
	f.clk.Flush()
	f.s.Exit()
	f.clk.Flush()

	results, err := f.store.Results(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 1, f.navs)
}

func TestCloseKeepsSnapshot(t *testing.T) {
	f := newFixture(t, 0)
	f.startPlaying(t)
	f.clk.Advance(4 * sim)
	ticks := f.game.ticks

	f.s.Close()
	f.clk.Flush()
	stored, ok := f.stored(t)
	require.True(t, ok)
	assert.Equal(t, strconv.Itoa(ticks), stored)
	assert.Zero(t, f.navs, "closing does not navigate")
	assert.True(t, f.clk.Stopped())
}

func TestResizeIsForwarded(t *testing.T) {
	f := newFixture(t, 0)
	f.startPlaying(t)
	f.s.Resize(120, 40)
	f.clk.Flush()
	assert.Equal(t, 120, f.game.w)
	assert.Equal(t, 40, f.game.h)
}

func TestPhaseStrings(t *testing.T) {
	for p := PhaseIdle; p <= PhaseEnded; p++ {
		assert.NotEqual(t, "Unknown", p.String())
	}
	assert.Equal(t, "Unknown", Phase(99).String())
}
