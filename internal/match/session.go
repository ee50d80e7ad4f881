package match

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/duel-arcade/internal/clock"
	"github.com/vovakirdan/duel-arcade/internal/config"
	"github.com/vovakirdan/duel-arcade/internal/core"
	"github.com/vovakirdan/duel-arcade/internal/registry"
	"github.com/vovakirdan/duel-arcade/internal/storage"
)

const storeTimeout = 2 * time.Second

// Options carries the collaborators of a session. Only Clock and Surfaces
// are required.
type Options struct {
	Clock     clock.Scheduler
	Surfaces  *core.Adapter
	Store     storage.KV       // Snapshot channel; nil disables persistence
	Recorder  storage.Recorder // Result sink; nil drops results
	Navigator Navigator
	Logger    *log.Logger
	Rand      *rand.Rand
	Runtime   core.RuntimeConfig
	Config    config.Config

	// OnCountdown is called on the clock goroutine with each countdown
	// label, then with "" once the label is cleared.
	OnCountdown func(label string)
}

// Session runs one match. Its exported methods may be called from any
// goroutine; the work is posted onto the clock.
type Session struct {
	id    ID
	mode  registry.Mode
	game  registry.Game
	clock clock.Scheduler
	store storage.KV
	rec   storage.Recorder
	nav   Navigator
	log   *log.Logger

	sim, ai     time.Duration
	step        time.Duration
	persistN    int
	onCountdown func(string)

	// Loop-owned state.
	phase     Phase
	input     bool
	label     string
	cdGen     int
	ticks     int
	restored  bool
	finalized bool

	mu   sync.RWMutex
	view View

	done     chan struct{}
	doneOnce sync.Once
}

// New builds the game for mode and wraps it in a session. It fails before
// any timer starts if the clock or a render surface is missing.
func New(mode registry.Mode, opts Options) (*Session, error) {
	if opts.Clock == nil {
		return nil, ErrNoClock
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	id := NewID()
	logger = logger.With("match", string(id), "game", mode.ID)

	game, err := mode.New(registry.Env{
		Clock:    opts.Clock,
		Surfaces: opts.Surfaces,
		Log:      logger,
		Rand:     opts.Rand,
		Runtime:  opts.Runtime,
		Config:   opts.Config,
	})
	if err != nil {
		return nil, fmt.Errorf("match: %w", err)
	}

	cfg := opts.Config
	s := &Session{
		id:          id,
		mode:        mode,
		game:        game,
		clock:       opts.Clock,
		store:       opts.Store,
		rec:         opts.Recorder,
		nav:         opts.Navigator,
		log:         logger,
		sim:         config.Millis(cfg.Pong.Gameplay.TickMs),
		ai:          config.Millis(cfg.Pong.AI.TickMs),
		step:        config.Millis(cfg.Match.CountdownStepMs),
		persistN:    core.Max(1, cfg.Match.PersistEveryTicks),
		onCountdown: opts.OnCountdown,
		done:        make(chan struct{}),
	}
	if s.sim <= 0 {
		s.sim = clock.DefaultSimInterval
	}
	if s.ai <= 0 {
		s.ai = clock.DefaultAIInterval
	}
	if s.step <= 0 {
		s.step = time.Second
	}
	s.publish()
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() ID { return s.id }

// Mode returns the mode being played.
func (s *Session) Mode() registry.Mode { return s.mode }

// Game returns the underlying game. Only the clock goroutine may call its
// methods.
func (s *Session) Game() registry.Game { return s.game }

// View returns the latest published state.
func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Done is closed when the session has ended, exited or closed.
func (s *Session) Done() <-chan struct{} { return s.done }

// Start begins the match: it resumes from a stored snapshot when one is
// valid, and otherwise runs the countdown.
func (s *Session) Start() { s.clock.Post(s.start) }

// Input applies an input event. The pause key toggles pause.
func (s *Session) Input(ev core.Event) { s.clock.Post(func() { s.handle(ev) }) }

// Pause freezes the match.
func (s *Session) Pause() { s.clock.Post(s.pause) }

// Resume counts down and continues a paused match.
func (s *Session) Resume() { s.clock.Post(s.resume) }

// Resize rescales the match. Callers resize the surfaces first.
func (s *Session) Resize(width, height int) {
	s.clock.Post(func() { s.resize(width, height) })
}

// Exit abandons the match: the snapshot is cleared and the navigation hook
// is called.
func (s *Session) Exit() { s.run(s.exit) }

// Close persists the match and releases it without navigating, as on
// process shutdown.
func (s *Session) Close() { s.run(s.close) }

// run posts fn, or runs it directly once the clock has stopped.
func (s *Session) run(fn func()) {
	if !s.clock.Post(fn) {
		fn()
	}
}

func (s *Session) start() {
	if s.phase != PhaseIdle {
		return
	}
	s.game.Start()
	s.restored = s.restore()

	s.clock.Every("sim", s.sim, s.tick)
	s.clock.Every("ai", s.ai, s.aiTick)
	s.log.Info("match started", "restored", s.restored)

	switch {
	case s.game.Over():
		s.end()
	case s.restored:
		s.clock.Pause()
		s.suspend(true)
		s.phase, s.input = PhasePaused, false
		s.publish()
	default:
		s.countdown(true)
	}
}

// restore loads the stored snapshot. An invalid one is removed.
func (s *Session) restore() bool {
	snap, ok := s.game.(registry.Snapshotter)
	if !ok || s.store == nil || s.mode.SnapshotKey == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	blob, found, err := s.store.Get(ctx, s.mode.SnapshotKey)
	if err != nil {
		s.log.Warn("cannot read snapshot", "err", err)
		return false
	}
	if !found {
		return false
	}
	if err := snap.Restore([]byte(blob)); err != nil {
		s.log.Warn("discarding invalid snapshot", "err", err)
		if err := s.store.Remove(ctx, s.mode.SnapshotKey); err != nil {
			s.log.Warn("cannot remove snapshot", "err", err)
		}
		return false
	}
	return true
}

// countdown shows the labels one step apart with input disabled. The match
// plays from "Go"; the label clears one step later.
func (s *Session) countdown(hide bool) {
	s.clock.Pause()
	s.suspend(true)
	s.phase, s.input = PhaseCountdown, false
	s.cdGen++
	gen := s.cdGen
	if c, ok := s.game.(registry.Concealer); ok && hide {
		c.Conceal(true)
	}

	var show func(i int)
	show = func(i int) {
		if gen != s.cdGen || s.phase == PhaseEnded {
			return
		}
		if i == len(CountdownLabels) {
			s.setLabel("")
			s.publish()
			return
		}
		s.setLabel(CountdownLabels[i])
		if i == len(CountdownLabels)-1 {
			s.play()
		}
		s.publish()
		s.clock.After(s.step, func() { show(i + 1) })
	}
	show(0)
}

func (s *Session) setLabel(label string) {
	s.label = label
	if s.onCountdown != nil {
		s.onCountdown(label)
	}
}

func (s *Session) play() {
	if c, ok := s.game.(registry.Concealer); ok {
		c.Conceal(false)
	}
	s.phase, s.input = PhasePlaying, true
	s.clock.Resume()
	s.log.Debug("playing")
	s.suspend(false)
	if s.game.Over() {
		s.end()
	}
}

// suspend holds or releases game work scheduled outside the ticks.
func (s *Session) suspend(on bool) {
	if g, ok := s.game.(registry.Suspender); ok {
		g.Suspend(on)
	}
}

func (s *Session) tick() {
	if s.phase != PhasePlaying {
		return
	}
	s.game.Tick()
	s.ticks++
	if s.game.Over() {
		s.end()
		return
	}
	if s.ticks%s.persistN == 0 {
		s.persist()
	}
	s.publish()
}

func (s *Session) aiTick() {
	if s.phase != PhasePlaying {
		return
	}
	s.game.AITick()
}

func (s *Session) handle(ev core.Event) {
	if ke, ok := ev.(core.KeyEvent); ok && ke.Key == core.KeyPause {
		if ke.Down {
			switch s.phase {
			case PhasePlaying:
				s.pause()
			case PhasePaused:
				s.resume()
			}
		}
		return
	}
	if !s.input || s.phase != PhasePlaying {
		return
	}
	s.game.Handle(ev)
	if s.game.Over() {
		s.end()
		return
	}
	s.publish()
}

func (s *Session) pause() {
	if s.phase != PhasePlaying {
		return
	}
	s.clock.Pause()
	s.suspend(true)
	s.phase, s.input = PhasePaused, false
	s.persist()
	s.log.Debug("paused")
	s.publish()
}

func (s *Session) resume() {
	if s.phase != PhasePaused {
		return
	}
	s.countdown(false)
}

func (s *Session) resize(width, height int) {
	if s.phase == PhaseEnded {
		return
	}
	s.game.Resize(width, height)
	if s.phase == PhasePlaying && s.game.Over() {
		s.end()
		return
	}
	s.publish()
}

// persist writes the snapshot of a resumable game.
func (s *Session) persist() {
	snap, ok := s.game.(registry.Snapshotter)
	if !ok || s.store == nil || s.mode.SnapshotKey == "" || s.phase == PhaseEnded {
		return
	}
	data, err := snap.Snapshot()
	if err != nil {
		s.log.Warn("cannot encode snapshot", "err", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.store.Set(ctx, s.mode.SnapshotKey, string(data)); err != nil {
		s.log.Warn("cannot persist snapshot", "err", err)
	}
}

func (s *Session) clearSnapshot() {
	if s.store == nil || s.mode.SnapshotKey == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.store.Remove(ctx, s.mode.SnapshotKey); err != nil {
		s.log.Warn("cannot remove snapshot", "err", err)
	}
}

func (s *Session) record(res core.Result) {
	if s.rec == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.rec.Record(ctx, storage.RecordFromResult(res)); err != nil {
		s.log.Warn("cannot record result", "err", err)
	}
}

// end finalizes a match that reached its terminal state.
func (s *Session) end() {
	if s.finalized {
		return
	}
	res := s.game.Result()
	s.log.Info("match ended", "outcome", res.Outcome.String(), "score1", res.Score1, "score2", res.Score2, "duration", res.Duration)
	s.teardown()
	s.clearSnapshot()
	s.record(res)
	s.publish()
	s.navigate()
}

func (s *Session) exit() {
	if s.finalized {
		return
	}
	res := s.game.Result()
	s.log.Info("match abandoned", "ticks", s.ticks)
	s.teardown()
	s.clearSnapshot()
	if s.ticks > 0 {
		s.record(res)
	}
	s.publish()
	s.navigate()
}

func (s *Session) close() {
	if s.finalized {
		return
	}
	if s.phase != PhaseIdle {
		s.persist()
	}
	s.teardown()
	s.publish()
	s.doneOnce.Do(func() { close(s.done) })
}

func (s *Session) teardown() {
	s.finalized = true
	s.phase, s.input = PhaseEnded, false
	s.cdGen++
	s.label = ""
	s.clock.Stop()
	s.game.Close()
}

// navigate calls the hook before Done is closed, so a caller woken by Done
// sees the hook's effects.
func (s *Session) navigate() {
	if s.nav != nil {
		s.nav.ReturnToLobby()
	}
	s.doneOnce.Do(func() { close(s.done) })
}

func (s *Session) publish() {
	v := View{
		ID:        s.id,
		Mode:      s.mode.ID,
		Phase:     s.phase,
		Countdown: s.label,
		Input:     s.input,
		Restored:  s.restored,
		Status:    s.game.Status(),
	}
	if s.phase == PhaseEnded {
		v.Result = s.game.Result()
	}
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
}
