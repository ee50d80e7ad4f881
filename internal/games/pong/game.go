// Package pong implements the paddle game: fixed-tick ball physics with
// angle-based rebounds, a predictive CPU opponent and the chaos variant's
// timed power-ups. Player 1 controls the left paddle.
package pong

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/duel-arcade/internal/config"
	"github.com/vovakirdan/duel-arcade/internal/core"
	"github.com/vovakirdan/duel-arcade/internal/registry"
)

// Surface names bound through the geometry adapter.
const (
	SurfacePaddle1 = "paddle1"
	SurfacePaddle2 = "paddle2"
	SurfaceBall    = "ball"
	SurfacePowerUp = "powerup"
)

// Visual characters for rendering
const (
	PaddleChar = '█'
	BallChar   = '●'
	NetChar    = '│'
)

// Default layout settings in cells
const (
	DefaultPaddleWidth  = 1
	DefaultPaddleOffset = 2 // Distance from edge
	DefaultBallWidth    = 2 // Terminal cells are about twice as tall as wide
	DefaultBallHeight   = 1
)

// Variant selects the rule set.
type Variant int

const (
	Classic Variant = iota
	Chaos
)

func init() {
	registry.Register(registry.Mode{
		ID:          "pong-classic",
		Title:       "Pong",
		Description: "First to 10. W/S move, ↑/↓ for player 2 without AI",
		Family:      "pong",
		SnapshotKey: SnapshotKey,
		Layout:      Layout,
		New:         Factory(Classic),
	})
	registry.Register(registry.Mode{
		ID:          "pong-chaos",
		Title:       "Chaos Pong",
		Description: "Pong with power-ups: size, fast ball, fast paddle, reverse",
		Family:      "pong",
		SnapshotKey: SnapshotKey,
		Layout:      Layout,
		New:         Factory(Chaos),
	})
}

// Layout returns the surface geometry for a field of width x height cells.
// Paddles are a fifth of the field height.
func Layout(width, height int) map[string]core.Rect {
	w, h := float64(width), float64(height)
	ph := math.Max(3, math.Round(h/5))
	top := h/2 - ph/2
	return map[string]core.Rect{
		SurfacePaddle1: core.NewRect(DefaultPaddleOffset, top, DefaultPaddleWidth, ph),
		SurfacePaddle2: core.NewRect(w-DefaultPaddleOffset-DefaultPaddleWidth, top, DefaultPaddleWidth, ph),
		SurfaceBall:    core.NewRect(w/2-DefaultBallWidth/2, h/2, DefaultBallWidth, DefaultBallHeight),
		SurfacePowerUp: core.NewRect(0, 0, 2, 1),
	}
}

// Factory returns the registry constructor for a variant.
func Factory(v Variant) func(env registry.Env) (registry.Game, error) {
	return func(env registry.Env) (registry.Game, error) {
		return New(v, env)
	}
}

// Match is a paddle match driven by the match clock.
type Match struct {
	variant Variant
	cfg     config.PongConfig
	surf    *core.Adapter
	log     *log.Logger
	rng     *rand.Rand

	field  *Field
	ai     *AIState
	power  *PowerUps
	tick   int
	hidden bool
	tickMs int
}

// New builds a match. It fails if any surface is missing from env.
func New(v Variant, env registry.Env) (*Match, error) {
	required := []string{SurfacePaddle1, SurfacePaddle2, SurfaceBall}
	if v == Chaos {
		required = append(required, SurfacePowerUp)
	}
	if env.Surfaces == nil {
		return nil, fmt.Errorf("pong: %w", core.ErrMissingSurface)
	}
	if err := env.Surfaces.Require(required...); err != nil {
		return nil, fmt.Errorf("pong: %w", err)
	}

	rng := env.Rand
	if rng == nil {
		rng = env.Runtime.Rand()
	}
	logger := env.Log
	if logger == nil {
		logger = log.New(io.Discard)
	}

	cfg := env.Config.Pong
	m := &Match{
		variant: v,
		cfg:     cfg,
		surf:    env.Surfaces,
		log:     logger,
		rng:     rng,
		tickMs:  core.Max(1, cfg.Gameplay.TickMs),
	}
	m.field = NewField(float64(env.Runtime.Width), float64(env.Runtime.Height), cfg, rng)
	if env.Runtime.AI {
		m.enableAI()
	}
	if v == Chaos {
		m.power = NewPowerUps(cfg.PowerUps, cfg.Paddles, m.tickMs)
	}
	m.readGeometry(env.Runtime.Width)
	return m, nil
}

func (m *Match) enableAI() {
	m.ai = &AIState{ErrorChance: m.cfg.AI.ErrorChance}
	m.field.AI = m.ai
}

// ID returns the mode identifier.
func (m *Match) ID() string {
	if m.variant == Chaos {
		return "pong-chaos"
	}
	return "pong-classic"
}

// Field exposes the simulation state.
func (m *Match) Field() *Field { return m.field }

// AI returns the opponent state, nil when player 2 is human.
func (m *Match) AI() *AIState { return m.ai }

// PowerUps returns the chaos state, nil for the classic variant.
func (m *Match) PowerUps() *PowerUps { return m.power }

// Ticks returns the number of simulation ticks run.
func (m *Match) Ticks() int { return m.tick }

// readGeometry takes entity sizes from the surfaces and paddle columns from
// the layout, which is the only part of the geometry the engine never moves.
func (m *Match) readGeometry(width int) {
	f := m.field
	lay := Layout(width, int(f.Height))
	for name, p := range map[string]*Player{SurfacePaddle1: &f.P1, SurfacePaddle2: &f.P2} {
		r, _ := m.surf.Read(name)
		p.Paddle.Width, p.Paddle.Height = r.Width, r.Height
		p.Paddle.Left = lay[name].Left
	}
	if r, ok := m.surf.Read(SurfaceBall); ok {
		f.Ball.Rect.Width, f.Ball.Rect.Height = r.Width, r.Height
	}
	if m.power != nil {
		if r, ok := m.surf.Read(SurfacePowerUp); ok {
			m.power.SetPickupSize(r.Width, r.Height)
		}
	}
}

// Start centers the paddles and serves.
func (m *Match) Start() {
	f := m.field
	f.P1.Paddle.Top = f.Height/2 - f.P1.Paddle.Height/2
	f.P2.Paddle.Top = f.Height/2 - f.P2.Paddle.Height/2
	f.Reset()
	m.Sync()
}

// Tick advances the simulation by one tick.
func (m *Match) Tick() {
	if m.field.Over() {
		return
	}
	m.tick++

	if m.power != nil {
		if kind, ok := m.power.Update(m.field, m.tick, m.rng); ok {
			m.log.Debug("power-up collected", "kind", kind.String())
		}
	}
	if side := m.field.Step(); side != SideNone {
		m.log.Debug("goal", "side", int(side), "score1", m.field.P1.Score, "score2", m.field.P2.Score)
	}
	m.Sync()
}

// AITick refreshes the opponent's prediction.
func (m *Match) AITick() {
	if m.ai == nil || m.field.Over() {
		return
	}
	m.ai.Refresh(m.field, m.rng)
}

// Handle applies key transitions. W/S drive player 1; the arrow keys drive
// player 2 only while it is not AI controlled.
func (m *Match) Handle(ev core.Event) {
	ke, ok := ev.(core.KeyEvent)
	if !ok || m.field.Over() {
		return
	}

	var p *Player
	var dir core.Direction
	switch ke.Key {
	case core.KeyW:
		p, dir = &m.field.P1, core.DirUp
	case core.KeyS:
		p, dir = &m.field.P1, core.DirDown
	case core.KeyArrowUp:
		p, dir = &m.field.P2, core.DirUp
	case core.KeyArrowDown:
		p, dir = &m.field.P2, core.DirDown
	default:
		return
	}
	if p == &m.field.P2 && m.ai != nil {
		return
	}

	if ke.Down {
		p.Press(dir)
	} else {
		p.Release()
	}
}

// Resize rescales the match to width x height. Surfaces are expected to
// carry the new entity sizes already.
func (m *Match) Resize(width, height int) {
	if side := m.field.Rescale(float64(width), float64(height)); side != SideNone {
		m.log.Debug("goal on resize", "side", int(side))
	}
	m.readGeometry(width)
	m.field.ClampPaddles()
	m.Sync()
}

// Over reports whether a player reached the winning score.
func (m *Match) Over() bool {
	return m.field.Over()
}

// Result reports the outcome from player 1's point of view.
func (m *Match) Result() core.Result {
	f := m.field
	outcome := core.OutcomeAbandoned
	switch {
	case f.P1.Score >= f.WinScore():
		outcome = core.OutcomeWin
	case f.P2.Score >= f.WinScore():
		outcome = core.OutcomeLoss
	}
	return core.Result{
		GameID:   m.ID(),
		Outcome:  outcome,
		Score1:   f.P1.Score,
		Score2:   f.P2.Score,
		Duration: time.Duration(m.tick*m.tickMs) * time.Millisecond,
	}
}

// Status returns scores and active power-up effects.
func (m *Match) Status() registry.Status {
	st := registry.Status{Score1: m.field.P1.Score, Score2: m.field.P2.Score}
	if m.power != nil {
		for _, e := range m.power.Effects {
			secs := float64(e.TicksRemaining(m.tick)*m.tickMs) / 1000
			st.Lines = append(st.Lines, fmt.Sprintf("%c %s P%d %.0fs", e.Kind.Glyph(), e.Kind, e.Target, math.Ceil(secs)))
		}
	}
	return st
}

// Conceal hides the ball during countdowns.
func (m *Match) Conceal(hidden bool) {
	m.hidden = hidden
	m.Sync()
}

// Close is a no-op; the paddle match has no background resources.
func (m *Match) Close() {}

// Sync writes entity positions and styles to the surfaces.
func (m *Match) Sync() {
	f := m.field
	m.surf.Place(SurfacePaddle1, f.P1.Paddle.Left, f.P1.Paddle.Top)
	m.surf.Place(SurfacePaddle2, f.P2.Paddle.Left, f.P2.Paddle.Top)
	m.surf.Style(SurfacePaddle1, m.paddleClasses(SideP1)...)
	m.surf.Style(SurfacePaddle2, m.paddleClasses(SideP2)...)

	m.surf.Place(SurfaceBall, f.Ball.Rect.Left, f.Ball.Rect.Top)
	ball := []string{core.GlyphClass(BallChar)}
	if m.hidden {
		ball = append(ball, "hidden")
	}
	if m.power != nil && m.power.Active(PowerBallSpeed, SideNone) {
		ball = append(ball, "fast")
	}
	m.surf.Style(SurfaceBall, ball...)

	if m.power != nil {
		pk := m.power.Pickup
		if pk.Active {
			m.surf.Place(SurfacePowerUp, pk.Rect.Left, pk.Rect.Top)
			m.surf.Style(SurfacePowerUp, "powerup", core.GlyphClass(pk.Kind.Glyph()))
		} else {
			m.surf.Style(SurfacePowerUp, "hidden")
		}
	}
}

func (m *Match) paddleClasses(side Side) []string {
	classes := []string{core.GlyphClass(PaddleChar)}
	if m.power == nil {
		return classes
	}
	if m.power.Active(PowerReverse, side) {
		classes = append(classes, "reversed")
	}
	if m.power.Active(PowerPaddleSpeed, side) {
		classes = append(classes, "fast")
	}
	if m.power.Active(PowerPaddleSize, SideNone) {
		classes = append(classes, "grow")
	}
	return classes
}

// Snapshot serializes the match for persistence.
func (m *Match) Snapshot() ([]byte, error) {
	f := m.field
	s := Snapshot{
		Player1: PlayerSnapshot{Counter: f.P1.Score, PaddleTop: f.P1.Paddle.Top, PaddleSpeed: f.P1.Speed},
		Player2: PlayerSnapshot{Counter: f.P2.Score, PaddleTop: f.P2.Paddle.Top, PaddleSpeed: f.P2.Speed},
		Ball: BallSnapshot{
			PosX:  f.Ball.Rect.Left,
			PosY:  f.Ball.Rect.Top,
			VelX:  f.Ball.VelX,
			VelY:  f.Ball.VelY,
			Angle: f.Ball.Angle,
		},
		GeneralData: GeneralSnapshot{Time: float64(m.tickMs), Speed: f.Speed},
		AIData:      AISnapshot{Activate: m.ai != nil},
	}
	if m.ai != nil {
		s.AIData.TargetY = m.ai.TargetY
	}
	return s.Encode()
}

// Restore replaces the match state with a persisted snapshot. Positions
// are clamped into the current field.
func (m *Match) Restore(data []byte) error {
	s, err := DecodeSnapshot(data, m.field.WinScore())
	if err != nil {
		return err
	}

	f := m.field
	f.P1.Score, f.P2.Score = s.Player1.Counter, s.Player2.Counter
	f.P1.Paddle.Top, f.P2.Paddle.Top = s.Player1.PaddleTop, s.Player2.PaddleTop
	f.P1.Speed, f.P2.Speed = s.Player1.PaddleSpeed, s.Player2.PaddleSpeed
	f.Ball.Rect.Left, f.Ball.Rect.Top = s.Ball.PosX, s.Ball.PosY
	f.Ball.VelX, f.Ball.VelY, f.Ball.Angle = s.Ball.VelX, s.Ball.VelY, s.Ball.Angle
	f.Speed = s.GeneralData.Speed
	f.over = f.P1.Score >= f.winScore || f.P2.Score >= f.winScore

	switch {
	case s.AIData.Activate && m.ai == nil:
		m.enableAI()
	case !s.AIData.Activate && m.ai != nil:
		m.ai, f.AI = nil, nil
	}
	if m.ai != nil {
		m.ai.TargetY = s.AIData.TargetY
	}

	if f.Ball.Rect.Left <= 0 || f.Ball.Rect.Right() >= f.Width {
		f.Ball.Rect.Left = f.Width/2 - f.Ball.Rect.Width/2
	}
	f.Ball.Rect.Top = core.ClampF(f.Ball.Rect.Top, 0, math.Max(0, f.Height-f.Ball.Rect.Height))
	f.ClampPaddles()
	m.Sync()
	return nil
}
