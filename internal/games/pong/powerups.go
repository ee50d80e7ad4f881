package pong

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/duel-arcade/internal/config"
	"github.com/vovakirdan/duel-arcade/internal/core"
)

// PowerUpKind represents the chaos variant pickups.
type PowerUpKind int

const (
	PowerPaddleSize  PowerUpKind = iota // Wider edge margin, paddles pushed inward
	PowerBallSpeed                      // Ball velocity multiplied
	PowerPaddleSpeed                    // Faster paddle for one player
	PowerReverse                        // Inverted controls for one player
	powerKindCount                      // Sentinel for counting kinds
)

// Glyph returns the display character for a pickup kind.
func (k PowerUpKind) Glyph() rune {
	switch k {
	case PowerPaddleSize:
		return '↕'
	case PowerBallSpeed:
		return '»'
	case PowerPaddleSpeed:
		return '⚡'
	case PowerReverse:
		return '⇄'
	default:
		return '?'
	}
}

// String returns the name of the pickup kind.
func (k PowerUpKind) String() string {
	switch k {
	case PowerPaddleSize:
		return "Size"
	case PowerBallSpeed:
		return "Fast ball"
	case PowerPaddleSpeed:
		return "Fast paddle"
	case PowerReverse:
		return "Reverse"
	default:
		return "?"
	}
}

// Pickup is a power-up waiting on the field.
type Pickup struct {
	Kind      PowerUpKind
	Rect      core.Rect
	Active    bool
	UntilTick int // Tick at which the pickup despawns
}

// Effect is an active timed power-up.
type Effect struct {
	Kind      PowerUpKind
	Target    Side
	UntilTick int // Tick at which effect expires
}

// TicksRemaining returns how many ticks until effect expires.
func (e *Effect) TicksRemaining(currentTick int) int {
	remaining := e.UntilTick - currentTick
	if remaining < 0 {
		return 0
	}
	return remaining
}

// PowerUps spawns pickups and applies their effects to a field.
type PowerUps struct {
	Pickup  Pickup
	Effects []Effect

	cfg        config.PowerUpConfig
	baseSpeed  float64
	baseMargin float64
	spawnTicks int
	lifeTicks  int
	durTicks   int
	nextSpawn  int
}

// NewPowerUps converts millisecond timings to ticks of tickMs.
func NewPowerUps(cfg config.PowerUpConfig, paddles config.PongPaddles, tickMs int) *PowerUps {
	if tickMs <= 0 {
		tickMs = 30
	}
	toTicks := func(ms int) int { return core.Max(1, ms/tickMs) }
	pu := &PowerUps{
		cfg:        cfg,
		baseSpeed:  paddles.Speed,
		baseMargin: paddles.Margin,
		spawnTicks: toTicks(cfg.SpawnEveryMs),
		lifeTicks:  toTicks(cfg.LifetimeMs),
		durTicks:   toTicks(cfg.DurationMs),
	}
	pu.nextSpawn = pu.spawnTicks
	return pu
}

// SetPickupSize sets the pickup footprint from the render layout.
func (pu *PowerUps) SetPickupSize(w, h float64) {
	pu.Pickup.Rect.Width, pu.Pickup.Rect.Height = w, h
}

// Update runs one tick: expire effects, despawn or spawn the pickup and
// check whether the ball collected it. It returns the kind collected.
func (pu *PowerUps) Update(f *Field, tick int, rng *rand.Rand) (PowerUpKind, bool) {
	pu.expire(f, tick)

	if pu.Pickup.Active && tick >= pu.Pickup.UntilTick {
		pu.Pickup.Active = false
	}
	if tick >= pu.nextSpawn {
		pu.nextSpawn = tick + pu.spawnTicks
		if !pu.Pickup.Active {
			pu.spawn(f, tick, rng)
		}
	}

	if pu.Pickup.Active && f.Ball.Rect.Overlaps(pu.Pickup.Rect) {
		pu.Pickup.Active = false
		pu.activate(f, pu.Pickup.Kind, tick)
		return pu.Pickup.Kind, true
	}
	return 0, false
}

func (pu *PowerUps) spawn(f *Field, tick int, rng *rand.Rand) {
	edge := pu.cfg.EdgeMargin
	r := pu.Pickup.Rect
	minX, maxX := f.Width*edge, f.Width*(1-edge)-r.Width
	minY, maxY := f.Height*edge, f.Height*(1-edge)-r.Height
	if maxX < minX || maxY < minY {
		return
	}

	pu.Pickup = Pickup{
		Kind:      PowerUpKind(rng.Intn(int(powerKindCount))),
		Rect:      r.Moved(minX+rng.Float64()*(maxX-minX), minY+rng.Float64()*(maxY-minY)),
		Active:    true,
		UntilTick: tick + pu.lifeTicks,
	}
}

// activate applies an effect to the player the ball is moving away from.
// A repeated pickup of an active effect only extends it.
func (pu *PowerUps) activate(f *Field, kind PowerUpKind, tick int) {
	target := SideP2
	if f.Ball.VelX < 0 {
		target = SideP1
	}

	for i := range pu.Effects {
		e := &pu.Effects[i]
		if e.Kind == kind && (e.Target == target || kind == PowerPaddleSize || kind == PowerBallSpeed) {
			e.UntilTick = tick + pu.durTicks
			return
		}
	}

	p := player(f, target)
	switch kind {
	case PowerPaddleSize:
		f.Margin = pu.cfg.PaddleMargin
		f.ClampPaddles()
	case PowerBallSpeed:
		f.Ball.VelX *= pu.cfg.BallSpeedFactor
		f.Ball.VelY *= pu.cfg.BallSpeedFactor
	case PowerPaddleSpeed:
		p.Speed = pu.cfg.PaddleSpeed
	case PowerReverse:
		p.KeysReversed = true
	}
	pu.Effects = append(pu.Effects, Effect{Kind: kind, Target: target, UntilTick: tick + pu.durTicks})
}

// expire reverts every effect whose time is up.
func (pu *PowerUps) expire(f *Field, tick int) {
	live := pu.Effects[:0]
	for _, e := range pu.Effects {
		if tick < e.UntilTick {
			live = append(live, e)
			continue
		}
		p := player(f, e.Target)
		switch e.Kind {
		case PowerPaddleSize:
			f.Margin = pu.baseMargin
			f.ClampPaddles()
		case PowerBallSpeed:
			if factor := pu.cfg.BallSpeedFactor; factor != 0 && !math.IsInf(factor, 0) {
				f.Ball.VelX /= factor
				f.Ball.VelY /= factor
			}
		case PowerPaddleSpeed:
			p.Speed = pu.baseSpeed
		case PowerReverse:
			p.KeysReversed = false
		}
	}
	pu.Effects = live
}

// Active reports whether an effect of kind is running for side.
func (pu *PowerUps) Active(kind PowerUpKind, side Side) bool {
	for _, e := range pu.Effects {
		if e.Kind == kind && (e.Target == side || side == SideNone) {
			return true
		}
	}
	return false
}

func player(f *Field, side Side) *Player {
	if side == SideP1 {
		return &f.P1
	}
	return &f.P2
}
