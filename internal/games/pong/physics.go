package pong

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/duel-arcade/internal/config"
	"github.com/vovakirdan/duel-arcade/internal/core"
)

// Intent is the movement a player or the AI has requested.
type Intent struct {
	Pressed bool
	Dir     core.Direction
}

// Player is one paddle and its score.
type Player struct {
	Intent       Intent
	Paddle       core.Rect
	Speed        float64 // Fraction of field height moved per tick
	Score        int
	KeysReversed bool
}

// Press sets the intent from a key; reversed controls invert the direction.
func (p *Player) Press(dir core.Direction) {
	if p.KeysReversed {
		switch dir {
		case core.DirUp:
			dir = core.DirDown
		case core.DirDown:
			dir = core.DirUp
		}
	}
	p.Intent = Intent{Pressed: true, Dir: dir}
}

// Release clears the intent.
func (p *Player) Release() {
	p.Intent.Pressed = false
}

// Ball is the ball rect plus its per-tick velocity.
type Ball struct {
	Rect  core.Rect
	VelX  float64
	VelY  float64
	Angle float64
}

// Speed returns the velocity magnitude.
func (b Ball) Speed() float64 {
	return math.Hypot(b.VelX, b.VelY)
}

// Side identifies which player scored.
type Side int

const (
	SideNone Side = iota
	SideP1
	SideP2
)

// Field is the complete physical state of a paddle match. Positions are in
// field units with the origin at the top-left corner.
type Field struct {
	Width  float64
	Height float64
	P1     Player
	P2     Player
	Ball   Ball
	Speed  float64 // Base speed of the last reset or hit
	Margin float64 // Edge margin as a fraction of height

	// AI, when non-nil, steers P2 and releases it inside the dead band.
	AI *AIState

	phys     config.PongPhysics
	winScore int
	rng      *rand.Rand
	over     bool
}

// NewField creates a field with centered paddles. Call Reset to serve.
func NewField(width, height float64, cfg config.PongConfig, rng *rand.Rand) *Field {
	f := &Field{
		Width:    width,
		Height:   height,
		Margin:   cfg.Paddles.Margin,
		phys:     cfg.Physics,
		winScore: cfg.Gameplay.WinScore,
		rng:      rng,
	}
	if f.winScore <= 0 {
		f.winScore = 10
	}
	if f.phys.MaxBounce <= 0 {
		f.phys.MaxBounce = 45
	}
	f.P1.Speed = cfg.Paddles.Speed
	f.P2.Speed = cfg.Paddles.Speed
	return f
}

// Goals returns the total number of goals scored.
func (f *Field) Goals() int {
	return f.P1.Score + f.P2.Score
}

// Over reports whether a player reached the winning score.
func (f *Field) Over() bool {
	return f.over
}

// WinScore returns the score that ends the match.
func (f *Field) WinScore() int {
	return f.winScore
}

// maxBounce returns the rebound angle limit in radians.
func (f *Field) maxBounce() float64 {
	return f.phys.MaxBounce * math.Pi / 180
}

// Reset serves the ball from the center line. The serve alternates
// direction with the goal count: an even total sends the ball left.
func (f *Field) Reset() {
	f.Speed = f.phys.ResetSpeed

	b := &f.Ball
	b.Rect.Left = f.Width/2 - b.Rect.Width/2
	top := float64(f.rng.Intn(100)) / 100 * f.Height
	b.Rect.Top = core.ClampF(top, 0, math.Max(0, f.Height-b.Rect.Height))

	limit := f.maxBounce()
	b.Angle = f.rng.Float64()*2*limit - limit

	b.VelX = f.Width * f.Speed * math.Cos(b.Angle)
	if f.Goals()%2 == 0 {
		b.VelX = -b.VelX
	}
	b.VelY = f.Width * f.Speed * math.Sin(b.Angle)
}

// Step advances the simulation by one tick and reports who scored.
func (f *Field) Step() Side {
	if f.over {
		return SideNone
	}

	// Paddle collision, player 1 first
	if !f.collide(&f.P1, true) {
		f.collide(&f.P2, false)
	}

	b := &f.Ball
	b.Rect.Left += b.VelX
	b.Rect.Top += b.VelY

	if b.Rect.Top <= 0 {
		b.Rect.Top = 0
		b.VelY = math.Abs(b.VelY)
	} else if b.Rect.Bottom() >= f.Height {
		b.Rect.Top = f.Height - b.Rect.Height
		b.VelY = -math.Abs(b.VelY)
	}

	f.movePaddle(&f.P1, false)
	f.movePaddle(&f.P2, f.AI != nil)

	return f.checkGoal()
}

// collide bounces the ball off p if they touch. The rebound angle is
// proportional to how far from the paddle center the ball hit.
func (f *Field) collide(p *Player, left bool) bool {
	b := &f.Ball
	if p.Paddle.Empty() || !sweep(b, left).Overlaps(p.Paddle) {
		return false
	}

	offset := (b.Rect.CenterY() - p.Paddle.CenterY()) / (p.Paddle.Height / 2)
	offset = core.ClampF(offset, -1, 1)

	f.Speed = f.phys.HitSpeed
	b.Angle = offset * f.maxBounce()

	velX := math.Abs(f.Width * f.Speed * math.Cos(b.Angle))
	if velX < f.phys.MinVelX {
		velX = f.phys.MinVelX
	}
	if left {
		b.VelX = velX
		b.Rect.Left = p.Paddle.Right()
	} else {
		b.VelX = -velX
		b.Rect.Left = p.Paddle.Left - b.Rect.Width
	}
	b.VelY = f.Height * f.Speed * math.Sin(b.Angle)
	return true
}

// sweep extends the ball rect over the distance it travels this tick when
// it moves toward the paddle on the given side, so a fast ball cannot step
// over a thin paddle.
func sweep(b *Ball, left bool) core.Rect {
	r := b.Rect
	switch {
	case left && b.VelX < 0:
		r.Left += b.VelX
		r.Width -= b.VelX
	case !left && b.VelX > 0:
		r.Width += b.VelX
	}
	return r
}

// movePaddle applies a player's intent. Paddles stop at the edge margin.
func (f *Field) movePaddle(p *Player, ai bool) {
	if !p.Intent.Pressed {
		return
	}
	if ai && f.AI.InDeadBand(p.Paddle) {
		p.Release()
		return
	}

	step := f.Height * p.Speed
	margin := f.Height * f.Margin
	switch p.Intent.Dir {
	case core.DirUp:
		if p.Paddle.Top >= margin {
			p.Paddle.Top -= step
		}
	case core.DirDown:
		if p.Paddle.Bottom() <= f.Height-margin {
			p.Paddle.Top += step
		}
	}
	p.Paddle.Top = core.ClampF(p.Paddle.Top, 0, math.Max(0, f.Height-p.Paddle.Height))
}

func (f *Field) checkGoal() Side {
	switch {
	case f.Ball.Rect.Left >= f.Width:
		f.score(SideP1)
		return SideP1
	case f.Ball.Rect.Left <= 0:
		f.score(SideP2)
		return SideP2
	}
	return SideNone
}

// score credits a goal and either serves again or ends the match.
func (f *Field) score(side Side) {
	p := &f.P1
	if side == SideP2 {
		p = &f.P2
	}
	if p.Score < f.winScore {
		p.Score++
	}
	if p.Score >= f.winScore {
		f.over = true
		return
	}
	f.Reset()
}

// ClampPaddles keeps both paddles inside the current edge margin.
func (f *Field) ClampPaddles() {
	margin := f.Height * f.Margin
	for _, p := range []*Player{&f.P1, &f.P2} {
		lo := margin
		hi := f.Height - margin - p.Paddle.Height
		if hi < lo {
			lo, hi = 0, math.Max(0, f.Height-p.Paddle.Height)
		}
		p.Paddle.Top = core.ClampF(p.Paddle.Top, lo, hi)
	}
}

// Rescale moves the match to a new field size. Positions keep their
// fractional placement and the ball speed drops back to the resize speed.
// A ball that ends up past a goal line scores immediately.
func (f *Field) Rescale(width, height float64) Side {
	if f.over || width <= 0 || height <= 0 || f.Width <= 0 || f.Height <= 0 {
		return SideNone
	}

	ballX := f.Ball.Rect.Left / f.Width
	ballY := f.Ball.Rect.Top / f.Height
	p1 := f.P1.Paddle.Top / f.Height
	p2 := f.P2.Paddle.Top / f.Height

	f.Width, f.Height = width, height
	speed := f.phys.ResizeSpeed
	f.Ball.VelX = core.Sign(f.Ball.VelX) * width * speed
	f.Ball.VelY = core.Sign(f.Ball.VelY) * height * speed

	f.Ball.Rect.Left = ballX * width
	f.Ball.Rect.Top = ballY * height
	f.P1.Paddle.Top = p1 * height
	f.P2.Paddle.Top = p2 * height

	b := &f.Ball
	switch {
	case b.Rect.Left < 0:
		f.score(SideP2)
		return SideP2
	case b.Rect.Right() > width:
		f.score(SideP1)
		return SideP1
	}

	if b.Rect.Top < 0 {
		b.Rect.Top = 0
		b.VelY = math.Abs(b.VelY)
	} else if b.Rect.Bottom() > height {
		b.Rect.Top = height - b.Rect.Height
		b.VelY = -math.Abs(b.VelY)
	}
	return SideNone
}
