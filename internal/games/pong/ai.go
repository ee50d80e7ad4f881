package pong

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/duel-arcade/internal/core"
)

// AIState is the predictive opponent. It controls player 2 and is
// recomputed on every AI tick.
type AIState struct {
	TargetY         float64
	TimeToIntercept float64
	ErrorRate       float64
	PaddleCenter    float64 // Paddle center as seen by the previous refresh

	// ErrorChance is the probability of aiming at ErrorRate instead of the
	// predicted intercept.
	ErrorChance float64
}

// Refresh predicts where the ball will cross the paddle line and sets the
// paddle intent toward it. Occasionally it aims somewhere wrong on purpose.
func (a *AIState) Refresh(f *Field, rng *rand.Rand) {
	p := &f.P2
	b := f.Ball

	a.TimeToIntercept = 0
	if b.VelX != 0 {
		a.TimeToIntercept = (p.Paddle.Left - b.Rect.Left) / b.VelX
	}
	a.TargetY = b.Rect.Top + b.VelY*a.TimeToIntercept

	// The error uses the center from the previous refresh.
	if a.PaddleCenter < a.TargetY {
		a.ErrorRate = rng.Float64()*f.Height - a.PaddleCenter
	} else {
		a.ErrorRate = rng.Float64() * a.PaddleCenter
	}
	a.PaddleCenter = p.Paddle.CenterY()

	if rng.Float64() < a.ErrorChance {
		a.TargetY = a.ErrorRate
	}
	a.TargetY = Fold(a.TargetY, f.Height)

	switch {
	case a.PaddleCenter < a.TargetY:
		p.Press(core.DirDown)
	case a.PaddleCenter > a.TargetY:
		p.Press(core.DirUp)
	}
}

// InDeadBand reports whether the target lies within the paddle span, in
// which case the paddle stops.
func (a *AIState) InDeadBand(paddle core.Rect) bool {
	return a.TargetY >= paddle.Top && a.TargetY <= paddle.Bottom()
}

// Fold reflects y into [0, height] as if it bounced off both walls.
func Fold(y, height float64) float64 {
	if height <= 0 || !core.Finite(y) {
		return 0
	}
	if y >= 0 && y <= height {
		return y
	}
	m := math.Mod(math.Abs(y), 2*height)
	if m > height {
		m = 2*height - m
	}
	return m
}
