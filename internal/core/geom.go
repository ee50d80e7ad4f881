// Package core provides the geometry, surface and input primitives shared by
// the match simulations. It has no dependency on any terminal or UI library so
// game logic stays pure and testable.
package core

import "math"

// Rect is an axis-aligned box in play-field units (left/top origin).
type Rect struct {
	Left, Top     float64
	Width, Height float64
}

// NewRect creates a rectangle from its top-left corner and size.
func NewRect(left, top, width, height float64) Rect {
	return Rect{Left: left, Top: top, Width: width, Height: height}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.Left + r.Width
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Top + r.Height
}

// CenterX returns the horizontal center.
func (r Rect) CenterX() float64 {
	return r.Left + r.Width/2
}

// CenterY returns the vertical center.
func (r Rect) CenterY() float64 {
	return r.Top + r.Height/2
}

// Empty reports whether the rect has no area. Surfaces that were removed
// from the layout report an empty rect.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Overlaps reports whether two rects touch or overlap. Edges are inclusive,
// so a ball resting exactly on a paddle face counts as contact.
func (r Rect) Overlaps(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.Right() >= o.Left &&
		r.Left <= o.Right() &&
		r.Bottom() >= o.Top &&
		r.Top <= o.Bottom()
}

// Contains returns true if the point lies inside the rect (edges inclusive).
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x <= r.Right() && y >= r.Top && y <= r.Bottom()
}

// Moved returns a copy of r positioned at (left, top).
func (r Rect) Moved(left, top float64) Rect {
	r.Left, r.Top = left, top
	return r
}

// Clamp restricts a value to be within [lo, hi].
func Clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// ClampF restricts a float64 value to be within [lo, hi].
func ClampF(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// Sign returns -1, 0 or 1 following the sign of x.
func Sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// Finite reports whether every value is a real number.
func Finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
