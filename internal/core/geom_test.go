package core

import (
	"math"
	"testing"
)

func TestRectOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Rect
		expected bool
	}{
		{
			name:     "overlapping rects",
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(5, 5, 10, 10),
			expected: true,
		},
		{
			name:     "separate horizontally",
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(15, 0, 10, 10),
			expected: false,
		},
		{
			name:     "separate vertically",
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(0, 15, 10, 10),
			expected: false,
		},
		{
			name:     "touching edges count as contact",
			a:        NewRect(0, 0, 10, 10),
			b:        NewRect(10, 0, 10, 10),
			expected: true,
		},
		{
			name:     "contained rect",
			a:        NewRect(0, 0, 20, 20),
			b:        NewRect(5, 5, 5, 5),
			expected: true,
		},
		{
			name:     "empty rect never overlaps",
			a:        NewRect(0, 0, 20, 20),
			b:        NewRect(5, 5, 0, 5),
			expected: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Overlaps(tc.b); got != tc.expected {
				t.Errorf("Overlaps() = %v, expected %v", got, tc.expected)
			}
			if got := tc.b.Overlaps(tc.a); got != tc.expected {
				t.Errorf("Overlaps() is not symmetric: got %v", got)
			}
		})
	}
}

func TestRectEdgesAndCenter(t *testing.T) {
	r := NewRect(2, 4, 6, 10)

	if r.Right() != 8 {
		t.Errorf("Right() = %v, expected 8", r.Right())
	}
	if r.Bottom() != 14 {
		t.Errorf("Bottom() = %v, expected 14", r.Bottom())
	}
	if r.CenterX() != 5 || r.CenterY() != 9 {
		t.Errorf("center = (%v, %v), expected (5, 9)", r.CenterX(), r.CenterY())
	}
	if !r.Contains(2, 14) {
		t.Error("Contains() should include edges")
	}
	if r.Contains(9, 9) {
		t.Error("Contains() should reject points right of the rect")
	}

	moved := r.Moved(0, 0)
	if moved.Left != 0 || moved.Top != 0 || moved.Width != 6 || moved.Height != 10 {
		t.Errorf("Moved() = %+v", moved)
	}
}

func TestSign(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{3.5, 1},
		{-0.1, -1},
		{0, 0},
	}
	for _, tc := range tests {
		if got := Sign(tc.in); got != tc.want {
			t.Errorf("Sign(%v) = %v, expected %v", tc.in, got, tc.want)
		}
	}
}

func TestFinite(t *testing.T) {
	if !Finite(1, -2, 0) {
		t.Error("Finite() should accept ordinary numbers")
	}
	if Finite(1, math.NaN()) {
		t.Error("Finite() should reject NaN")
	}
	if Finite(math.Inf(-1)) {
		t.Error("Finite() should reject infinities")
	}
}

func TestClampF(t *testing.T) {
	tests := []struct {
		val, lo, hi, want float64
	}{
		{0.5, -1, 1, 0.5},
		{-3, -1, 1, -1},
		{7, -1, 1, 1},
	}
	for _, tc := range tests {
		if got := ClampF(tc.val, tc.lo, tc.hi); got != tc.want {
			t.Errorf("ClampF(%v, %v, %v) = %v, expected %v", tc.val, tc.lo, tc.hi, got, tc.want)
		}
	}
}
