// Package connectfour implements the column-drop board game against a human
// or the minimax opponent, in a classic and a crazy-tokens variant.
package connectfour

import (
	"fmt"

	"github.com/vovakirdan/duel-arcade/internal/core"
	"github.com/vovakirdan/duel-arcade/internal/games/connectfour/board"
	"github.com/vovakirdan/duel-arcade/internal/registry"
)

// Variant selects the rule set.
type Variant int

const (
	Classic Variant = iota
	Crazy
)

// SurfaceDice shows the token held by the player to move.
const SurfaceDice = "dice"

// Glyphs
const (
	PieceChar  = '●'
	EmptyChar  = '·'
	LockedChar = '×'
	DiceIdle   = '○'
	DiceSpent  = '✗'
)

// Layout bounds in cells.
const (
	minCellWidth  = 2
	maxCellWidth  = 6
	minCellHeight = 1
	maxCellHeight = 3
)

func init() {
	registry.Register(registry.Mode{
		ID:          "connectfour-classic",
		Title:       "Connect Four",
		Description: "Drop pieces with 1-7 or ←/→ and Enter. Four in a row wins",
		Family:      "connectfour",
		Layout:      Layout,
		New:         Factory(Classic),
	})
	registry.Register(registry.Mode{
		ID:          "connectfour-crazy",
		Title:       "Crazy Tokens",
		Description: "Connect Four with special tokens. Space rolls, roll again to arm",
		Family:      "connectfour",
		Layout:      Layout,
		New:         Factory(Crazy),
	})
}

// CellSurface names the surface of one board cell ("cell:c3:0").
func CellSurface(col, row int) string {
	return fmt.Sprintf("cell:%s:%d", board.ColumnID(col), row)
}

// Layout centers the board in width x height cells. Row 0 is drawn at the
// bottom.
func Layout(width, height int) map[string]core.Rect {
	cw := core.Clamp((width-4)/board.Columns, minCellWidth, maxCellWidth)
	ch := core.Clamp((height-4)/board.Rows, minCellHeight, maxCellHeight)
	ox := core.Max(0, (width-cw*board.Columns)/2)
	oy := core.Max(0, (height-ch*board.Rows)/2)

	out := make(map[string]core.Rect, board.Columns*board.Rows+1)
	for col := 0; col < board.Columns; col++ {
		for row := 0; row < board.Rows; row++ {
			top := oy + (board.Rows-1-row)*ch
			out[CellSurface(col, row)] = core.NewRect(float64(ox+col*cw), float64(top), float64(cw), float64(ch))
		}
	}
	out[SurfaceDice] = core.NewRect(float64(core.Max(0, ox-3)), float64(oy), 1, 1)
	return out
}

// ColumnAt maps a screen x coordinate to a board column using the layout.
func ColumnAt(width, height, x int) (int, bool) {
	lay := Layout(width, height)
	for col := 0; col < board.Columns; col++ {
		r := lay[CellSurface(col, 0)]
		if float64(x) >= r.Left && float64(x) < r.Right() {
			return col, true
		}
	}
	return 0, false
}

// Factory returns the registry constructor for a variant.
func Factory(v Variant) func(env registry.Env) (registry.Game, error) {
	return func(env registry.Env) (registry.Game, error) {
		return New(v, env)
	}
}

func requiredSurfaces(v Variant) []string {
	names := make([]string, 0, board.Columns*board.Rows+1)
	for col := 0; col < board.Columns; col++ {
		for row := 0; row < board.Rows; row++ {
			names = append(names, CellSurface(col, row))
		}
	}
	if v == Crazy {
		names = append(names, SurfaceDice)
	}
	return names
}
