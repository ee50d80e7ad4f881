// Package board implements the Connect-Four grid: gravity placement, win and
// draw detection, and the pure probes the AI builds on.
package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Board dimensions.
const (
	Columns = 7
	Rows    = 6
	WinLen  = 4
)

// Cell is the content of one board position.
type Cell uint8

const (
	Empty Cell = iota
	PlayerA
	PlayerB
	Special // ghost piece, never part of a win
)

// String returns a short name for the cell.
func (c Cell) String() string {
	switch c {
	case Empty:
		return "empty"
	case PlayerA:
		return "A"
	case PlayerB:
		return "B"
	case Special:
		return "special"
	default:
		return "?"
	}
}

// Opponent returns the other player's piece. Empty and Special map to themselves.
func (c Cell) Opponent() Cell {
	switch c {
	case PlayerA:
		return PlayerB
	case PlayerB:
		return PlayerA
	default:
		return c
	}
}

// Placement errors. All wrap ErrRejected.
var (
	ErrRejected      = errors.New("board: placement rejected")
	ErrColumnFull    = fmt.Errorf("%w: column full", ErrRejected)
	ErrColumnLocked  = fmt.Errorf("%w: column locked", ErrRejected)
	ErrInvalidColumn = fmt.Errorf("%w: invalid column", ErrRejected)
)

// Directions scanned for lines: horizontal, vertical and both diagonals.
var Directions = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// Board is a 7x6 grid stored column-major, row 0 at the bottom. Within a
// column non-empty cells are contiguous from row 0 upward. Board is a value
// type: assignment copies it.
type Board struct {
	cells  [Columns][Rows]Cell
	locked [Columns]bool
}

// ColumnID returns the external id of a column index ("c1".."c7").
func ColumnID(col int) string {
	return "c" + strconv.Itoa(col+1)
}

// ColumnIDs returns every column id in order.
func ColumnIDs() []string {
	ids := make([]string, Columns)
	for c := range ids {
		ids[c] = ColumnID(c)
	}
	return ids
}

// ColumnIndex parses a column id.
func ColumnIndex(id string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "c"))
	if err != nil || !strings.HasPrefix(id, "c") || n < 1 || n > Columns {
		return 0, fmt.Errorf("%w: %q", ErrInvalidColumn, id)
	}
	return n - 1, nil
}

// InBounds reports whether (col, row) is on the board.
func InBounds(col, row int) bool {
	return col >= 0 && col < Columns && row >= 0 && row < Rows
}

// At returns the cell at (col, row), Empty when out of bounds.
func (b *Board) At(col, row int) Cell {
	if !InBounds(col, row) {
		return Empty
	}
	return b.cells[col][row]
}

// Set writes a cell directly, without gravity. Used to rebuild boards.
func (b *Board) Set(col, row int, c Cell) {
	if InBounds(col, row) {
		b.cells[col][row] = c
	}
}

// Height returns the number of occupied cells in a column.
func (b *Board) Height(col int) int {
	for row := 0; row < Rows; row++ {
		if b.cells[col][row] == Empty {
			return row
		}
	}
	return Rows
}

// Locked reports whether a column is frozen.
func (b *Board) Locked(col int) bool {
	return col >= 0 && col < Columns && b.locked[col]
}

// Lock freezes a column.
func (b *Board) Lock(col int) {
	if col >= 0 && col < Columns {
		b.locked[col] = true
	}
}

// Unlock releases a column.
func (b *Board) Unlock(col int) {
	if col >= 0 && col < Columns {
		b.locked[col] = false
	}
}

// Playable reports whether a piece can be dropped in the column.
func (b *Board) Playable(col int) bool {
	return col >= 0 && col < Columns && !b.locked[col] && b.Height(col) < Rows
}

// PlayableColumns returns the playable column indexes in order.
func (b *Board) PlayableColumns() []int {
	out := make([]int, 0, Columns)
	for c := 0; c < Columns; c++ {
		if b.Playable(c) {
			out = append(out, c)
		}
	}
	return out
}

// Place drops a cell into a column and returns the row it landed on.
// A rejected placement leaves the board untouched.
func (b *Board) Place(col int, c Cell) (int, error) {
	switch {
	case col < 0 || col >= Columns:
		return -1, fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	case b.locked[col]:
		return -1, fmt.Errorf("%w: %s", ErrColumnLocked, ColumnID(col))
	}
	row := b.Height(col)
	if row >= Rows {
		return -1, fmt.Errorf("%w: %s", ErrColumnFull, ColumnID(col))
	}
	b.cells[col][row] = c
	return row, nil
}

// Clone returns an independent copy.
func (b *Board) Clone() Board {
	return *b
}

// CheckWin scans every player-owned cell and returns the owner of the first
// line of four or more found.
func (b *Board) CheckWin() (Cell, bool) {
	for col := 0; col < Columns; col++ {
		for row := 0; row < Rows; row++ {
			owner := b.cells[col][row]
			if owner != PlayerA && owner != PlayerB {
				continue
			}
			if b.lineAt(col, row) {
				return owner, true
			}
		}
	}
	return Empty, false
}

// lineAt counts same-owner runs through (col, row) in each direction.
func (b *Board) lineAt(col, row int) bool {
	owner := b.cells[col][row]
	for _, d := range Directions {
		count := 1
		for _, step := range [2]int{1, -1} {
			for s := 1; s < WinLen; s++ {
				c, r := col+d[0]*s*step, row+d[1]*s*step
				if !InBounds(c, r) || b.cells[c][r] != owner {
					break
				}
				count++
			}
		}
		if count >= WinLen {
			return true
		}
	}
	return false
}

// CheckDraw reports whether no column has an empty cell. Locks do not count.
func (b *Board) CheckDraw() bool {
	for col := 0; col < Columns; col++ {
		if b.cells[col][Rows-1] == Empty {
			return false
		}
	}
	return true
}

// WinOpportunities returns the playable columns where dropping c would win.
// The receiver is never modified.
func (b *Board) WinOpportunities(c Cell) []int {
	var out []int
	for _, col := range b.PlayableColumns() {
		probe := *b
		if _, err := probe.Place(col, c); err != nil {
			continue
		}
		if owner, ok := probe.CheckWin(); ok && owner == c {
			out = append(out, col)
		}
	}
	return out
}

// Count returns how many cells hold c.
func (b *Board) Count(c Cell) int {
	n := 0
	for col := range b.cells {
		for _, v := range b.cells[col] {
			if v == c {
				n++
			}
		}
	}
	return n
}

// CountInColumn returns how many cells of one column hold c.
func (b *Board) CountInColumn(col int, c Cell) int {
	n := 0
	for _, v := range b.cells[col] {
		if v == c {
			n++
		}
	}
	return n
}

// FillRatio is the share of non-empty cells.
func (b *Board) FillRatio() float64 {
	return float64(Columns*Rows-b.Count(Empty)) / float64(Columns*Rows)
}

// Clear empties one cell without compacting.
func (b *Board) Clear(col, row int) {
	b.Set(col, row, Empty)
}

// Compact lets the pieces of a column fall so they are contiguous from row 0.
func (b *Board) Compact(col int) {
	if col < 0 || col >= Columns {
		return
	}
	dst := 0
	for row := 0; row < Rows; row++ {
		if v := b.cells[col][row]; v != Empty {
			b.cells[col][row] = Empty
			b.cells[col][dst] = v
			dst++
		}
	}
}

// Swap exchanges two cell values board-wide.
func (b *Board) Swap(x, y Cell) {
	for col := range b.cells {
		for row, v := range b.cells[col] {
			switch v {
			case x:
				b.cells[col][row] = y
			case y:
				b.cells[col][row] = x
			}
		}
	}
}

// RemoveAll clears every cell holding c and compacts the touched columns.
// It returns the number of cells removed.
func (b *Board) RemoveAll(c Cell) int {
	n := 0
	for col := range b.cells {
		touched := false
		for row, v := range b.cells[col] {
			if v == c {
				b.cells[col][row] = Empty
				touched = true
				n++
			}
		}
		if touched {
			b.Compact(col)
		}
	}
	return n
}

// Encode returns the wire form: one slice per column, bottom row first,
// 0 empty, 1 and 2 players, 3 special.
func (b *Board) Encode() [][]int {
	out := make([][]int, Columns)
	for col := range b.cells {
		out[col] = make([]int, Rows)
		for row, v := range b.cells[col] {
			out[col][row] = int(v)
		}
	}
	return out
}

// Decode rebuilds a board from its wire form. Locks are not part of it.
func Decode(cols [][]int) (Board, error) {
	var b Board
	if len(cols) != Columns {
		return b, fmt.Errorf("board: want %d columns, got %d", Columns, len(cols))
	}
	for col, rows := range cols {
		if len(rows) != Rows {
			return b, fmt.Errorf("board: column %s has %d rows", ColumnID(col), len(rows))
		}
		for row, v := range rows {
			if v < int(Empty) || v > int(Special) {
				return b, fmt.Errorf("board: bad cell %d at %s:%d", v, ColumnID(col), row)
			}
			b.cells[col][row] = Cell(v)
		}
	}
	return b, nil
}

// String renders the board top row first, for tests and debugging.
func (b *Board) String() string {
	var sb strings.Builder
	for row := Rows - 1; row >= 0; row-- {
		for col := 0; col < Columns; col++ {
			switch b.cells[col][row] {
			case PlayerA:
				sb.WriteByte('A')
			case PlayerB:
				sb.WriteByte('B')
			case Special:
				sb.WriteByte('*')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Parse reads the String form back: Rows lines of Columns characters, top
// row first. Gravity is not enforced.
func Parse(s string) (Board, error) {
	var b Board
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) != Rows {
		return b, fmt.Errorf("board: want %d rows, got %d", Rows, len(lines))
	}
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) != Columns {
			return b, fmt.Errorf("board: row %d has %d columns", i, len(line))
		}
		row := Rows - 1 - i
		for col := 0; col < Columns; col++ {
			switch line[col] {
			case 'A':
				b.cells[col][row] = PlayerA
			case 'B':
				b.cells[col][row] = PlayerB
			case '*':
				b.cells[col][row] = Special
			case '.':
			default:
				return b, fmt.Errorf("board: bad cell %q", line[col])
			}
		}
	}
	return b, nil
}
