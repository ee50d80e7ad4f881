package board

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func mustParse(t *testing.T, s string) Board {
	t.Helper()
	b, err := Parse(s)
	require.NoError(t, err)
	return b
}

func TestStackInFirstColumn(t *testing.T) {
	var b Board
	for want := 0; want < 4; want++ {
		row, err := b.Place(0, PlayerA)
		require.NoError(t, err)
		assert.Equal(t, want, row)

		owner, won := b.CheckWin()
		if want < 3 {
			assert.False(t, won, "no win after %d pieces", want+1)
			continue
		}
		assert.True(t, won, "a vertical stack of four wins")
		assert.Equal(t, PlayerA, owner)
	}
}

func TestPlaceRejections(t *testing.T) {
	var b Board
	for i := 0; i < Rows; i++ {
		_, err := b.Place(2, PlayerB)
		require.NoError(t, err)
	}
	before := b

	tests := []struct {
		name string
		col  int
		want error
	}{
		{"full", 2, ErrColumnFull},
		{"negative", -1, ErrInvalidColumn},
		{"past the edge", Columns, ErrInvalidColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := b.Place(tt.col, PlayerA)
			assert.Equal(t, -1, row)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrRejected)
			assert.Equal(t, before, b, "a rejected placement must not mutate the board")
		})
	}

	b.Lock(4)
	_, err := b.Place(4, PlayerA)
	assert.True(t, errors.Is(err, ErrColumnLocked))
	assert.Zero(t, b.Height(4))
}

func TestCheckWinFixtures(t *testing.T) {
	tests := []struct {
		name  string
		board string
		owner Cell
		won   bool
	}{
		{"empty", `
.......
.......
.......
.......
.......
.......`, Empty, false},
		{"three in a row", `
.......
.......
.......
.......
.......
AAAB...`, Empty, false},
		{"horizontal four", `
.......
.......
.......
.......
BBB....
.AAAA..`, PlayerA, true},
		{"ascending diagonal", `
.......
.......
...B...
..BA...
.BAA...
BAAB...`, PlayerB, true},
		{"descending diagonal", `
.......
.......
A......
BA.....
BBA....
BBBA...`, PlayerA, true},
		{"ghost breaks a line", `
.......
.......
.......
.......
.......
AA*A...`, Empty, false},
		{"four ghosts never win", `
.......
.......
.......
.......
.......
****...`, Empty, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustParse(t, tt.board)
			owner, won := b.CheckWin()
			assert.Equal(t, tt.won, won)
			assert.Equal(t, tt.owner, owner)
		})
	}
}

// bruteForceWin checks every 4-window for a same-owner line.
func bruteForceWin(b *Board) bool {
	for col := 0; col < Columns; col++ {
		for row := 0; row < Rows; row++ {
			for _, d := range Directions {
				endC, endR := col+3*d[0], row+3*d[1]
				if !InBounds(endC, endR) {
					continue
				}
				first := b.At(col, row)
				if first != PlayerA && first != PlayerB {
					continue
				}
				line := true
				for i := 1; i < WinLen; i++ {
					if b.At(col+i*d[0], row+i*d[1]) != first {
						line = false
						break
					}
				}
				if line {
					return true
				}
			}
		}
	}
	return false
}

func TestCheckWinMatchesBruteForce(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		var b Board
		moves := rapid.IntRange(0, Columns*Rows).Draw(rt, "moves")
		for i := 0; i < moves; i++ {
			col := rapid.IntRange(0, Columns-1).Draw(rt, "col")
			cell := Cell(rapid.IntRange(1, 3).Draw(rt, "cell"))
			_, _ = b.Place(col, cell) // full columns are skipped
		}
		_, got := b.CheckWin()
		if want := bruteForceWin(&b); got != want {
			rt.Fatalf("CheckWin=%v, brute force=%v\n%s", got, want, b.String())
		}
	})
}

func TestCheckDraw(t *testing.T) {
	full := mustParse(t, `
ABABABA
ABABABA
BABABAB
BABABAB
ABABABA
ABABABA`)
	assert.True(t, full.CheckDraw())

	full.Clear(3, Rows-1)
	assert.False(t, full.CheckDraw())

	var b Board
	b.Lock(0)
	assert.False(t, b.CheckDraw(), "locks do not make a draw")
}

func TestWinOpportunities(t *testing.T) {
	b := mustParse(t, `
.......
.......
.......
.......
B......
BAAA...`)
	before := b

	assert.Equal(t, []int{4}, b.WinOpportunities(PlayerA))
	assert.Empty(t, b.WinOpportunities(PlayerB))
	assert.Equal(t, before, b, "probing must not change the board")

	b.Lock(4)
	assert.Empty(t, b.WinOpportunities(PlayerA), "locked columns are excluded")
}

func TestCompactAndRemove(t *testing.T) {
	b := mustParse(t, `
.......
.......
B......
*......
A......
A*.....`)

	assert.Equal(t, 2, b.RemoveAll(Special))
	assert.Equal(t, PlayerA, b.At(0, 0))
	assert.Equal(t, PlayerA, b.At(0, 1))
	assert.Equal(t, PlayerB, b.At(0, 2))
	assert.Equal(t, Empty, b.At(0, 3))
	assert.Equal(t, 3, b.Height(0))
	assert.Zero(t, b.Height(1))
}

func TestSwapOwnership(t *testing.T) {
	b := mustParse(t, `
.......
.......
.......
.......
B......
AA*B...`)
	b.Swap(PlayerA, PlayerB)
	assert.Equal(t, PlayerA, b.At(0, 1))
	assert.Equal(t, PlayerB, b.At(0, 0))
	assert.Equal(t, PlayerB, b.At(1, 0))
	assert.Equal(t, Special, b.At(2, 0))
	assert.Equal(t, PlayerA, b.At(3, 0))
}

func TestColumnIDs(t *testing.T) {
	assert.Equal(t, []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7"}, ColumnIDs())
	for i := 0; i < Columns; i++ {
		got, err := ColumnIndex(ColumnID(i))
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}
	for _, bad := range []string{"", "c0", "c8", "x3", "3"} {
		_, err := ColumnIndex(bad)
		assert.ErrorIs(t, err, ErrInvalidColumn, bad)
	}
}

func TestWireEncoding(t *testing.T) {
	b := mustParse(t, `
.......
.......
.......
.......
B......
A*.B...`)
	wire := b.Encode()
	require.Len(t, wire, Columns)
	assert.Equal(t, []int{1, 2, 0, 0, 0, 0}, wire[0])
	assert.Equal(t, []int{3, 0, 0, 0, 0, 0}, wire[1])

	back, err := Decode(wire)
	require.NoError(t, err)
	assert.Equal(t, b, back)

	_, err = Decode(wire[:3])
	assert.Error(t, err)
	wire[2][0] = 9
	_, err = Decode(wire)
	assert.Error(t, err)
}

func TestFillRatio(t *testing.T) {
	var b Board
	assert.Zero(t, b.FillRatio())
	for i := 0; i < 21; i++ {
		_, _ = b.Place(i%Columns, PlayerA)
	}
	assert.InDelta(t, 0.5, b.FillRatio(), 1e-9)
}
