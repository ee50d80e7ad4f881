package search

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/vovakirdan/duel-arcade/internal/games/connectfour/board"
)

const (
	ai  = board.PlayerB
	opp = board.PlayerA
)

func mustParse(t testing.TB, s string) board.Board {
	t.Helper()
	b, err := board.Parse(s)
	require.NoError(t, err)
	return b
}

func TestEvaluateWindows(t *testing.T) {
	tests := []struct {
		name  string
		board string
		want  int
	}{
		{"empty", `
.......
.......
.......
.......
.......
.......`, 0},
		// Only the horizontal window starting at c1 holds BB and two empties.
		{"own pair", `
.......
.......
.......
.......
.......
BB.....`, 2},
		{"mirrored pair", `
.......
.......
.......
.......
.......
AA.....`, -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustParse(t, tt.board)
			assert.Equal(t, tt.want, Evaluate(&b, ai, opp))
		})
	}
}

func TestEvaluateSymmetric(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		var b board.Board
		n := rapid.IntRange(0, 30).Draw(rt, "n")
		for i := 0; i < n; i++ {
			col := rapid.IntRange(0, board.Columns-1).Draw(rt, "col")
			cell := board.Cell(rapid.IntRange(1, 2).Draw(rt, "cell"))
			_, _ = b.Place(col, cell)
		}
		if got, want := Evaluate(&b, ai, opp), -Evaluate(&b, opp, ai); got != want {
			rt.Fatalf("Evaluate not antisymmetric: %d vs %d\n%s", got, want, b.String())
		}
	})
}

func TestEvaluateDescendingDiagonal(t *testing.T) {
	b := mustParse(t, `
.......
.......
B......
AB.....
AAB....
AAAB...`)
	// The descending window from c1 row 3 is a completed line for B.
	withLine := Evaluate(&b, ai, opp)
	b.Set(3, 0, board.PlayerA)
	without := Evaluate(&b, ai, opp)
	assert.Greater(t, withLine-without, ScoreFour, "the descending diagonal must be scored")
}

func TestColumnPotential(t *testing.T) {
	var empty board.Board
	assert.Zero(t, ColumnPotential(&empty, 3, ai), "no own pieces means no potential")

	b := mustParse(t, `
.......
.......
.......
.......
.......
...B...`)
	// Only row 0 of c4 has lines through the B: horizontal and both
	// diagonals, each with room for four.
	assert.Equal(t, 6, ColumnPotential(&b, 3, ai))

	v := mustParse(t, `
.......
.......
B......
B......
B......
B......`)
	assert.GreaterOrEqual(t, ColumnPotential(&v, 0, ai), ScoreFour)
}

func TestBestMoveTakesWin(t *testing.T) {
	b := mustParse(t, `
.......
.......
.......
.......
AAA....
BBB....`)
	assert.Equal(t, 3, BestMove(&b, ai, opp, 3), "an immediate win beats blocking")
}

func TestBestMoveBlocks(t *testing.T) {
	// A threatens c4 horizontally; B has nothing to win with.
	b := mustParse(t, `
.......
.......
.......
.......
.......
AAA.B.B`)
	for depth := 1; depth <= 5; depth++ {
		assert.Equal(t, 3, BestMove(&b, ai, opp, depth), "depth %d", depth)
	}
}

func TestBestMoveAlwaysBlocksProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		var b board.Board
		n := rapid.IntRange(0, 24).Draw(rt, "n")
		for i := 0; i < n; i++ {
			col := rapid.IntRange(0, board.Columns-1).Draw(rt, "col")
			_, _ = b.Place(col, board.Cell(1+i%2))
		}
		if _, won := b.CheckWin(); won {
			return
		}
		threats := b.WinOpportunities(opp)
		if len(threats) == 0 || len(b.WinOpportunities(ai)) > 0 {
			return
		}
		depth := rapid.IntRange(1, 3).Draw(rt, "depth")
		if got := BestMove(&b, ai, opp, depth); got != threats[0] {
			rt.Fatalf("BestMove=%d, expected block at %d\n%s", got, threats[0], b.String())
		}
	})
}

func TestRootOpeningIsPlayable(t *testing.T) {
	var b board.Board
	col := Root(&b, 4, ai, opp)
	assert.True(t, b.Playable(col), "got column %d", col)
}

func TestRootLastOpenColumn(t *testing.T) {
	// Only c7 is open and it already holds an A.
	b := mustParse(t, `
ABABAB.
ABABAB.
BABABA.
BABABA.
ABABAB.
ABABABA`)
	assert.Equal(t, 6, Root(&b, 3, ai, opp), "the last open column is always chosen")

	var full board.Board
	for col := 0; col < board.Columns; col++ {
		full.Lock(col)
	}
	assert.Equal(t, -1, Root(&full, 3, ai, opp))
}

func TestMinimaxTerminal(t *testing.T) {
	b := mustParse(t, `
.......
.......
.......
.......
.......
BBBB...`)
	got := Minimax(&b, 4, math.MinInt, math.MaxInt, true, ai, opp)
	assert.Equal(t, Evaluate(&b, ai, opp), got, "a won board is scored directly")
}

func TestFallback(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var b board.Board
	assert.Equal(t, 3, Fallback(&b, rng))

	b.Lock(3)
	assert.Equal(t, 2, Fallback(&b, rng))
	b.Lock(2)
	assert.Equal(t, 4, Fallback(&b, rng))
	b.Lock(4)
	for i := 0; i < 20; i++ {
		col := Fallback(&b, rng)
		assert.Contains(t, []int{0, 1, 5, 6}, col)
	}

	for col := 0; col < board.Columns; col++ {
		b.Lock(col)
	}
	assert.Equal(t, -1, Fallback(&b, rng))
}
