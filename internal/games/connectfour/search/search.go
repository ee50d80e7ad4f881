package search

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/duel-arcade/internal/games/connectfour/board"
)

// DefaultDepth is the search depth used when none is configured.
const DefaultDepth = 5

// Minimax returns the value of b with depth plies left. The ai player
// maximizes. Wins, draws, boards with no playable column and depth zero are
// all scored with Evaluate.
func Minimax(b *board.Board, depth, alpha, beta int, maximizing bool, ai, opp board.Cell) int {
	if _, won := b.CheckWin(); won || depth <= 0 || b.CheckDraw() {
		return Evaluate(b, ai, opp)
	}
	cols := b.PlayableColumns()
	if len(cols) == 0 {
		return Evaluate(b, ai, opp)
	}

	if maximizing {
		best := math.MinInt
		for _, col := range cols {
			child := b.Clone()
			_, _ = child.Place(col, ai)
			best = max(best, Minimax(&child, depth-1, alpha, beta, false, ai, opp))
			alpha = max(alpha, best)
			if beta <= alpha {
				break
			}
		}
		return best
	}

	best := math.MaxInt
	for _, col := range cols {
		child := b.Clone()
		_, _ = child.Place(col, opp)
		best = min(best, Minimax(&child, depth-1, alpha, beta, true, ai, opp))
		beta = min(beta, best)
		if beta <= alpha {
			break
		}
	}
	return best
}

// Root scores each playable column as the minimax value of dropping an ai
// piece there plus the column's potential, and returns the best. A column
// with no potential that already holds opponent pieces is only considered
// when nothing else is left. Returns -1 when no column is playable.
func Root(b *board.Board, depth int, ai, opp board.Cell) int {
	if depth < 1 {
		depth = 1
	}

	type candidate struct {
		col, score int
	}
	var preferred, skipped []candidate
	for _, col := range b.PlayableColumns() {
		child := b.Clone()
		_, _ = child.Place(col, ai)
		potential := ColumnPotential(&child, col, ai)
		c := candidate{col: col, score: Minimax(&child, depth-1, math.MinInt, math.MaxInt, false, ai, opp) + potential}
		if potential == 0 && b.CountInColumn(col, opp) > 0 {
			skipped = append(skipped, c)
			continue
		}
		preferred = append(preferred, c)
	}

	pool := preferred
	if len(pool) == 0 {
		pool = skipped
	}
	best, bestScore := -1, math.MinInt
	for _, c := range pool {
		if c.score > bestScore {
			best, bestScore = c.col, c.score
		}
	}
	if best < 0 {
		if cols := b.PlayableColumns(); len(cols) > 0 {
			return cols[0]
		}
	}
	return best
}

// BestMove takes an immediate win, otherwise blocks the opponent's first
// immediate win, otherwise searches. Returns -1 when no column is playable.
func BestMove(b *board.Board, ai, opp board.Cell, depth int) int {
	if wins := b.WinOpportunities(ai); len(wins) > 0 {
		return wins[0]
	}
	if threats := b.WinOpportunities(opp); len(threats) > 0 {
		return threats[0]
	}
	return Root(b, depth, ai, opp)
}

// centerOrder is the column preference of Fallback.
var centerOrder = [3]int{3, 2, 4}

// Fallback is the cheap move used when a search cannot run: the center
// column, then c3, then c5, else a random playable column. Returns -1 when
// no column is playable.
func Fallback(b *board.Board, rng *rand.Rand) int {
	for _, col := range centerOrder {
		if b.Playable(col) {
			return col
		}
	}
	cols := b.PlayableColumns()
	if len(cols) == 0 {
		return -1
	}
	return cols[rng.Intn(len(cols))]
}
