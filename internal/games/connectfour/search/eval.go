// Package search picks Connect-Four moves: a window heuristic, depth-limited
// minimax with alpha-beta pruning, and a worker goroutine that runs searches
// off the match loop.
package search

import "github.com/vovakirdan/duel-arcade/internal/games/connectfour/board"

// Window scores.
const (
	ScoreFour  = 100
	ScoreThree = 10
	ScoreTwo   = 2
)

// Evaluate scores a board from ai's point of view by summing every window of
// four cells in the four line directions.
func Evaluate(b *board.Board, ai, opp board.Cell) int {
	score := 0
	for _, d := range board.Directions {
		score += evaluateLines(b, ai, opp, d[0], d[1])
	}
	return score
}

func evaluateLines(b *board.Board, ai, opp board.Cell, dx, dy int) int {
	score := 0
	for col := 0; col < board.Columns; col++ {
		for row := 0; row < board.Rows; row++ {
			endCol, endRow := col+3*dx, row+3*dy
			if !board.InBounds(endCol, endRow) {
				continue
			}
			score += scoreWindow(b, ai, opp, col, row, dx, dy)
		}
	}
	return score
}

func scoreWindow(b *board.Board, ai, opp board.Cell, col, row, dx, dy int) int {
	var own, theirs, empty int
	for i := 0; i < board.WinLen; i++ {
		switch b.At(col+i*dx, row+i*dy) {
		case ai:
			own++
		case opp:
			theirs++
		case board.Empty:
			empty++
		}
	}

	switch {
	case own == 4:
		return ScoreFour
	case theirs == 4:
		return -ScoreFour
	case own == 3 && empty == 1:
		return ScoreThree
	case theirs == 3 && empty == 1:
		return -ScoreThree
	case own == 2 && empty == 2:
		return ScoreTwo
	case theirs == 2 && empty == 2:
		return -ScoreTwo
	}
	return 0
}

// potentialDirections excludes vertical, which ColumnPotential scores on its own.
var potentialDirections = [3][2]int{{1, 0}, {1, 1}, {1, -1}}

// ColumnPotential rewards a column for the open lines it supports: a vertical
// run of four or more own pieces, plus twice the number of own cells on each
// line through an open or own cell that still has room for four.
func ColumnPotential(b *board.Board, col int, player board.Cell) int {
	potential := 0

	vertical := 0
	for row := 0; row < board.Rows; row++ {
		switch b.At(col, row) {
		case player:
			vertical++
		case board.Empty:
		default:
			vertical = 0
		}
	}
	if vertical >= 4 {
		potential += ScoreFour
	}

	for row := 0; row < board.Rows; row++ {
		if c := b.At(col, row); c == board.Empty || c == player {
			potential += positionPotential(b, col, row, player)
		}
	}
	return potential
}

func positionPotential(b *board.Board, col, row int, player board.Cell) int {
	potential := 0
	for _, d := range potentialDirections {
		space, count := 0, 0
		for i := -3; i <= 3; i++ {
			c, r := col+i*d[0], row+i*d[1]
			if !board.InBounds(c, r) {
				continue
			}
			switch b.At(c, r) {
			case board.Empty:
				space++
			case player:
				count++
			default:
				space, count = 0, 0
			}
		}
		if space+count >= 4 {
			potential += count * 2
		}
	}
	return potential
}
