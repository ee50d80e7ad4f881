package tokens

import (
	"math/rand"

	"github.com/vovakirdan/duel-arcade/internal/games/connectfour/board"
)

// Situation is what the computer looks at when deciding on a token.
type Situation struct {
	BlockNeeded bool    // the opponent can win next move
	Fill        float64 // board fill ratio
	Own         int     // own pieces on the board
	Opp         int     // opponent pieces on the board
}

// Assess builds a Situation for the player holding own.
func Assess(b *board.Board, own board.Cell) Situation {
	opp := own.Opponent()
	return Situation{
		BlockNeeded: len(b.WinOpportunities(opp)) > 0,
		Fill:        b.FillRatio(),
		Own:         b.Count(own),
		Opp:         b.Count(opp),
	}
}

// ShouldUse reports whether the computer plays a held token now.
func ShouldUse(t Token, s Situation) bool {
	switch t {
	case Bomb, Ghost:
		return s.Fill >= 0.5
	case Lock:
		return s.BlockNeeded
	case Dice, Blind:
		return s.BlockNeeded || s.Opp > s.Own+4
	case Reverse:
		return s.Opp > s.Own && s.Fill > 0.35
	}
	return false
}

// WantsRoll reports whether the computer draws a token this turn: only with
// an empty hand and charges left, always when a block is needed and
// otherwise on a coin flip.
func WantsRoll(h Hand, blockNeeded bool, rng *rand.Rand) bool {
	if h.Held != nil || h.Charges <= 0 {
		return false
	}
	return blockNeeded || rng.Float64() < 0.5
}

// ColumnFor picks where to drop a token. Lock goes on the first threat, Bomb
// on the column with the most opponent pieces, Ghost on the center when it
// is open. ok is false when the regular move choice should be used.
func ColumnFor(t Token, b *board.Board, threats []int, opp board.Cell) (int, bool) {
	switch t {
	case Lock:
		if len(threats) > 0 {
			return threats[0], true
		}
	case Bomb:
		return mostOpponent(b, opp)
	case Ghost:
		if center := board.Columns / 2; b.Playable(center) {
			return center, true
		}
		return mostOpponent(b, opp)
	}
	return 0, false
}

func mostOpponent(b *board.Board, opp board.Cell) (int, bool) {
	best, most := 0, 0
	for _, col := range b.PlayableColumns() {
		if n := b.CountInColumn(col, opp); n > most {
			best, most = col, n
		}
	}
	return best, most > 0
}
