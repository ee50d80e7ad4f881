// Package tokens implements the special tokens of crazy Connect-Four: the
// per-player hand that draws them, the debuffs they leave on the opponent,
// and the heuristics the computer uses to play them.
package tokens

import (
	"errors"
	"math/rand"

	"github.com/vovakirdan/duel-arcade/internal/games/connectfour/board"
)

// DefaultCharges is how many draws a player gets per match.
const DefaultCharges = 3

// ErrNoCharges is returned by Roll when the hand is empty and spent.
var ErrNoCharges = errors.New("tokens: no charges left")

// Token is a special token kind.
type Token int

const (
	Reverse Token = iota
	Blind
	Bomb
	Lock
	Ghost
	Dice
	tokenCount
)

// All returns every token kind.
func All() []Token {
	out := make([]Token, 0, tokenCount)
	for t := Token(0); t < tokenCount; t++ {
		out = append(out, t)
	}
	return out
}

func (t Token) String() string {
	switch t {
	case Reverse:
		return "Reverse"
	case Blind:
		return "Blind"
	case Bomb:
		return "Bomb"
	case Lock:
		return "Lock"
	case Ghost:
		return "Ghost"
	case Dice:
		return "Dice"
	default:
		return "?"
	}
}

// Glyph is the single-width rune drawn for a token piece.
func (t Token) Glyph() rune {
	switch t {
	case Reverse:
		return '↺'
	case Blind:
		return '≈'
	case Bomb:
		return '✸'
	case Lock:
		return '⊠'
	case Ghost:
		return '◌'
	case Dice:
		return '⚄'
	default:
		return '?'
	}
}

// Piece returns what is stored on the board when a player drops the token.
func (t Token) Piece(own board.Cell) board.Cell {
	if t == Ghost {
		return board.Special
	}
	return own
}

// Hand is what a player holds: at most one token, plus the draws left.
type Hand struct {
	Held    *Token
	Armed   bool
	Charges int
}

// NewHand returns an empty hand with n charges.
func NewHand(n int) Hand {
	return Hand{Charges: n}
}

// Roll draws a token when the hand is empty, spending one charge. Rolling
// while a token is held arms it for the next placement instead.
func (h *Hand) Roll(rng *rand.Rand) (Token, error) {
	if h.Held != nil {
		h.Armed = true
		return *h.Held, nil
	}
	if h.Charges <= 0 {
		return 0, ErrNoCharges
	}
	t := Token(rng.Intn(int(tokenCount)))
	h.Held = &t
	h.Charges--
	return t, nil
}

// Consume removes and returns an armed token.
func (h *Hand) Consume() (Token, bool) {
	if h.Held == nil || !h.Armed {
		return 0, false
	}
	t := *h.Held
	h.Held, h.Armed = nil, false
	return t, true
}

// Spent reports whether nothing is held and no draws remain.
func (h Hand) Spent() bool {
	return h.Held == nil && h.Charges <= 0
}

// DebuffKind is the effect a token leaves on its target.
type DebuffKind int

const (
	None DebuffKind = iota
	Blinded
	Locked
	Ghosted
	DiceForced
)

func (k DebuffKind) String() string {
	switch k {
	case Blinded:
		return "blinded"
	case Locked:
		return "locked"
	case Ghosted:
		return "ghosted"
	case DiceForced:
		return "dice"
	default:
		return "none"
	}
}

// Debuff is the effect currently on one player. Column is only meaningful for
// Locked. Source is the seat that caused it.
type Debuff struct {
	Kind    DebuffKind
	Column  int
	Turns   int
	Source  int
	skipped bool
}

// Outcome describes what applying a token did beyond the debuff.
type Outcome struct {
	Reversed bool // piece ownership swapped board-wide
	Cleared  int  // cells removed by a bomb
}

// State tracks the debuffs of both seats. Seats are 0 and 1.
type State struct {
	debuffs [2]Debuff
}

// Debuff returns the current debuff of a seat.
func (s *State) Debuff(seat int) Debuff {
	return s.debuffs[seat&1]
}

// Apply resolves a token dropped by seat at (col, row). It runs right after
// the placement, before the turn passes.
func (s *State) Apply(b *board.Board, t Token, seat, col, row int) Outcome {
	opp := 1 - seat&1
	var out Outcome
	switch t {
	case Reverse:
		// Cells change hands: each seat now owns what the other built.
		b.Swap(board.PlayerA, board.PlayerB)
		out.Reversed = true
	case Blind:
		s.debuffs[opp] = Debuff{Kind: Blinded, Turns: 1, Source: seat}
	case Bomb:
		for c := col - 1; c <= col+1; c++ {
			for r := row - 1; r <= row+1; r++ {
				if board.InBounds(c, r) && b.At(c, r) != board.Empty {
					b.Clear(c, r)
					out.Cleared++
				}
			}
			b.Compact(c)
		}
	case Lock:
		b.Lock(col)
		s.debuffs[opp] = Debuff{Kind: Locked, Column: col, Turns: 1, Source: seat}
	case Ghost:
		s.debuffs[opp] = Debuff{Kind: Ghosted, Turns: 1, Source: seat}
	case Dice:
		s.debuffs[opp] = Debuff{Kind: DiceForced, Turns: 1, Source: seat}
	}
	return out
}

// BeginTurn runs when seat's turn starts. A ghosted seat loses this turn
// (skip is true); on the turn after that, every ghost piece is removed and
// the debuff ends.
func (s *State) BeginTurn(b *board.Board, seat int) (skip bool) {
	d := &s.debuffs[seat&1]
	if d.Kind != Ghosted {
		return false
	}
	if !d.skipped {
		d.skipped = true
		return true
	}
	b.RemoveAll(board.Special)
	*d = Debuff{}
	return false
}

// EndTurn runs after seat has placed. Blinded, Locked and DiceForced decay
// here, so each lasts exactly one of the affected seat's own turns. Lock
// decay unlocks its column.
func (s *State) EndTurn(b *board.Board, seat int) {
	d := &s.debuffs[seat&1]
	switch d.Kind {
	case Blinded, Locked, DiceForced:
	default:
		return
	}
	d.Turns--
	if d.Turns > 0 {
		return
	}
	if d.Kind == Locked {
		b.Unlock(d.Column)
	}
	*d = Debuff{}
}

// ForcedColumn returns a random playable column when seat is under Dice.
func (s *State) ForcedColumn(b *board.Board, seat int, rng *rand.Rand) (int, bool) {
	if s.debuffs[seat&1].Kind != DiceForced {
		return 0, false
	}
	cols := b.PlayableColumns()
	if len(cols) == 0 {
		return 0, false
	}
	return cols[rng.Intn(len(cols))], true
}

// Blinded reports whether either seat is blinded. Blindness greys out every
// piece on screen.
func (s *State) Blinded() bool {
	return s.debuffs[0].Kind == Blinded || s.debuffs[1].Kind == Blinded
}
