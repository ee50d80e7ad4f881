package tokens

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/duel-arcade/internal/games/connectfour/board"
)

func mustParse(t *testing.T, s string) board.Board {
	t.Helper()
	b, err := board.Parse(s)
	require.NoError(t, err)
	return b
}

func TestHandRoll(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	h := NewHand(DefaultCharges)

	first, err := h.Roll(rng)
	require.NoError(t, err)
	require.NotNil(t, h.Held)
	assert.Equal(t, first, *h.Held)
	assert.Equal(t, 2, h.Charges)
	assert.False(t, h.Armed)

	_, ok := h.Consume()
	assert.False(t, ok, "an unarmed token is not consumed")

	again, err := h.Roll(rng)
	require.NoError(t, err)
	assert.Equal(t, first, again, "rolling while holding arms the held token")
	assert.True(t, h.Armed)
	assert.Equal(t, 2, h.Charges, "arming does not spend a charge")

	used, ok := h.Consume()
	require.True(t, ok)
	assert.Equal(t, first, used)
	assert.Nil(t, h.Held)

	for i := 0; i < 2; i++ {
		_, err := h.Roll(rng)
		require.NoError(t, err)
		h.Held = nil
	}
	assert.True(t, h.Spent())
	_, err = h.Roll(rng)
	assert.ErrorIs(t, err, ErrNoCharges)
}

func TestRollCoversEveryToken(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	seen := map[Token]bool{}
	for i := 0; i < 500; i++ {
		h := NewHand(1)
		tok, err := h.Roll(rng)
		require.NoError(t, err)
		seen[tok] = true
	}
	assert.Len(t, seen, len(All()))
}

func TestReverseSwapsOwnership(t *testing.T) {
	b := mustParse(t, `
.......
.......
.......
.......
B......
AA*....`)
	var s State
	out := s.Apply(&b, Reverse, 0, 0, 1)
	assert.True(t, out.Reversed)
	assert.Equal(t, board.PlayerB, b.At(0, 0))
	assert.Equal(t, board.PlayerA, b.At(0, 1))
	assert.Equal(t, board.Special, b.At(2, 0))
	assert.Equal(t, None, s.Debuff(1).Kind)
}

func TestBombClearsNeighborhood(t *testing.T) {
	b := mustParse(t, `
.......
.......
AB.....
BAB....
ABAB...
BABAB..`)
	var s State
	// Placement at c2 row 2 clears c1..c3 rows 1..3.
	out := s.Apply(&b, Bomb, 0, 1, 2)
	assert.Equal(t, 8, out.Cleared)
	assert.Equal(t, board.PlayerB, b.At(0, 0))
	assert.Equal(t, board.Empty, b.At(0, 1))
	assert.Equal(t, board.PlayerA, b.At(1, 0))
	assert.Equal(t, board.Empty, b.At(1, 1))
	assert.Equal(t, board.PlayerB, b.At(2, 0))
	assert.Equal(t, 2, b.Height(3), "columns outside the blast are untouched")
}

func TestBombCompactsFloatingPieces(t *testing.T) {
	b := mustParse(t, `
.......
A......
B......
A......
B......
A......`)
	var s State
	s.Apply(&b, Bomb, 1, 0, 1)
	assert.Equal(t, board.PlayerB, b.At(0, 0), "pieces above the blast fall to the bottom")
	assert.Equal(t, board.PlayerA, b.At(0, 1))
	assert.Equal(t, 2, b.Height(0))
}

func TestLockDecaysAfterOpponentTurn(t *testing.T) {
	var b board.Board
	var s State

	s.Apply(&b, Lock, 0, 3, 0)
	assert.True(t, b.Locked(3))
	d := s.Debuff(1)
	assert.Equal(t, Locked, d.Kind)
	assert.Equal(t, 3, d.Column)
	assert.Equal(t, 0, d.Source)

	// The locker's own turn does not decay the debuff.
	s.EndTurn(&b, 0)
	assert.True(t, b.Locked(3))

	assert.False(t, s.BeginTurn(&b, 1))
	assert.NotContains(t, b.WinOpportunities(board.PlayerB), 3)
	s.EndTurn(&b, 1)
	assert.False(t, b.Locked(3))
	assert.Equal(t, None, s.Debuff(1).Kind)
}

func TestOneTurnDebuffs(t *testing.T) {
	for _, tok := range []Token{Blind, Dice} {
		t.Run(tok.String(), func(t *testing.T) {
			var b board.Board
			var s State
			s.Apply(&b, tok, 1, 2, 0)
			assert.NotEqual(t, None, s.Debuff(0).Kind)
			assert.Equal(t, 1, s.Debuff(0).Turns)

			s.EndTurn(&b, 1)
			assert.NotEqual(t, None, s.Debuff(0).Kind, "only the affected seat decays it")
			s.EndTurn(&b, 0)
			assert.Equal(t, None, s.Debuff(0).Kind)
		})
	}
}

func TestBlindIsVisualOnly(t *testing.T) {
	b := mustParse(t, `
.......
.......
.......
.......
.......
AB.....`)
	before := b
	var s State
	s.Apply(&b, Blind, 0, 1, 0)
	assert.True(t, s.Blinded())
	assert.Equal(t, before, b)
}

func TestGhostSkipsThenVanishes(t *testing.T) {
	var b board.Board
	var s State

	row, err := b.Place(3, Ghost.Piece(board.PlayerA))
	require.NoError(t, err)
	_, _ = b.Place(3, board.PlayerB)
	s.Apply(&b, Ghost, 0, 3, row)
	assert.Equal(t, Ghosted, s.Debuff(1).Kind)

	assert.True(t, s.BeginTurn(&b, 1), "the ghosted seat loses its next turn")
	assert.Equal(t, board.Special, b.At(3, 0))

	assert.False(t, s.BeginTurn(&b, 0))
	s.EndTurn(&b, 0)

	assert.False(t, s.BeginTurn(&b, 1))
	assert.Equal(t, board.PlayerB, b.At(3, 0), "ghost pieces vanish and the column compacts")
	assert.Equal(t, 1, b.Height(3))
	assert.Equal(t, None, s.Debuff(1).Kind)
}

func TestForcedColumn(t *testing.T) {
	var b board.Board
	var s State
	rng := rand.New(rand.NewSource(4))

	_, ok := s.ForcedColumn(&b, 1, rng)
	assert.False(t, ok)

	s.Apply(&b, Dice, 0, 0, 0)
	for col := 0; col < board.Columns; col++ {
		if col != 5 {
			b.Lock(col)
		}
	}
	col, ok := s.ForcedColumn(&b, 1, rng)
	require.True(t, ok)
	assert.Equal(t, 5, col)
}

func TestGlyphsAndNames(t *testing.T) {
	seen := map[rune]bool{}
	for _, tok := range All() {
		assert.NotEqual(t, '?', tok.Glyph())
		assert.NotEqual(t, "?", tok.String())
		seen[tok.Glyph()] = true
	}
	assert.Len(t, seen, len(All()), "glyphs are distinct")
	assert.Equal(t, board.Special, Ghost.Piece(board.PlayerA))
	assert.Equal(t, board.PlayerB, Bomb.Piece(board.PlayerB))
}
