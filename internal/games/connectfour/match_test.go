package connectfour

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/duel-arcade/internal/clock"
	"github.com/vovakirdan/duel-arcade/internal/config"
	"github.com/vovakirdan/duel-arcade/internal/core"
	"github.com/vovakirdan/duel-arcade/internal/games/connectfour/board"
	"github.com/vovakirdan/duel-arcade/internal/games/connectfour/search"
	"github.com/vovakirdan/duel-arcade/internal/games/connectfour/tokens"
	"github.com/vovakirdan/duel-arcade/internal/registry"
)

const aiDelay = 10 * time.Millisecond

func newTestMatch(t *testing.T, v Variant, ai bool) (*Match, *clock.Manual, map[string]*core.MemSurface) {
	t.Helper()
	mem := make(map[string]*core.MemSurface)
	bound := make(map[string]core.Surface)
	for name, r := range Layout(80, 24) {
		s := core.NewMemSurface(r)
		mem[name], bound[name] = s, s
	}
	cfg := config.Default()
	cfg.ConnectFour.BlunderRate = 0
	cfg.ConnectFour.AIDelayMs = int(aiDelay / time.Millisecond)
	cfg.ConnectFour.Depth = 2

	clk := clock.NewManual()
	m, err := New(v, registry.Env{
		Clock:    clk,
		Surfaces: core.NewAdapter(bound),
		Rand:     rand.New(rand.NewSource(7)),
		Runtime:  core.RuntimeConfig{Width: 80, Height: 24, AI: ai},
		Config:   cfg,
	})
	require.NoError(t, err)
	t.Cleanup(m.Close)
	m.Start()
	return m, clk, mem
}

func setBoard(t *testing.T, m *Match, s string) {
	t.Helper()
	b, err := board.Parse(s)
	require.NoError(t, err)
	m.board = b
	m.Sync()
}

// boardOf returns an addressable copy of the match board.
func boardOf(m *Match) *board.Board {
	b := m.Board()
	return &b
}

func TestNewRequiresSurfacesAndClock(t *testing.T) {
	env := registry.Env{Clock: clock.NewManual(), Runtime: core.DefaultConfig(), Config: config.Default()}
	_, err := New(Classic, env)
	assert.ErrorIs(t, err, core.ErrMissingSurface)

	bound := make(map[string]core.Surface)
	for name, r := range Layout(80, 24) {
		if name != SurfaceDice {
			bound[name] = core.NewMemSurface(r)
		}
	}
	env.Surfaces = core.NewAdapter(bound)
	m, err := New(Classic, env)
	require.NoError(t, err, "classic does not need the dice surface")
	m.Close()

	_, err = New(Crazy, env)
	assert.ErrorIs(t, err, core.ErrMissingSurface)

	env.Clock = nil
	_, err = New(Classic, env)
	assert.ErrorIs(t, err, ErrNoClock)
}

func TestModesRegistered(t *testing.T) {
	for _, id := range []string{"connectfour-classic", "connectfour-crazy"} {
		mode, err := registry.Get(id)
		require.NoError(t, err, id)
		assert.Equal(t, "connectfour", mode.Family)
		assert.Empty(t, mode.SnapshotKey)
	}
}

func TestLayoutStacksFromBottom(t *testing.T) {
	lay := Layout(80, 24)
	bottom, top := lay[CellSurface(0, 0)], lay[CellSurface(0, board.Rows-1)]
	assert.Greater(t, bottom.Top, top.Top)

	for col := 0; col < board.Columns; col++ {
		r := lay[CellSurface(col, 0)]
		got, ok := ColumnAt(80, 24, int(r.Left))
		require.True(t, ok)
		assert.Equal(t, col, got)
	}
	_, ok := ColumnAt(80, 24, 0)
	assert.False(t, ok)
}

func TestClickAlternatesSeats(t *testing.T) {
	m, _, mem := newTestMatch(t, Classic, false)

	m.Handle(core.ColumnClick{Column: 0})
	m.Handle(core.ColumnClick{Column: 0})
	b := m.Board()
	assert.Equal(t, board.PlayerA, b.At(0, 0))
	assert.Equal(t, board.PlayerB, b.At(0, 1))
	assert.Equal(t, Seat1, m.Turn())

	assert.True(t, mem[CellSurface(0, 0)].HasClass("red"))
	assert.True(t, mem[CellSurface(0, 1)].HasClass("yellow"))
	assert.True(t, mem[CellSurface(0, 2)].HasClass("empty"))
}

func TestClickRejectsFullColumn(t *testing.T) {
	m, _, _ := newTestMatch(t, Classic, false)
	for i := 0; i < board.Rows; i++ {
		m.Click(2)
	}
	before, turn := m.Board(), m.Turn()

	m.Click(2)
	assert.Equal(t, before, m.Board())
	assert.Equal(t, turn, m.Turn())
	assert.Contains(t, m.Status().Lines, "Column 3 is not playable")
}

func TestVerticalWinEndsMatch(t *testing.T) {
	m, _, _ := newTestMatch(t, Classic, false)
	for i := 0; i < 3; i++ {
		m.Click(0)
		m.Click(1)
	}
	require.False(t, m.Over())
	m.Click(0)

	require.True(t, m.Over())
	assert.Equal(t, Seat1, m.Winner())
	res := m.Result()
	assert.Equal(t, core.OutcomeWin, res.Outcome)
	assert.Equal(t, 1, res.Score1)

	before := m.Board()
	m.Handle(core.ColumnClick{Column: 5})
	assert.Equal(t, before, m.Board(), "input is ignored after the end")
}

func TestSecondSeatWinIsLoss(t *testing.T) {
	m, _, _ := newTestMatch(t, Classic, false)
	setBoard(t, m, `
.......
.......
.......
.B.....
.BA....
.BAA...`)
	m.turn = Seat2
	m.Click(1)
	require.True(t, m.Over())
	assert.Equal(t, core.OutcomeLoss, m.Result().Outcome)
	assert.Equal(t, 1, m.Result().Score2)
}

func TestFullBoardIsDraw(t *testing.T) {
	m, _, _ := newTestMatch(t, Classic, false)
	setBoard(t, m, `
ABABAB.
ABABABA
BABABAB
BABABAB
ABABABA
ABABABA`)
	m.Click(6)
	require.True(t, m.Over())
	assert.Equal(t, -1, m.Winner())
	assert.Equal(t, core.OutcomeDraw, m.Result().Outcome)
}

func TestUnfinishedResultIsAbandoned(t *testing.T) {
	m, _, _ := newTestMatch(t, Classic, false)
	m.Click(3)
	for i := 0; i < 5; i++ {
		m.Tick()
	}
	res := m.Result()
	assert.Equal(t, core.OutcomeAbandoned, res.Outcome)
	assert.Equal(t, "connectfour-classic", res.GameID)
	assert.Equal(t, 5*config.Millis(config.Default().Pong.Gameplay.TickMs), res.Duration)
}

func TestAIBlocksImmediateThreat(t *testing.T) {
	m, clk, _ := newTestMatch(t, Classic, true)
	setBoard(t, m, `
.......
.......
.......
.......
AB.....
AB.....`)

	m.Handle(core.ColumnClick{Column: 0})
	require.True(t, m.Thinking())
	assert.Equal(t, Seat2, m.Turn())

	m.Handle(core.ColumnClick{Column: 4})
	assert.Equal(t, 0, boardOf(m).Height(4), "input is disabled while the computer moves")

	clk.Advance(aiDelay)
	b := m.Board()
	assert.Equal(t, board.PlayerB, b.At(0, 3))
	assert.Equal(t, Seat1, m.Turn())
	assert.False(t, m.Thinking())
}

func TestAITakesWin(t *testing.T) {
	m, clk, _ := newTestMatch(t, Classic, true)
	setBoard(t, m, `
.......
.......
.......
.B.....
.B.....
AB....A`)
	m.Click(0)
	clk.Advance(aiDelay)
	require.True(t, m.Over())
	assert.Equal(t, Seat2, m.Winner())
}

func TestAISearchReplyIsPlayed(t *testing.T) {
	m, clk, _ := newTestMatch(t, Classic, true)
	m.Click(3)
	clk.Advance(aiDelay)
	require.True(t, clk.Await(5*time.Second), "search reply is posted back to the clock")

	b := m.Board()
	assert.Equal(t, 1, b.Count(board.PlayerB))
	assert.Equal(t, Seat1, m.Turn())
	assert.False(t, m.Thinking())
}

func TestSuspendHoldsComputerMove(t *testing.T) {
	m, clk, _ := newTestMatch(t, Classic, true)
	m.Click(3)
	m.Suspend(true)
	clk.Advance(5 * time.Second)

	assert.Equal(t, 0, boardOf(m).Count(board.PlayerB), "no move while suspended")
	assert.Equal(t, Seat2, m.Turn())
	assert.True(t, m.Thinking())

	m.Suspend(false)
	require.True(t, clk.Await(5*time.Second), "released turn runs the search")
	assert.Equal(t, 1, boardOf(m).Count(board.PlayerB))
	assert.Equal(t, Seat1, m.Turn())
}

func TestSuspendHoldsSearchReply(t *testing.T) {
	m, _, _ := newTestMatch(t, Classic, true)
	m.Click(3)
	require.True(t, m.Thinking())

	m.Suspend(true)
	m.applySearch(m.gen, search.MoveResponse{BestColumnID: "c1"})
	assert.Equal(t, 0, boardOf(m).Count(board.PlayerB), "reply is held while suspended")

	m.Suspend(false)
	assert.Equal(t, board.PlayerB, boardOf(m).At(0, 0))
	assert.False(t, m.Thinking())
	assert.Equal(t, Seat1, m.Turn())
}

func TestLateSearchReplyIsDropped(t *testing.T) {
	m, clk, _ := newTestMatch(t, Classic, true)
	m.Click(3)
	clk.Advance(aiDelay)
	m.Close()

	clk.Await(5 * time.Second)
	assert.Equal(t, 0, boardOf(m).Count(board.PlayerB))
}

func TestClosedWorkerFallsBack(t *testing.T) {
	m, clk, _ := newTestMatch(t, Classic, true)
	m.worker.Close()

	m.Click(0)
	clk.Advance(aiDelay)
	b := m.Board()
	assert.Equal(t, board.PlayerB, b.At(3, 0), "fallback prefers the center column")
	assert.Equal(t, Seat1, m.Turn())
}

func TestRollArmsAndShowsDice(t *testing.T) {
	m, _, mem := newTestMatch(t, Crazy, false)
	dice := mem[SurfaceDice]
	glyph, ok := core.GlyphOf(dice.Classes())
	require.True(t, ok)
	assert.Equal(t, DiceIdle, glyph)

	m.Handle(core.RollClick{})
	h := m.Hand(Seat1)
	require.NotNil(t, h.Held)
	assert.False(t, h.Armed)
	glyph, _ = core.GlyphOf(dice.Classes())
	assert.Equal(t, h.Held.Glyph(), glyph)

	m.Handle(core.RollClick{})
	assert.True(t, m.Hand(Seat1).Armed)
	assert.True(t, dice.HasClass("armed"))
}

func TestClassicIgnoresRoll(t *testing.T) {
	m, _, _ := newTestMatch(t, Classic, false)
	m.Handle(core.RollClick{})
	assert.Nil(t, m.Hand(Seat1).Held)
}

func arm(m *Match, seat int, tok tokens.Token) {
	m.hands[seat] = tokens.Hand{Held: &tok, Armed: true, Charges: 2}
}

func TestLockedColumnRejectsOpponent(t *testing.T) {
	m, _, mem := newTestMatch(t, Crazy, false)
	arm(m, Seat1, tokens.Lock)

	m.Click(4)
	require.True(t, boardOf(m).Locked(4))
	assert.Equal(t, tokens.Locked, m.Debuff(Seat2).Kind)
	assert.True(t, mem[CellSurface(4, 3)].HasClass("locked"))

	m.Click(4)
	assert.Equal(t, Seat2, m.Turn(), "the locked column is rejected")
	assert.Equal(t, 1, boardOf(m).Height(4))

	m.Click(5)
	assert.False(t, boardOf(m).Locked(4), "the lock decays after the opponent's turn")
	assert.Equal(t, tokens.None, m.Debuff(Seat2).Kind)
}

func TestGhostSkipsOpponent(t *testing.T) {
	m, _, mem := newTestMatch(t, Crazy, false)
	arm(m, Seat1, tokens.Ghost)

	m.Click(3)
	assert.Equal(t, board.Special, boardOf(m).At(3, 0))
	assert.True(t, mem[CellSurface(3, 0)].HasClass("ghost"))
	assert.Equal(t, Seat1, m.Turn(), "the ghosted seat loses its turn")

	m.Click(0)
	assert.Equal(t, Seat2, m.Turn())
	assert.Equal(t, board.Empty, boardOf(m).At(3, 0), "ghost pieces vanish")
}

func TestBlindGreysPieces(t *testing.T) {
	m, _, mem := newTestMatch(t, Crazy, false)
	m.Click(0)
	arm(m, Seat2, tokens.Blind)
	m.Click(1)

	assert.True(t, mem[CellSurface(0, 0)].HasClass("blind"))
	assert.True(t, mem[CellSurface(1, 0)].HasClass("blind"))

	m.Click(2)
	assert.True(t, mem[CellSurface(0, 0)].HasClass("red"), "colors return after the blinded turn")
}

func TestStatusListsHandsAndDebuffs(t *testing.T) {
	m, _, _ := newTestMatch(t, Crazy, false)
	arm(m, Seat1, tokens.Dice)
	m.Click(0)

	st := m.Status()
	assert.Equal(t, 2, st.Turn)
	assert.Contains(t, st.Lines, "P2 dice")
	assert.Contains(t, st.Lines, "P1 played Dice")
}

func TestResizeMovesCells(t *testing.T) {
	m, _, mem := newTestMatch(t, Classic, false)
	m.Resize(120, 40)
	want := Layout(120, 40)[CellSurface(6, 5)]
	got := mem[CellSurface(6, 5)].Rect()
	assert.Equal(t, want.Left, got.Left)
	assert.Equal(t, want.Top, got.Top)
}
