package connectfour

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/duel-arcade/internal/clock"
	"github.com/vovakirdan/duel-arcade/internal/config"
	"github.com/vovakirdan/duel-arcade/internal/core"
	"github.com/vovakirdan/duel-arcade/internal/games/connectfour/board"
	"github.com/vovakirdan/duel-arcade/internal/games/connectfour/search"
	"github.com/vovakirdan/duel-arcade/internal/games/connectfour/tokens"
	"github.com/vovakirdan/duel-arcade/internal/registry"
)

// ErrNoClock is returned when a match is built without a scheduler.
var ErrNoClock = errors.New("connectfour: clock required")

// Seats. Seat 0 is always human and plays PlayerA.
const (
	Seat1 = 0
	Seat2 = 1
)

var pieces = [2]board.Cell{board.PlayerA, board.PlayerB}

// Match is a Connect-Four game. All methods run on the match clock; search
// results re-enter through clock.Post.
type Match struct {
	variant Variant
	cfg     config.ConnectFourConfig
	surf    *core.Adapter
	clock   clock.Scheduler
	log     *log.Logger
	rng     *rand.Rand
	tickMs  int

	board   board.Board
	turn    int
	ai      bool
	hands   [2]tokens.Hand
	effects tokens.State
	worker  *search.Worker

	thinking  bool
	suspended bool
	deferred  func() // computer move held back while suspended
	gen       int
	over      bool
	draw      bool
	winner    int
	ticks     int
	moves     int
	note      string
	width     int
	height    int
}

// New builds a match. It fails if a cell surface or the clock is missing.
func New(v Variant, env registry.Env) (*Match, error) {
	if env.Surfaces == nil {
		return nil, fmt.Errorf("connectfour: %w", core.ErrMissingSurface)
	}
	if err := env.Surfaces.Require(requiredSurfaces(v)...); err != nil {
		return nil, fmt.Errorf("connectfour: %w", err)
	}
	if env.Clock == nil {
		return nil, ErrNoClock
	}

	rng := env.Rand
	if rng == nil {
		rng = env.Runtime.Rand()
	}
	logger := env.Log
	if logger == nil {
		logger = log.New(io.Discard)
	}

	m := &Match{
		variant: v,
		cfg:     env.Config.ConnectFour,
		surf:    env.Surfaces,
		clock:   env.Clock,
		log:     logger,
		rng:     rng,
		tickMs:  core.Max(1, env.Config.Pong.Gameplay.TickMs),
		ai:      env.Runtime.AI,
		winner:  -1,
		width:   env.Runtime.Width,
		height:  env.Runtime.Height,
	}
	if m.ai {
		m.worker = search.NewWorker(logger.WithPrefix("search"))
	}
	return m, nil
}

// ID returns the mode id.
func (m *Match) ID() string {
	if m.variant == Crazy {
		return "connectfour-crazy"
	}
	return "connectfour-classic"
}

// Board returns a copy of the board.
func (m *Match) Board() board.Board { return m.board.Clone() }

// Turn returns the seat to move.
func (m *Match) Turn() int { return m.turn }

// Thinking reports whether the computer is choosing a move.
func (m *Match) Thinking() bool { return m.thinking }

// Hand returns a seat's token hand.
func (m *Match) Hand(seat int) tokens.Hand { return m.hands[seat&1] }

// Debuff returns a seat's active debuff.
func (m *Match) Debuff(seat int) tokens.Debuff { return m.effects.Debuff(seat) }

// Winner returns the winning seat, or -1.
func (m *Match) Winner() int { return m.winner }

// Start clears the board and gives seat 1 the first move.
func (m *Match) Start() {
	m.board = board.Board{}
	m.effects = tokens.State{}
	m.turn, m.winner, m.moves = Seat1, -1, 0
	m.over, m.draw, m.thinking = false, false, false
	m.deferred = nil
	m.gen++
	if m.variant == Crazy {
		charges := m.cfg.TokenCharges
		if charges <= 0 {
			charges = tokens.DefaultCharges
		}
		m.hands = [2]tokens.Hand{tokens.NewHand(charges), tokens.NewHand(charges)}
	}
	m.note = ""
	m.Sync()
}

// Tick counts match time.
func (m *Match) Tick() {
	if !m.over {
		m.ticks++
	}
}

// AITick is unused; the computer moves when its turn starts.
func (m *Match) AITick() {}

// Handle applies column clicks and token rolls for the human to move.
func (m *Match) Handle(ev core.Event) {
	if m.over || m.thinking || (m.ai && m.turn == Seat2) {
		return
	}
	switch e := ev.(type) {
	case core.ColumnClick:
		m.Click(e.Column)
	case core.RollClick:
		m.Roll()
	}
}

// Roll draws or arms a token for the seat to move.
func (m *Match) Roll() {
	if m.variant != Crazy || m.over {
		return
	}
	h := &m.hands[m.turn]
	tok, err := h.Roll(m.rng)
	switch {
	case errors.Is(err, tokens.ErrNoCharges):
		m.note = "No tokens left"
	case h.Armed:
		m.note = fmt.Sprintf("%s armed", tok)
	default:
		m.note = fmt.Sprintf("Rolled %s", tok)
	}
	m.Sync()
}

// Click drops a piece for the seat to move. A forced dice column overrides
// col. Unplayable columns are rejected without changing anything.
func (m *Match) Click(col int) {
	if m.over {
		return
	}
	seat := m.turn
	if forced, ok := m.effects.ForcedColumn(&m.board, seat, m.rng); ok {
		col = forced
	}
	if !m.board.Playable(col) {
		m.note = fmt.Sprintf("Column %d is not playable", col+1)
		m.Sync()
		return
	}

	piece := pieces[seat]
	tok, special := m.hands[seat].Consume()
	if special {
		piece = tok.Piece(piece)
	}
	row, err := m.board.Place(col, piece)
	if err != nil {
		// Playable was checked above, so this is a bug.
		m.log.Error("placement rejected", "column", board.ColumnID(col), "err", err)
		return
	}
	m.moves++
	m.note = ""
	if special {
		out := m.effects.Apply(&m.board, tok, seat, col, row)
		m.log.Debug("token played", "token", tok.String(), "seat", seat+1, "column", board.ColumnID(col), "cleared", out.Cleared)
		m.note = fmt.Sprintf("P%d played %s", seat+1, tok)
	}
	m.effects.EndTurn(&m.board, seat)

	if owner, won := m.board.CheckWin(); won {
		m.finish(seatOf(owner), false)
		return
	}
	if m.board.CheckDraw() {
		m.finish(-1, true)
		return
	}
	m.passTurn()
}

func seatOf(c board.Cell) int {
	if c == board.PlayerB {
		return Seat2
	}
	return Seat1
}

func (m *Match) finish(winner int, draw bool) {
	m.over, m.draw, m.winner = true, draw, winner
	m.thinking = false
	m.gen++
	switch {
	case draw:
		m.note = "Draw"
	default:
		m.note = fmt.Sprintf("Player %d wins", winner+1)
	}
	m.log.Info("connect four finished", "mode", m.ID(), "winner", winner+1, "draw", draw, "moves", m.moves)
	m.Sync()
}

// passTurn hands the move to the other seat, skipping a ghosted seat once.
func (m *Match) passTurn() {
	m.turn = 1 - m.turn
	if m.effects.BeginTurn(&m.board, m.turn) {
		m.note = fmt.Sprintf("P%d is ghosted and skips a turn", m.turn+1)
		m.turn = 1 - m.turn
		m.effects.BeginTurn(&m.board, m.turn)
	}
	m.Sync()
	if m.ai && m.turn == Seat2 {
		m.requestAI()
	}
}

func (m *Match) requestAI() {
	m.thinking = true
	m.gen++
	gen := m.gen
	m.clock.After(config.Millis(m.cfg.AIDelayMs), func() { m.aiTurn(gen) })
	m.Sync()
}

func (m *Match) stale(gen int) bool {
	return gen != m.gen || m.over
}

// Suspend holds the computer's pending move while the match is paused and
// plays it once released.
func (m *Match) Suspend(suspended bool) {
	m.suspended = suspended
	if suspended || m.deferred == nil {
		return
	}
	fn := m.deferred
	m.deferred = nil
	fn()
}

func (m *Match) aiTurn(gen int) {
	if m.stale(gen) {
		return
	}
	if m.suspended {
		m.deferred = func() { m.aiTurn(gen) }
		return
	}
	ai, opp := pieces[Seat2], pieces[Seat1]

	if m.variant == Crazy && m.effects.Debuff(Seat2).Kind == tokens.Blinded {
		m.playAI(m.randomColumn())
		return
	}
	if wins := m.board.WinOpportunities(ai); len(wins) > 0 {
		m.playAI(wins[0])
		return
	}
	threats := m.board.WinOpportunities(opp)
	if m.variant == Crazy {
		if col, ok := m.tokenMove(threats); ok {
			m.playAI(col)
			return
		}
	}
	if len(threats) > 0 {
		m.playAI(threats[0])
		return
	}
	if m.rng.Float64() < m.cfg.BlunderRate {
		m.playAI(m.randomColumn())
		return
	}
	m.searchAsync(gen)
}

// tokenMove runs the computer's token policy. It may arm a token without
// choosing a column, in which case the regular choice drops it.
func (m *Match) tokenMove(threats []int) (int, bool) {
	h := &m.hands[Seat2]
	sit := tokens.Assess(&m.board, pieces[Seat2])
	if tokens.WantsRoll(*h, sit.BlockNeeded, m.rng) {
		if tok, err := h.Roll(m.rng); err == nil {
			m.log.Debug("ai rolled", "token", tok.String())
		}
	}
	if h.Held == nil || !tokens.ShouldUse(*h.Held, sit) {
		return 0, false
	}
	tok, _ := h.Roll(m.rng)
	col, ok := tokens.ColumnFor(tok, &m.board, threats, pieces[Seat1])
	if !ok {
		return 0, false
	}
	if m.rng.Float64() < m.cfg.BlunderRate {
		col = m.randomColumn()
	}
	return col, true
}

// randomColumn picks any column, replaced by the first playable one when it
// cannot take a piece.
func (m *Match) randomColumn() int {
	col := m.rng.Intn(board.Columns)
	if m.board.Playable(col) {
		return col
	}
	if cols := m.board.PlayableColumns(); len(cols) > 0 {
		return cols[0]
	}
	return col
}

func (m *Match) searchAsync(gen int) {
	timeout := config.Millis(m.cfg.SearchTimeoutMs)
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	req := search.NewRequest(&m.board, pieces[Seat2], pieces[Seat1], m.cfg.Depth)
	reply, err := m.worker.Search(ctx, req)
	if err != nil {
		cancel()
		m.log.Warn("search unavailable, using fallback", "err", err)
		m.playAI(search.Fallback(&m.board, m.rng))
		return
	}

	go func() {
		defer cancel()
		var resp search.MoveResponse
		select {
		case resp = <-reply:
		case <-ctx.Done():
			resp = search.MoveResponse{Err: ctx.Err()}
		}
		m.clock.Post(func() { m.applySearch(gen, resp) })
	}()
}

func (m *Match) applySearch(gen int, resp search.MoveResponse) {
	if m.stale(gen) {
		m.log.Debug("dropping stale search result", "column", resp.BestColumnID)
		return
	}
	if m.suspended {
		m.deferred = func() { m.applySearch(gen, resp) }
		return
	}
	col := -1
	if resp.Err == nil {
		if c, err := board.ColumnIndex(resp.BestColumnID); err == nil && m.board.Playable(c) {
			col = c
		}
	}
	if col < 0 {
		m.log.Warn("search failed, using fallback", "column", resp.BestColumnID, "err", resp.Err)
		col = search.Fallback(&m.board, m.rng)
	}
	m.playAI(col)
}

func (m *Match) playAI(col int) {
	m.thinking = false
	if col < 0 || !m.board.Playable(col) {
		if cols := m.board.PlayableColumns(); len(cols) > 0 {
			col = cols[0]
		}
	}
	m.Click(col)
}

// Resize re-lays the board surfaces.
func (m *Match) Resize(width, height int) {
	m.width, m.height = width, height
	for name, r := range Layout(width, height) {
		m.surf.Place(name, r.Left, r.Top)
	}
	m.Sync()
}

// Over reports whether the game has been won or drawn.
func (m *Match) Over() bool { return m.over }

// Result reports the outcome from seat 1's point of view.
func (m *Match) Result() core.Result {
	res := core.Result{
		GameID:   m.ID(),
		Outcome:  core.OutcomeAbandoned,
		Duration: time.Duration(m.ticks*m.tickMs) * time.Millisecond,
	}
	switch {
	case m.draw:
		res.Outcome = core.OutcomeDraw
	case m.winner == Seat1:
		res.Outcome, res.Score1 = core.OutcomeWin, 1
	case m.winner == Seat2:
		res.Outcome, res.Score2 = core.OutcomeLoss, 1
	}
	return res
}

// Status returns the turn, token hands and debuffs.
func (m *Match) Status() registry.Status {
	st := registry.Status{Turn: m.turn + 1}
	if r := m.Result(); m.over {
		st.Score1, st.Score2 = r.Score1, r.Score2
	}

	switch {
	case m.over:
	case m.thinking:
		st.Lines = append(st.Lines, "Computer is thinking...")
	default:
		st.Lines = append(st.Lines, fmt.Sprintf("Player %d to move", m.turn+1))
	}
	if m.variant == Crazy {
		for seat, h := range m.hands {
			st.Lines = append(st.Lines, handLine(seat, h))
		}
		for seat := range m.hands {
			if d := m.effects.Debuff(seat); d.Kind != tokens.None {
				line := fmt.Sprintf("P%d %s", seat+1, d.Kind)
				if d.Kind == tokens.Locked {
					line += " " + board.ColumnID(d.Column)
				}
				st.Lines = append(st.Lines, line)
			}
		}
	}
	if m.note != "" {
		st.Lines = append(st.Lines, m.note)
	}
	return st
}

func handLine(seat int, h tokens.Hand) string {
	switch {
	case h.Held != nil && h.Armed:
		return fmt.Sprintf("P%d %c %s armed, %d left", seat+1, h.Held.Glyph(), *h.Held, h.Charges)
	case h.Held != nil:
		return fmt.Sprintf("P%d %c %s, %d left", seat+1, h.Held.Glyph(), *h.Held, h.Charges)
	default:
		return fmt.Sprintf("P%d no token, %d left", seat+1, h.Charges)
	}
}

// Close stops the search worker and drops any pending result.
func (m *Match) Close() {
	m.gen++
	m.thinking = false
	m.deferred = nil
	if m.worker != nil {
		m.worker.Close()
	}
}

// Sync writes every cell's style and the dice indicator.
func (m *Match) Sync() {
	blind := m.effects.Blinded()
	for col := 0; col < board.Columns; col++ {
		locked := m.board.Locked(col)
		for row := 0; row < board.Rows; row++ {
			m.surf.Style(CellSurface(col, row), m.cellClasses(m.board.At(col, row), locked, blind)...)
		}
	}

	if m.variant != Crazy {
		return
	}
	h := m.hands[m.turn]
	switch {
	case h.Held != nil:
		classes := []string{core.GlyphClass(h.Held.Glyph()), seatColor(m.turn)}
		if h.Armed {
			classes = append(classes, "armed")
		}
		m.surf.Style(SurfaceDice, classes...)
	case h.Charges <= 0:
		m.surf.Style(SurfaceDice, core.GlyphClass(DiceSpent), "locked")
	default:
		m.surf.Style(SurfaceDice, core.GlyphClass(DiceIdle), seatColor(m.turn))
	}
}

func seatColor(seat int) string {
	if seat == Seat2 {
		return "yellow"
	}
	return "red"
}

func (m *Match) cellClasses(c board.Cell, locked, blind bool) []string {
	switch c {
	case board.PlayerA, board.PlayerB:
		color := seatColor(seatOf(c))
		if blind {
			color = "blind"
		}
		return []string{core.GlyphClass(PieceChar), color}
	case board.Special:
		return []string{core.GlyphClass(tokens.Ghost.Glyph()), "ghost"}
	}
	if locked {
		return []string{core.GlyphClass(LockedChar), "locked"}
	}
	return []string{core.GlyphClass(EmptyChar), "empty"}
}
