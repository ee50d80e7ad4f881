package tui

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/duel-arcade/internal/clock"
	"github.com/vovakirdan/duel-arcade/internal/config"
	"github.com/vovakirdan/duel-arcade/internal/core"
	"github.com/vovakirdan/duel-arcade/internal/games/connectfour"
	"github.com/vovakirdan/duel-arcade/internal/games/connectfour/board"
	"github.com/vovakirdan/duel-arcade/internal/games/pong"
	"github.com/vovakirdan/duel-arcade/internal/match"
	"github.com/vovakirdan/duel-arcade/internal/registry"
	"github.com/vovakirdan/duel-arcade/internal/storage"
)

// Deps are the collaborators shared by every model of a terminal session.
type Deps struct {
	Store  storage.Backend // nil disables snapshots and results
	Config config.Config
	Logger *log.Logger
}

// Rows reserved around the field: the header above, the status line and
// the help bar below.
const (
	headerRows = 1
	footerRows = 2
)

// fieldSize returns the match field size for a terminal of width x height.
func fieldSize(width, height int) (int, int) {
	return core.Max(width, 1), core.Max(height-headerRows-footerRows, 1)
}

// GameModel runs one match session and draws its surfaces.
type GameModel struct {
	mode     registry.Mode
	title    string
	session  *match.Session
	cancel   context.CancelFunc
	surfaces map[string]*core.MemSurface
	screen   *core.Screen
	keys     GameKeyMap
	help     help.Model
	held     *heldKeys
	left     *atomic.Bool
	cursor   int
	width    int
	height   int

	standalone bool
	quitting   bool
	backToMenu bool
	result     core.Result
}

// NewGameModel builds the surfaces for mode, starts a match clock and wraps
// a new session. The match begins once the model is initialized.
func NewGameModel(mode registry.Mode, deps Deps, rc core.RuntimeConfig) (GameModel, error) {
	fw, fh := fieldSize(rc.Width, rc.Height)
	surfaces := make(map[string]*core.MemSurface)
	bound := make(map[string]core.Surface)
	for name, r := range mode.Layout(fw, fh) {
		s := core.NewMemSurface(r)
		surfaces[name] = s
		bound[name] = s
	}

	loop := clock.NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = loop.Run(ctx) }()

	field := rc
	field.Width, field.Height = fw, fh

	left := new(atomic.Bool)
	opts := match.Options{
		Clock:     loop,
		Surfaces:  core.NewAdapter(bound),
		Navigator: match.NavigatorFunc(func() { left.Store(true) }),
		Logger:    deps.Logger,
		Rand:      rc.Rand(),
		Runtime:   field,
		Config:    deps.Config,
	}
	if deps.Store != nil {
		opts.Store, opts.Recorder = deps.Store, deps.Store
	}
	session, err := match.New(mode, opts)
	if err != nil {
		cancel()
		return GameModel{}, err
	}

	title := mode.Title
	if rc.AI {
		title += " vs CPU"
	}
	h := help.New()
	h.Width = rc.Width
	return GameModel{
		mode:     mode,
		title:    title,
		session:  session,
		cancel:   cancel,
		surfaces: surfaces,
		screen:   core.NewScreen(rc.Width, core.Max(rc.Height-1, 1)),
		keys:     DefaultGameKeyMap(mode.Family, mode.ID == "connectfour-crazy"),
		help:     h,
		held:     newHeldKeys(),
		left:     left,
		cursor:   board.Columns / 2,
		width:    rc.Width,
		height:   rc.Height,
	}, nil
}

// Init starts the match and the redraw loop.
func (m GameModel) Init() tea.Cmd {
	m.session.Start()
	return frameCmd()
}

// Update handles messages.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case FrameMsg:
		return m.handleFrame(time.Time(msg))
	}
	return m, nil
}

func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	in := m.keys.Translate(msg)
	switch in.Action {
	case GameActionQuit:
		m.Close()
		m.quitting = true
		return m, tea.Quit
	case GameActionExit:
		m.session.Exit()
	case GameActionPause:
		m.release(m.held.releaseAll())
		m.session.Input(core.KeyEvent{Key: core.KeyPause, Down: true})
	case GameActionHold:
		m.release(m.held.press(in.Key, time.Now()))
	case GameActionColumn:
		m.cursor = in.Column
		m.session.Input(core.ColumnClick{Column: in.Column})
	case GameActionCursor:
		m.cursor = core.Clamp(m.cursor+in.Delta, 0, board.Columns-1)
	case GameActionDrop:
		m.session.Input(core.ColumnClick{Column: m.cursor})
	case GameActionRoll:
		m.session.Input(core.RollClick{})
	}
	return m, nil
}

func (m GameModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode.Family != "connectfour" || msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	fw, fh := fieldSize(m.width, m.height)
	if col, ok := connectfour.ColumnAt(fw, fh, msg.X); ok {
		m.cursor = col
		m.session.Input(core.ColumnClick{Column: col})
	}
	return m, nil
}

func (m GameModel) handleFrame(now time.Time) (tea.Model, tea.Cmd) {
	m.release(m.held.expire(now))

	select {
	case <-m.session.Done():
		m.cancel()
		if m.left.Load() {
			m.backToMenu = true
			m.result = m.session.View().Result
			if m.standalone {
				return m, tea.Quit
			}
			return m, nil
		}
	default:
	}
	return m, frameCmd()
}

// release forwards key transitions to the session.
func (m GameModel) release(events []core.Event) {
	for _, ev := range events {
		m.session.Input(ev)
	}
}

// resize lays the surfaces out for the new terminal size and rescales the
// match.
func (m *GameModel) resize(width, height int) {
	m.width, m.height = width, height
	fw, fh := fieldSize(width, height)
	for name, r := range m.mode.Layout(fw, fh) {
		if s, ok := m.surfaces[name]; ok {
			s.SetSize(r.Width, r.Height)
		}
	}
	m.screen.Resize(width, core.Max(height-1, 1))
	m.help.Width = width
	m.session.Resize(fw, fh)
}

// Close persists and releases the match without returning to the menu.
func (m GameModel) Close() {
	m.session.Close()
	m.cancel()
}

// View renders the header, the field, the status line and the key help.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}
	v := m.session.View()
	s := m.screen
	s.Clear()

	_, fh := fieldSize(m.width, m.height)
	if m.mode.Family == "pong" {
		for y := 0; y < fh; y += 2 {
			s.SetColored(s.Width()/2, headerRows+y, pong.NetChar, core.ColorGray)
		}
	}
	DrawSurfaces(s, m.surfaces, headerRows)
	if m.mode.Family == "connectfour" && v.Input {
		m.drawCursor(s)
	}

	s.DrawText(1, 0, m.title, core.ColorCyan)
	s.DrawTextCentered(0, fmt.Sprintf("P1 %d : %d P2", v.Status.Score1, v.Status.Score2), core.ColorWhite)
	phase := v.Phase.String()
	s.DrawText(s.Width()-len(phase)-1, 0, phase, core.ColorGray)

	mid := headerRows + fh/2
	switch {
	case v.Countdown != "":
		s.DrawTextCentered(mid, v.Countdown, core.ColorYellow)
	case v.Phase == match.PhasePaused:
		msg := "PAUSED - press p to resume"
		if v.Restored {
			msg = "Match restored - press p to continue"
		}
		s.DrawTextCentered(mid, msg, core.ColorYellow)
	}

	s.DrawText(1, s.Height()-1, strings.Join(v.Status.Lines, "  ·  "), core.ColorDefault)
	return RenderScreen(s) + "\n" + m.help.View(m.keys)
}

// drawCursor marks the selected column above the board.
func (m GameModel) drawCursor(s *core.Screen) {
	top, ok := m.surfaces[connectfour.CellSurface(m.cursor, board.Rows-1)]
	if !ok {
		return
	}
	r := top.Rect()
	s.SetColored(int(r.CenterX()), headerRows+int(r.Top)-1, '▼', core.ColorCyan)
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true once the match ended or the player left it.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// Result returns the final result once BackToMenu is true.
func (m GameModel) Result() core.Result {
	return m.result
}

// Run plays a single match in the terminal and returns its result.
func Run(mode registry.Mode, deps Deps, rc core.RuntimeConfig) (core.Result, error) {
	model, err := NewGameModel(mode, deps, rc)
	if err != nil {
		return core.Result{}, err
	}
	model.standalone = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	final, err := p.Run()
	if err != nil {
		model.Close()
		return core.Result{}, err
	}
	gm, ok := final.(GameModel)
	if !ok {
		return core.Result{}, nil
	}
	return gm.Result(), nil
}
