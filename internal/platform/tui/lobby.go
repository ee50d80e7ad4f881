package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/duel-arcade/internal/core"
	"github.com/vovakirdan/duel-arcade/internal/registry"
)

type screen int

const (
	screenMenu screen = iota
	screenGame
	screenScores
)

// activeMatch remembers the match of a terminal session so it can be closed
// when the program stops underneath it.
type activeMatch struct {
	mu    sync.Mutex
	close func()
}

func (a *activeMatch) set(close func()) {
	a.mu.Lock()
	a.close = close
	a.mu.Unlock()
}

// Close persists and releases the running match, if any.
func (a *activeMatch) Close() {
	a.mu.Lock()
	fn := a.close
	a.close = nil
	a.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// SessionModel manages the full arcade flow: menu -> game -> menu, with the
// match history reachable from the menu. It is the top-level model for both
// local and SSH sessions.
type SessionModel struct {
	deps     Deps
	config   core.RuntimeConfig
	username string
	screen   screen
	menu     MenuModel
	game     *GameModel
	scores   *ScoreboardModel
	active   *activeMatch
	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(deps Deps, cfg core.RuntimeConfig, username string) SessionModel {
	return SessionModel{
		deps:     deps,
		config:   cfg,
		username: username,
		menu:     NewMenuModel(cfg),
		active:   &activeMatch{},
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.Width = wsm.Width
		m.config.Height = wsm.Height
	}

	switch m.screen {
	case screenGame:
		return m.updateGame(msg)
	case screenScores:
		return m.updateScores(msg)
	default:
		return m.updateMenu(msg)
	}
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.menu.WantsScoreboard() {
		gameID := m.currentMode()
		sb := NewScoreboardModel(m.deps.Store, gameID, m.config.Width, m.config.Height)
		m.scores = &sb
		m.screen = screenScores
		m.menu.openScoreboard = false
		return m, sb.Init()
	}

	if selected := m.menu.Selected(); selected != nil {
		return m.startGame(selected.ID)
	}
	return m, cmd
}

func (m SessionModel) currentMode() string {
	if len(m.menu.items) == 0 {
		return ""
	}
	return m.menu.items[m.menu.cursor].ID
}

// menuConfig is the runtime config kept across menu rebuilds.
func (m SessionModel) menuConfig() core.RuntimeConfig {
	cfg := m.config
	cfg.AI = m.menu.Config().AI
	return cfg
}

func (m SessionModel) startGame(id string) (tea.Model, tea.Cmd) {
	cfg := m.menuConfig()
	m.menu = NewMenuModel(cfg).WithCursor(id)

	mode, err := registry.Get(id)
	if err != nil {
		return m, nil
	}
	gm, err := NewGameModel(mode, m.deps, cfg)
	if err != nil {
		if m.deps.Logger != nil {
			m.deps.Logger.Error("cannot start match", "game", id, "user", m.username, "err", err)
		}
		return m, nil
	}
	m.active.set(gm.Close)
	m.game = &gm
	m.screen = screenGame
	return m, gm.Init()
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.game.Update(msg)
	if gameModel, ok := newModel.(GameModel); ok {
		m.game = &gameModel
	}

	if m.game.IsQuitting() {
		m.active.set(nil)
		m.quitting = true
		return m, tea.Quit
	}

	if m.game.BackToMenu() {
		m.active.set(nil)
		m.menu = NewMenuModel(m.menuConfig()).
			WithCursor(m.game.mode.ID).
			WithNotice(m.game.Result())
		m.game = nil
		m.screen = screenMenu
		return m, m.menu.Init()
	}
	return m, cmd
}

// updateScores handles updates when the match history is shown.
func (m SessionModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.scores.Update(msg)
	if sb, ok := newModel.(ScoreboardModel); ok {
		m.scores = &sb
	}

	if m.scores.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.scores.IsGoingBack() {
		m.scores = nil
		m.menu = NewMenuModel(m.menuConfig()).WithCursor(m.currentMode())
		m.screen = screenMenu
		return m, m.menu.Init()
	}
	return m, cmd
}

// View renders the current screen.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	switch m.screen {
	case screenGame:
		return m.game.View()
	case screenScores:
		return m.scores.View()
	default:
		return m.menu.View()
	}
}

// Close releases the running match, if any.
func (m SessionModel) Close() {
	m.active.Close()
}

// RunArcade runs the lobby loop in the local terminal until the player quits.
func RunArcade(deps Deps, cfg core.RuntimeConfig) error {
	model := NewSessionModel(deps, cfg, "local")
	defer model.Close()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
