package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/duel-arcade/internal/registry"
	"github.com/vovakirdan/duel-arcade/internal/storage"
)

const (
	minWidthForSidebar = 80  // Below this the mode list collapses into a tab line
	sidebarWidth       = 24
	maxResults         = 100
	loadTimeout        = 2 * time.Second
)

var (
	boardTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).MarginBottom(1)
	boxStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	activeTabStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 1)
	emptyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true).Padding(2, 4)
)

// ScoreboardModel is the Bubble Tea model for the match history screen.
type ScoreboardModel struct {
	games       []registry.Info // Modes with a history tab
	gameCursor  int             // Currently selected mode index
	store       storage.Backend
	results     []storage.MatchRecord
	stats       *storage.GameStats
	allStats    map[string]*storage.GameStats
	table       table.Model
	help        help.Model
	keys        ScoreboardKeyMap
	width       int
	height      int
	quitting    bool
	goingBack   bool // True if user pressed back (not quit)
	showSidebar bool // Whether to show game list sidebar
	err         error
	standalone  bool // Back quits the program
}

// NewScoreboardModel creates a scoreboard opened on gameID, or on the first
// mode when gameID is empty or unknown.
func NewScoreboardModel(store storage.Backend, gameID string, width, height int) ScoreboardModel {
	m := ScoreboardModel{
		games:       registry.List(),
		store:       store,
		keys:        DefaultScoreboardKeyMap(),
		help:        help.New(),
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	for i, g := range m.games {
		if g.ID == gameID {
			m.gameCursor = i
		}
	}

	m.table = m.createTable()
	if len(m.games) > 0 {
		m.loadResults(m.games[m.gameCursor].ID)
	}
	return m
}

// createTable creates a new table with appropriate columns.
func (m *ScoreboardModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Date", Width: 14},
		{Title: "Outcome", Width: 10},
		{Title: "Score", Width: 8},
		{Title: "Time", Width: 8},
	}

	tableWidth := m.width - 4 // Margins
	if m.showSidebar {
		tableWidth -= sidebarWidth + 3 // Sidebar + border + gap
	}
	if tableWidth > 48 {
		columns[0].Width = min(tableWidth-30, 20)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)), // Header, stats, help and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadResults loads the history and totals of a mode.
func (m *ScoreboardModel) loadResults(gameID string) {
	m.results, m.stats, m.allStats, m.err = nil, nil, nil, nil
	if m.store == nil {
		m.updateTableRows()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	results, err := m.store.Results(ctx, gameID, maxResults)
	if err != nil {
		m.err = err
		m.updateTableRows()
		return
	}
	m.results = results

	stats, err := m.store.Stats(ctx)
	if err != nil {
		m.err = err
	} else {
		m.stats, m.allStats = stats[gameID], stats
	}
	m.updateTableRows()
}

// updateTableRows updates the table with the current results.
func (m *ScoreboardModel) updateTableRows() {
	m.table.SetRows(resultRows(m.results))
	m.table.GotoTop()
}

// resultRows formats match records as table rows.
func resultRows(results []storage.MatchRecord) []table.Row {
	rows := make([]table.Row, len(results))
	for i, r := range results {
		rows[i] = table.Row{
			r.CreatedAt.Local().Format("Jan 02 15:04"),
			r.Outcome,
			fmt.Sprintf("%d : %d", r.Score1, r.Score2),
			formatDuration(r.Duration),
		}
	}
	return rows
}

// formatDuration renders a match length as m:ss.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

// statsLine summarizes the totals of a mode.
func statsLine(s *storage.GameStats) string {
	if s == nil {
		return "No matches played"
	}
	return fmt.Sprintf("Played %d  ·  W %d  L %d  D %d  ·  Abandoned %d  ·  Best %d",
		s.Played, s.Wins, s.Losses, s.Draws, s.Abandoned, s.BestScore)
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			if m.standalone {
				return m, tea.Quit
			}
			return m, nil

		case key.Matches(msg, m.keys.Next):
			m.switchMode(1)
			return m, nil

		case key.Matches(msg, m.keys.Prev):
			m.switchMode(-1)
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// switchMode moves the mode cursor by delta, wrapping around, and reloads.
func (m *ScoreboardModel) switchMode(delta int) {
	n := len(m.games)
	if n == 0 {
		return
	}
	m.gameCursor = ((m.gameCursor+delta)%n + n) % n
	m.loadResults(m.games[m.gameCursor].ID)
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	title := "MATCH HISTORY"
	if len(m.games) > 0 {
		title = fmt.Sprintf("MATCH HISTORY - %s", m.games[m.gameCursor].Title)
	}

	var body string
	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), "  ", boxStyle.Render(m.renderTableContent()))
	} else {
		body = centerText(m.renderTabs(), m.width) + "\n\n" +
			lipgloss.PlaceHorizontal(m.width, lipgloss.Center, boxStyle.Render(m.renderTableContent()))
	}

	return strings.Join([]string{
		boardTitleStyle.Render(centerText(title, m.width)),
		centerText(statsLine(m.stats), m.width),
		"",
		body,
		menuDimStyle.Render(m.help.View(m.keys)),
	}, "\n")
}

// renderSidebar lists the modes grouped by family with their match counts.
func (m ScoreboardModel) renderSidebar() string {
	var b strings.Builder
	family := ""
	for i, g := range m.games {
		if g.Family != family {
			family = g.Family
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(menuDimStyle.Render(family))
			b.WriteString("\n")
		}

		played := 0
		if s, ok := m.allStats[g.ID]; ok {
			played = s.Played
		}
		line := fmt.Sprintf("%-*s %3d", sidebarWidth-10, truncate(g.Title, sidebarWidth-10), played)
		if i == m.gameCursor {
			b.WriteString(menuActiveStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return boxStyle.Width(sidebarWidth).Render(strings.TrimRight(b.String(), "\n"))
}

// renderTabs shows the selected mode between arrows with its position.
func (m ScoreboardModel) renderTabs() string {
	if len(m.games) == 0 {
		return ""
	}
	return fmt.Sprintf("< %s >  %d/%d",
		activeTabStyle.Render(m.games[m.gameCursor].Title), m.gameCursor+1, len(m.games))
}

// truncate shortens s to n runes, marking the cut with a dot.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "."
}

// renderTableContent renders the table or empty message.
func (m ScoreboardModel) renderTableContent() string {
	switch {
	case m.store == nil:
		return emptyStyle.Render("Storage is disabled.")
	case m.err != nil:
		return emptyStyle.Render("Cannot load results:\n" + m.err.Error())
	case len(m.results) == 0:
		return emptyStyle.Render("No matches recorded yet.\nFinish a match to see it here!")
	}

	return m.table.View()
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// RunScoreboard runs the history screen on its own, opened on gameID.
func RunScoreboard(store storage.Backend, gameID string, width, height int) error {
	model := NewScoreboardModel(store, gameID, width, height)
	model.standalone = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
