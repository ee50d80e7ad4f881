package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/duel-arcade/internal/storage"
)

func seededStore(t *testing.T) storage.Backend {
	t.Helper()
	store := storage.NewMemory()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, rec := range []storage.MatchRecord{
		{GameID: "pong-classic", Outcome: "win", Score1: 10, Score2: 3, Duration: 95 * time.Second},
		{GameID: "pong-classic", Outcome: "loss", Score1: 7, Score2: 10, Duration: 2 * time.Minute},
		{GameID: "connectfour-classic", Outcome: "draw", Duration: time.Minute},
	} {
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Record(ctx, rec))
	}
	return store
}

func TestScoreboardLoadsSelectedMode(t *testing.T) {
	m := NewScoreboardModel(seededStore(t), "pong-classic", 100, 30)

	require.Equal(t, "pong-classic", m.games[m.gameCursor].ID)
	require.Len(t, m.results, 2)
	assert.Equal(t, "loss", m.results[0].Outcome, "newest first")
	require.NotNil(t, m.stats)
	assert.Equal(t, 2, m.stats.Played)
	assert.Equal(t, 10, m.stats.BestScore)

	view := m.View()
	assert.Contains(t, view, "MATCH HISTORY - Pong")
	assert.Contains(t, view, "Played 2")
}

func TestScoreboardSwitchesModes(t *testing.T) {
	m := NewScoreboardModel(seededStore(t), "", 100, 30)
	require.Equal(t, "connectfour-classic", m.games[0].ID)
	require.Len(t, m.results, 1)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(ScoreboardModel)
	assert.Equal(t, len(m.games)-1, m.gameCursor, "wraps to the last mode")
	assert.Equal(t, "pong-classic", m.games[m.gameCursor].ID)
	assert.Len(t, m.results, 2)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(ScoreboardModel)
	assert.Equal(t, 0, m.gameCursor)
}

func TestScoreboardBack(t *testing.T) {
	m := NewScoreboardModel(nil, "", 60, 20)
	assert.Contains(t, m.renderTableContent(), "Storage is disabled")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	m = next.(ScoreboardModel)
	assert.True(t, m.IsGoingBack())
	assert.Nil(t, cmd, "an embedded scoreboard does not quit the program")
}

func TestResultRows(t *testing.T) {
	rows := resultRows([]storage.MatchRecord{{
		Outcome:   "win",
		Score1:    10,
		Score2:    8,
		Duration:  125 * time.Second,
		CreatedAt: time.Now(),
	}})
	require.Len(t, rows, 1)
	assert.Equal(t, "win", rows[0][1])
	assert.Equal(t, "10 : 8", rows[0][2])
	assert.Equal(t, "2:05", rows[0][3])
}

func TestStatsLine(t *testing.T) {
	assert.Equal(t, "No matches played", statsLine(nil))
	line := statsLine(&storage.GameStats{Played: 3, Wins: 2, Losses: 1, BestScore: 10})
	assert.Contains(t, line, "Played 3")
	assert.Contains(t, line, "W 2  L 1  D 0")
	assert.Contains(t, line, "Best 10")
}
