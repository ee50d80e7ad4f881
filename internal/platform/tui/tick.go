// Package tui provides the Bubble Tea integration for the arcade platform.
// It renders match surfaces, maps terminal keys to match input and drives
// the menu, scoreboard and SSH entry points.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// frameRate is how often the terminal view is redrawn. The match itself runs
// on its own clock.
const frameRate = 30

// FrameMsg triggers a redraw and expires held keys.
type FrameMsg time.Time

// frameCmd returns a Bubble Tea command that sends the next frame message.
func frameCmd() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}
