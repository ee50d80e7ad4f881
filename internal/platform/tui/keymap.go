package tui

import (
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/duel-arcade/internal/core"
)

// holdDuration is how long a movement key stays down after its last press.
// Terminals report key repeats but never releases.
const holdDuration = 250 * time.Millisecond

// GameAction is what a key press means to a running match.
type GameAction int

const (
	GameActionNone GameAction = iota
	GameActionHold            // Movement key pressed, see GameInput.Key
	GameActionColumn          // Drop into GameInput.Column
	GameActionCursor          // Move the column cursor by GameInput.Delta
	GameActionDrop            // Drop into the cursor column
	GameActionRoll
	GameActionPause
	GameActionExit
	GameActionQuit
)

// GameInput is a translated key press.
type GameInput struct {
	Action GameAction
	Key    core.Key
	Column int
	Delta  int
}

// GameKeyMap defines the in-match key bindings. Which ones apply depends on
// the mode family.
type GameKeyMap struct {
	P1Up   key.Binding
	P1Down key.Binding
	P2Up   key.Binding
	P2Down key.Binding
	Column key.Binding
	Left   key.Binding
	Right  key.Binding
	Drop   key.Binding
	Roll   key.Binding
	Pause  key.Binding
	Back   key.Binding
	Quit   key.Binding

	family string
	crazy  bool
}

// DefaultGameKeyMap returns the bindings for a mode family. crazy enables
// the roll key.
func DefaultGameKeyMap(family string, crazy bool) GameKeyMap {
	return GameKeyMap{
		P1Up:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "P1 up")),
		P1Down: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "P1 down")),
		P2Up:   key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "P2 up")),
		P2Down: key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "P2 down")),
		Column: key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7"), key.WithHelp("1-7", "drop")),
		Left:   key.NewBinding(key.WithKeys("left", "a"), key.WithHelp("←/→", "column")),
		Right:  key.NewBinding(key.WithKeys("right", "d")),
		Drop:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop")),
		Roll:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "roll/arm")),
		Pause:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Back:   key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc", "leave")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		family: family,
		crazy:  crazy,
	}
}

// ShortHelp implements help.KeyMap.
func (k GameKeyMap) ShortHelp() []key.Binding {
	var keys []key.Binding
	switch k.family {
	case "connectfour":
		keys = append(keys, k.Column, k.Left, k.Drop)
		if k.crazy {
			keys = append(keys, k.Roll)
		}
	default:
		keys = append(keys, k.P1Up, k.P1Down, k.P2Up, k.P2Down)
	}
	return append(keys, k.Pause, k.Back, k.Quit)
}

// FullHelp implements help.KeyMap.
func (k GameKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// Translate maps a key message to a match input.
func (k GameKeyMap) Translate(msg tea.KeyMsg) GameInput {
	switch {
	case key.Matches(msg, k.Quit):
		return GameInput{Action: GameActionQuit}
	case key.Matches(msg, k.Back):
		return GameInput{Action: GameActionExit}
	case key.Matches(msg, k.Pause):
		return GameInput{Action: GameActionPause}
	}

	if k.family == "connectfour" {
		switch {
		case key.Matches(msg, k.Column):
			n, err := strconv.Atoi(msg.String())
			if err != nil {
				return GameInput{}
			}
			return GameInput{Action: GameActionColumn, Column: n - 1}
		case key.Matches(msg, k.Left):
			return GameInput{Action: GameActionCursor, Delta: -1}
		case key.Matches(msg, k.Right):
			return GameInput{Action: GameActionCursor, Delta: 1}
		case key.Matches(msg, k.Drop):
			return GameInput{Action: GameActionDrop}
		case k.crazy && key.Matches(msg, k.Roll):
			return GameInput{Action: GameActionRoll}
		}
		return GameInput{}
	}

	switch {
	case key.Matches(msg, k.P1Up):
		return GameInput{Action: GameActionHold, Key: core.KeyW}
	case key.Matches(msg, k.P1Down):
		return GameInput{Action: GameActionHold, Key: core.KeyS}
	case key.Matches(msg, k.P2Up):
		return GameInput{Action: GameActionHold, Key: core.KeyArrowUp}
	case key.Matches(msg, k.P2Down):
		return GameInput{Action: GameActionHold, Key: core.KeyArrowDown}
	}
	return GameInput{}
}

var opposite = map[core.Key]core.Key{
	core.KeyW:         core.KeyS,
	core.KeyS:         core.KeyW,
	core.KeyArrowUp:   core.KeyArrowDown,
	core.KeyArrowDown: core.KeyArrowUp,
}

// heldKeys emulates key-up transitions for terminals.
type heldKeys struct {
	until map[core.Key]time.Time
}

func newHeldKeys() *heldKeys {
	return &heldKeys{until: make(map[core.Key]time.Time)}
}

// press records a press at now. It returns the events to deliver: a release
// of the opposite key if it was held, and a key-down if k was up.
func (h *heldKeys) press(k core.Key, now time.Time) []core.Event {
	var out []core.Event
	if o, ok := opposite[k]; ok {
		if _, held := h.until[o]; held {
			delete(h.until, o)
			out = append(out, core.KeyEvent{Key: o})
		}
	}
	if _, held := h.until[k]; !held {
		out = append(out, core.KeyEvent{Key: k, Down: true})
	}
	h.until[k] = now.Add(holdDuration)
	return out
}

// expire releases every key whose hold ran out by now.
func (h *heldKeys) expire(now time.Time) []core.Event {
	var keys []core.Key
	for k, t := range h.until {
		if !now.Before(t) {
			keys = append(keys, k)
		}
	}
	return h.release(keys)
}

// releaseAll releases every held key.
func (h *heldKeys) releaseAll() []core.Event {
	keys := make([]core.Key, 0, len(h.until))
	for k := range h.until {
		keys = append(keys, k)
	}
	return h.release(keys)
}

func (h *heldKeys) release(keys []core.Key) []core.Event {
	slices.Sort(keys)
	out := make([]core.Event, 0, len(keys))
	for _, k := range keys {
		delete(h.until, k)
		out = append(out, core.KeyEvent{Key: k})
	}
	return out
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionToggleAI
	MenuActionScoreboard
	MenuActionBack
	MenuActionQuit
)

// MenuKeyMap defines the menu key bindings.
type MenuKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	ToggleAI key.Binding
	Scores   key.Binding
	Quit     key.Binding
}

// DefaultMenuKeyMap returns the default menu bindings.
func DefaultMenuKeyMap() MenuKeyMap {
	return MenuKeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "w", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "s", "j"), key.WithHelp("↓/j", "down")),
		Select:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "play")),
		ToggleAI: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "toggle AI")),
		Scores:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "scores")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k MenuKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.ToggleAI, k.Scores, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k MenuKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// MapKeyToMenuAction translates a key to a menu action.
func (k MenuKeyMap) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch {
	case key.Matches(msg, k.Quit):
		return MenuActionQuit
	case key.Matches(msg, k.Up):
		return MenuActionUp
	case key.Matches(msg, k.Down):
		return MenuActionDown
	case key.Matches(msg, k.Select):
		return MenuActionSelect
	case key.Matches(msg, k.ToggleAI):
		return MenuActionToggleAI
	case key.Matches(msg, k.Scores):
		return MenuActionScoreboard
	}
	return MenuActionNone
}

// ScoreboardKeyMap defines the match history bindings.
type ScoreboardKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Next key.Binding
	Prev key.Binding
	Back key.Binding
	Quit key.Binding
}

// DefaultScoreboardKeyMap returns the default history bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "older")),
		Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "newer")),
		Next: key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab/→", "next mode")),
		Prev: key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("S-tab/←", "prev mode")),
		Back: key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc", "menu")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Next, k.Prev, k.Back, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
