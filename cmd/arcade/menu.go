package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/duel-arcade/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the arcade lobby",
	Long: `Start the arcade in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to select a mode.
After a match ends, you return to the lobby to play again.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select mode
  A            - Toggle the computer opponent
  Tab          - Match history
  Q            - Quit

Examples:
  arcade menu
  arcade menu --difficulty easy
  arcade menu --storage memory`,
	RunE: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) error {
	env, err := setup(true)
	if err != nil {
		return err
	}
	defer env.Close()

	return tui.RunArcade(env.deps, runtimeConfig(true))
}
