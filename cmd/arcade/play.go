package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/duel-arcade/internal/core"
	"github.com/vovakirdan/duel-arcade/internal/platform/tui"
	"github.com/vovakirdan/duel-arcade/internal/registry"
)

var (
	flagAI   bool
	flagNoAI bool
)

var playCmd = &cobra.Command{
	Use:   "play <mode>",
	Short: "Play a mode",
	Long: `Start a match of the specified mode.

Pong controls:
  W/S        - Player 1 paddle
  Up/Down    - Player 2 paddle (without --ai)

Connect Four controls:
  1-7        - Drop into a column
  Left/Right - Move the column cursor, Enter drops
  Mouse      - Click a column
  Space      - Roll a token, again to arm it (crazy tokens)

Always:
  P          - Pause / resume
  Esc        - Leave the match
  Q/Ctrl+C   - Quit (a paddle match is kept for next time)

Examples:
  arcade play pong-classic
  arcade play pong-chaos --no-ai
  arcade play connectfour-classic --difficulty hard`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&flagAI, "ai", true, "Player 2 is the computer")
	playCmd.Flags().BoolVar(&flagNoAI, "no-ai", false, "Player 2 is a human on the same keyboard")
}

func runPlay(cmd *cobra.Command, args []string) error {
	mode, err := registry.Get(args[0])
	if err != nil {
		return fmt.Errorf("%w\nRun 'arcade list' to see available modes", err)
	}

	env, err := setup(true)
	if err != nil {
		return err
	}
	defer env.Close()

	res, err := tui.Run(mode, env.deps, runtimeConfig(flagAI && !flagNoAI))
	if err != nil {
		return fmt.Errorf("error running match: %w", err)
	}
	if res.Outcome != core.OutcomeNone {
		fmt.Printf("%s: %s %d : %d (%s)\n", mode.Title, res.Outcome, res.Score1, res.Score2, res.Duration.Round(time.Second))
	}
	return nil
}
