package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/duel-arcade/internal/platform/tui"
	"github.com/vovakirdan/duel-arcade/internal/registry"
)

var (
	flagInteractive bool
	flagLimit       int
	flagClear       bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [mode]",
	Short: "Show match history",
	Long: `Display recent matches and totals for a mode, or totals for every
mode when none is given.

Examples:
  arcade scores
  arcade scores pong-classic
  arcade scores connectfour-crazy --limit 5
  arcade scores -i
  arcade scores pong-chaos --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Browse the history in the terminal UI")
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of matches to show")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the history of the mode")
}

func runScores(cmd *cobra.Command, args []string) error {
	gameID := ""
	if len(args) == 1 {
		gameID = args[0]
		if !registry.Exists(gameID) {
			return fmt.Errorf("unknown mode %q\nRun 'arcade list' to see available modes", gameID)
		}
	}

	env, err := setup(flagInteractive)
	if err != nil {
		return err
	}
	defer env.Close()
	store := env.deps.Store

	if flagInteractive {
		w, h := terminalSize()
		return tui.RunScoreboard(store, gameID, w, h)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), openTimeout)
	defer cancel()

	if flagClear {
		if gameID == "" {
			return fmt.Errorf("--clear needs a mode")
		}
		if err := store.Clear(ctx, gameID); err != nil {
			return fmt.Errorf("error clearing history: %w", err)
		}
		fmt.Printf("Cleared history of %s\n", gameID)
		return nil
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("error retrieving totals: %w", err)
	}

	if gameID == "" {
		if len(stats) == 0 {
			fmt.Println("No matches recorded yet.")
			return nil
		}
		ids := make([]string, 0, len(stats))
		for id := range stats {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		fmt.Printf("  %-20s  %6s  %4s  %4s  %4s  %9s  %4s\n", "Mode", "Played", "W", "L", "D", "Abandoned", "Best")
		for _, id := range ids {
			s := stats[id]
			fmt.Printf("  %-20s  %6d  %4d  %4d  %4d  %9d  %4d\n", id, s.Played, s.Wins, s.Losses, s.Draws, s.Abandoned, s.BestScore)
		}
		return nil
	}

	mode, _ := registry.Get(gameID)
	results, err := store.Results(ctx, gameID, flagLimit)
	if err != nil {
		return fmt.Errorf("error retrieving results: %w", err)
	}

	fmt.Printf("Match History - %s\n", mode.Title)
	fmt.Println()

	if len(results) == 0 {
		fmt.Println("No matches recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'arcade play %s' to record the first one!\n", gameID)
		return nil
	}

	fmt.Printf("  %-16s  %-9s  %-7s  %s\n", "Date", "Outcome", "Score", "Time")
	fmt.Printf("  %-16s  %-9s  %-7s  %s\n", "----", "-------", "-----", "----")
	for _, r := range results {
		fmt.Printf("  %-16s  %-9s  %-7s  %s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Outcome,
			fmt.Sprintf("%d:%d", r.Score1, r.Score2),
			r.Duration.Round(time.Second),
		)
	}

	if s, ok := stats[gameID]; ok {
		fmt.Println()
		fmt.Printf("Played %d  W %d  L %d  D %d  Best %d\n", s.Played, s.Wins, s.Losses, s.Draws, s.BestScore)
	}
	return nil
}
