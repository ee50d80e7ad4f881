package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/duel-arcade/internal/games/pong"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect the saved paddle match",
	Long: `A paddle match that is paused or quit is saved under the "gameState"
key and resumed by the next pong match.

Examples:
  arcade snapshot show
  arcade snapshot clear`,
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved paddle match",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotShow,
}

var snapshotClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the saved paddle match",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotClear,
}

func init() {
	snapshotCmd.AddCommand(snapshotShowCmd, snapshotClearCmd)
}

func runSnapshotShow(cmd *cobra.Command, _ []string) error {
	env, err := setup(false)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), openTimeout)
	defer cancel()

	blob, ok, err := env.deps.Store.Get(ctx, pong.SnapshotKey)
	if err != nil {
		return fmt.Errorf("error reading snapshot: %w", err)
	}
	if !ok {
		fmt.Println("No saved match.")
		return nil
	}

	snap, err := pong.DecodeSnapshot([]byte(blob), env.cfg.Pong.Gameplay.WinScore)
	if err != nil {
		fmt.Printf("Saved match is invalid and will be discarded: %v\n", err)
		fmt.Println(blob)
		return nil
	}

	opponent := "human"
	if snap.AIData.Activate {
		opponent = "computer"
	}
	fmt.Printf("Saved match: P1 %d : %d P2 (player 2: %s)\n", snap.Player1.Counter, snap.Player2.Counter, opponent)
	fmt.Printf("  ball     at (%.3f, %.3f) velocity (%.4f, %.4f)\n", snap.Ball.PosX, snap.Ball.PosY, snap.Ball.VelX, snap.Ball.VelY)
	fmt.Printf("  paddles  top %.3f / %.3f\n", snap.Player1.PaddleTop, snap.Player2.PaddleTop)
	fmt.Printf("  tick     %gms, base speed %.4f\n", snap.GeneralData.Time, snap.GeneralData.Speed)
	return nil
}

func runSnapshotClear(cmd *cobra.Command, _ []string) error {
	env, err := setup(false)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), openTimeout)
	defer cancel()

	if err := env.deps.Store.Remove(ctx, pong.SnapshotKey); err != nil {
		return fmt.Errorf("error clearing snapshot: %w", err)
	}
	fmt.Println("Saved match cleared.")
	return nil
}
