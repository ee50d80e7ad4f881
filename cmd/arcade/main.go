// arcade is a two-player arcade for the terminal: paddle duels and column-drop
// board games, against a friend on the same keyboard or the computer.
//
// Usage:
//
//	arcade list                  - List available modes
//	arcade play <mode>           - Play a mode directly
//	arcade menu                  - Start the lobby to pick modes interactively
//	arcade scores [mode]         - Show match history and totals
//	arcade snapshot show|clear   - Inspect or drop the saved paddle match
//	arcade serve                 - Start SSH server for remote play
//	arcade config                - Print the effective configuration
//
// Global flags:
//
//	--config <path>      - Configuration file
//	--seed <value>       - RNG seed for reproducible matches
//	--storage <driver>   - memory, sqlite or postgres
//	--db <path>          - SQLite database path
//	--dsn <url>          - PostgreSQL connection string
//	--log-level <level>  - debug, info, warn or error
//	--difficulty <name>  - Opponent preset: easy, normal, hard
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vovakirdan/duel-arcade/internal/config"

	// Import games to register them
	_ "github.com/vovakirdan/duel-arcade/internal/games/connectfour"
	_ "github.com/vovakirdan/duel-arcade/internal/games/pong"
)

var (
	// Global flags
	flagConfig     string
	flagSeed       int64
	flagDifficulty string
)

// overrides maps flags to the config keys they override.
var overrides = viper.New()

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arcade",
	Short: "Duel Arcade - two-player games in your terminal",
	Long: `Duel Arcade plays Pong and Connect Four in the terminal, against a
friend on the same keyboard or the computer.

Available commands:
  list      - Show all available modes
  play      - Play a specific mode directly
  menu      - Interactive lobby
  scores    - View match history
  snapshot  - Inspect the saved paddle match
  serve     - Start SSH server for remote play
  config    - Print the effective configuration

Examples:
  arcade list
  arcade play pong-classic
  arcade play connectfour-crazy --no-ai
  arcade menu --difficulty hard
  arcade serve --ssh :2222
  arcade scores pong-chaos`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Path to arcade.yaml")
	pf.Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	pf.StringVar(&flagDifficulty, "difficulty", "", "Opponent preset: easy, normal, hard")
	pf.String("storage", "sqlite", "Storage driver: memory, sqlite, postgres")
	pf.String("db", "", "Path to the SQLite database (default ~/.arcade/arcade.db)")
	pf.String("dsn", "", "PostgreSQL connection string")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")

	bindFlags(pf, map[string]string{
		"storage":   "storage.driver",
		"db":        "storage.path",
		"dsn":       "storage.dsn",
		"log-level": "log.level",
	})

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

// bindFlags binds each flag to its config key. A flag only overrides the
// file when it is set on the command line.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if err := overrides.BindPFlag(key, fs.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

// loadConfig loads the file configuration, layers environment and flag
// overrides on top and applies the difficulty preset.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	cfg, err = config.Overlay(overrides, cfg)
	if err != nil {
		return cfg, err
	}
	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return cfg, err
	}
	config.ApplyPreset(&cfg, preset)
	return cfg, nil
}
