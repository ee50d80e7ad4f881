package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/duel-arcade/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after the file, ARCADE_* environment variables
and command-line flags are applied. The output is valid arcade.yaml.

Examples:
  arcade config > ~/.arcade/configs/arcade.yaml
  ARCADE_CONNECT_FOUR_DEPTH=7 arcade config`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out, err := config.Dump(cfg)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}
