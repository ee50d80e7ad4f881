package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/duel-arcade/internal/core"
	"github.com/vovakirdan/duel-arcade/internal/platform/tui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the arcade SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection gets its own lobby. Match history is stored per server
(all users share the same backend).

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.arcade/ssh_host_key

Examples:
  arcade serve                           # Listen on :23234 with auto-generated key
  arcade serve --ssh :2222               # Listen on port 2222
  arcade serve --host-key ./my_host_key  # Use specific host key
  arcade serve --storage postgres --dsn postgres://arcade@localhost/arcade

Users can connect with:
  ssh localhost -p 23234`,
	RunE: runServe,
}

func init() {
	fs := serveCmd.Flags()
	fs.String("ssh", ":23234", "SSH server address (host:port)")
	fs.String("host-key", "", "Path to host key file (auto-generated if not specified)")
	fs.Int("idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	bindFlags(fs, map[string]string{
		"ssh":          "ssh.address",
		"host-key":     "ssh.host_key",
		"idle-timeout": "ssh.idle_timeout_min",
	})
}

func runServe(_ *cobra.Command, _ []string) error {
	env, err := setup(false)
	if err != nil {
		return err
	}
	defer env.Close()

	rc := core.DefaultConfig()
	rc.Seed = flagSeed

	server, err := tui.NewSSHServer(env.cfg.SSH, env.deps, rc)
	if err != nil {
		return fmt.Errorf("error creating server: %w", err)
	}

	fmt.Printf("Starting arcade SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe()
}
