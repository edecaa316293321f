package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/polemica/polemica/cmd/polemica/commands"
	"github.com/polemica/polemica/logger"
)

var rootCmd = &cobra.Command{
	Use:   "polemica",
	Short: "Polemica - collaborative debate canvas server",
	Long: `Polemica - real-time collaborative debate canvas.

Polemica hosts shared debate canvases: claims, AI-generated probing
questions, and sourced evidence laid out as a live graph that every
participant sees update in real time.

Available commands:
  server - Start the canvas sync server
  db     - Manage the canvas database
  config - Inspect resolved configuration

Examples:
  polemica server          # Start the sync server
  polemica db migrate      # Apply pending migrations
  polemica db stats        # Show canvas statistics
  polemica config show     # Print resolved configuration`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() != "show" {
			if err := logger.Initialize(false); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commands.ServerCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
