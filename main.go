/*
Package main
File: main.go
Description: Togore's Tuna Hunt server entry point. "togore serve" (the
default) runs the session: REST + WebSocket surface, the passive income
heartbeat and catalog hot reload. "togore reset --confirm" wipes the save.
*/

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/everforgeworks/togore-tuna-hunt/internal/config"
	"github.com/everforgeworks/togore-tuna-hunt/internal/logging"
)

var (
	cfg    config.Config
	logger *zap.Logger

	confirmReset bool
)

var rootCmd = &cobra.Command{
	Use:   "togore",
	Short: "Togore's Tuna Hunt game server",
	Long: `Runs the progression and session engine for Togore's Tuna Hunt.

Configuration is read from TOGORE_* environment variables.
Run without a subcommand to start the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.LogLevel)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and WebSocket server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the saved game",
	Long: `Deletes the persisted save for TOGORE_SAVE_ID. The player starts
over with default money, rod and ship. Requires --confirm.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmReset {
			return fmt.Errorf("refusing to reset %q without --confirm", cfg.SaveID)
		}
		return runReset(cmd.Context())
	},
}

func init() {
	resetCmd.Flags().BoolVar(&confirmReset, "confirm", false, "really delete the save")
	rootCmd.AddCommand(serveCmd, resetCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
