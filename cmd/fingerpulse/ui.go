package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/fingerpulse/internal/storage"
	"github.com/user/fingerpulse/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the terminal dashboard",
	Long: `Launch an interactive terminal dashboard showing live sync status.

The dashboard shows:
- Last sync run and record counts
- Terminal reachability
- Store statistics

Press 'r' to refresh, 'q' to quit.`,
	RunE: runUI,
}

func runUI(cmd *cobra.Command, args []string) error {
	// Initialize database
	db, err := storage.Initialize(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	app := tui.NewApp(db, cfg)
	return app.Run()
}
