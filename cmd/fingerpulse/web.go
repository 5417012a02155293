package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/fingerpulse/internal/storage"
	"github.com/user/fingerpulse/internal/web"
)

var webPort int

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Start the web dashboard and sync API",
	Long: `Start the web server exposing the sync API and a status dashboard.

The web server provides:
- POST /api/sync-logs to pull and merge attendance from all terminals
- POST /api/test-connection for connectivity checks
- Attendance, terminal status and sync run history endpoints
- Downloadable markdown reports

Examples:
  fingerpulse web
  fingerpulse web --port 3001`,
	RunE: runWeb,
}

func init() {
	webCmd.Flags().IntVarP(&webPort, "port", "p", 0, "Web server port (default from config)")
}

func runWeb(cmd *cobra.Command, args []string) error {
	// Initialize database
	db, err := storage.Initialize(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	port := webPort
	if port <= 0 {
		port = cfg.WebPort
	}

	fmt.Printf("Starting web server on http://localhost:%d\n", port)
	fmt.Println("Press Ctrl+C to stop")

	srv := web.NewServer(db, cfg, port)
	return srv.Start()
}
