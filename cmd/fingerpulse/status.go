package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/user/fingerpulse/internal/daemon"
	"github.com/user/fingerpulse/internal/storage"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Long:  "Show the current status of the fingerpulse daemon and latest sync results.",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("86"))

	runningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("46")).
		Bold(true)

	stoppedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Bold(true)

	warnStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Bold(true)

	// Check daemon status
	running, pid := daemon.CheckRunning(cfg.DataDir)

	fmt.Println(titleStyle.Render("FingerPulse Status"))
	fmt.Println()

	// Daemon status
	fmt.Print(labelStyle.Render("Daemon: "))
	if running {
		fmt.Println(runningStyle.Render(fmt.Sprintf("Running (PID %d)", pid)))
	} else {
		fmt.Println(stoppedStyle.Render("Stopped"))
	}

	fmt.Print(labelStyle.Render("Mode: "))
	if cfg.SimulationMode {
		fmt.Println(warnStyle.Render("Simulation"))
	} else {
		fmt.Println(valueStyle.Render("Live"))
	}

	// Try to read status file for more details
	if sf, err := daemon.ReadStatusFile(cfg.DataDir); err == nil {
		fmt.Print(labelStyle.Render("Started: "))
		fmt.Println(valueStyle.Render(sf.StartTime))

		fmt.Print(labelStyle.Render("Uptime: "))
		fmt.Println(valueStyle.Render(sf.Uptime))

		if sf.LastSync != "" {
			fmt.Print(labelStyle.Render("Last sync: "))
			fmt.Println(valueStyle.Render(sf.LastSync))
		}

		if len(sf.Jobs) > 0 {
			fmt.Println()
			fmt.Println(titleStyle.Render("Jobs"))

			for _, job := range sf.Jobs {
				statusStr := "idle"
				if job.Running {
					statusStr = "running"
				}
				fmt.Printf("  %s: %s (last: %s, errors: %d)\n",
					labelStyle.Render(job.Name),
					valueStyle.Render(statusStr),
					job.LastRun.Format("15:04:05"),
					job.ErrorCount)
			}
		}
	}

	// Get database stats
	db, err := storage.Initialize(cfg)
	if err == nil {
		fmt.Println()
		fmt.Println(titleStyle.Render("Database Stats"))

		attStorage := storage.NewAttendanceStorage(db)
		if count, err := attStorage.Count(); err == nil {
			fmt.Printf("  %s %s\n",
				labelStyle.Render("Attendance rows:"),
				valueStyle.Render(fmt.Sprintf("%d", count)))
		}

		statusStorage := storage.NewTermStatusStorage(db)
		if count, err := statusStorage.CountReachable(); err == nil {
			fmt.Printf("  %s %s\n",
				labelStyle.Render("Reachable terminals:"),
				valueStyle.Render(fmt.Sprintf("%d/%d", count, len(cfg.TerminalIPs))))
		}

		runStorage := storage.NewRunStorage(db)
		if count, err := runStorage.Count(); err == nil {
			fmt.Printf("  %s %s\n",
				labelStyle.Render("Sync runs:"),
				valueStyle.Render(fmt.Sprintf("%d", count)))
		}

		// Show latest run
		if run, err := runStorage.Latest(); err == nil && run != nil {
			fmt.Println()
			fmt.Println(titleStyle.Render("Latest Sync"))
			fmt.Printf("  %s %s\n",
				labelStyle.Render("Finished:"),
				valueStyle.Render(run.FinishedAt.Format("2006-01-02 15:04:05")))
			fmt.Printf("  %s %s\n",
				labelStyle.Render("Terminals:"),
				valueStyle.Render(fmt.Sprintf("%d", run.Terminals)))
			fmt.Printf("  %s %s\n",
				labelStyle.Render("Records:"),
				valueStyle.Render(fmt.Sprintf("%d pulled, %d upserted, %d skipped",
					run.Pulled, run.Upserted, run.Skipped)))
			if run.Detail != "" {
				fmt.Printf("  %s %s\n",
					labelStyle.Render("Detail:"),
					valueStyle.Render(run.Detail))
			}
		}
	}

	return nil
}
