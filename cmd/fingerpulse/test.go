package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/fingerpulse/internal/model"
	"github.com/user/fingerpulse/internal/storage"
	"github.com/user/fingerpulse/internal/syncer"
	"github.com/user/fingerpulse/internal/tui"
)

var (
	testIPs  []string
	testPort int
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connectivity to the terminals",
	Long: `Probe each terminal and open a short-lived protocol session without
reading any attendance data.

Examples:
  fingerpulse test
  fingerpulse test --ips 192.168.1.201`,
	RunE: runTest,
}

func init() {
	testCmd.Flags().StringSliceVar(&testIPs, "ips", nil,
		"Terminal IPs (default from config)")
	testCmd.Flags().IntVar(&testPort, "port", 0,
		"Terminal port (default from config)")
}

func runTest(cmd *cobra.Command, args []string) error {
	ips := testIPs
	if len(ips) == 0 {
		ips = cfg.TerminalIPs
	}
	port := testPort
	if port <= 0 {
		port = cfg.TerminalPort
	}

	endpoints := syncer.ParseEndpoints(ips, port)
	if len(endpoints) == 0 {
		return fmt.Errorf("no terminals configured, set terminal_ips or pass --ips")
	}

	db, err := storage.Initialize(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	orch := syncer.NewFromConfig(cfg, storage.NewAttendanceStorage(db))

	fmt.Printf("Testing %d terminals...\n\n", len(endpoints))

	reports := orch.TestAll(context.Background(), endpoints)

	online := 0
	for _, rep := range reports {
		switch rep.Status {
		case model.ConnSimulatedOnline:
			online++
			fmt.Printf("  %s %s\n", rep.Endpoint.Addr(), tui.WarningStyle.Render("Simulasi: OK"))
		case model.ConnOnline:
			online++
			fmt.Printf("  %s %s\n", rep.Endpoint.Addr(), tui.SuccessStyle.Render("OK: Terhubung"))
		case model.ConnProtocolError:
			fmt.Printf("  %s %s\n", rep.Endpoint.Addr(), tui.ErrorStyle.Render("Gagal: "+rep.Detail))
		default:
			fmt.Printf("  %s %s\n", rep.Endpoint.Addr(), tui.ErrorStyle.Render("Gagal: Tidak dapat dijangkau"))
		}
	}

	fmt.Printf("\n%d/%d terminals online\n", online, len(endpoints))

	return nil
}
