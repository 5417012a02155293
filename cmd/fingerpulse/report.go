package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/fingerpulse/internal/report"
	"github.com/user/fingerpulse/internal/storage"
)

var (
	reportSince  string
	reportRuns   int
	reportOutput string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate an attendance sync report",
	Long: `Generate a markdown report covering attendance, terminal health and
sync run history.

Examples:
  fingerpulse report
  fingerpulse report --since 2025-03-01
  fingerpulse report --output ./report.md
  fingerpulse report --output -`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportSince, "since", "",
		"Include attendance on or after this date, YYYY-MM-DD (default: last 7 days)")
	reportCmd.Flags().IntVar(&reportRuns, "runs", 20,
		"Number of sync runs to include")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "",
		"Output file path, - for stdout (default: auto-generated)")
}

func runReport(cmd *cobra.Command, args []string) error {
	since := reportSince
	if since == "" {
		since = time.Now().AddDate(0, 0, -7).Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", since); err != nil {
		return fmt.Errorf("invalid since date %q, want YYYY-MM-DD", since)
	}

	fmt.Printf("Generating report for dates since %s...\n", since)

	// Initialize database
	db, err := storage.Initialize(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Generate report
	gen := report.NewGenerator(db, cfg)

	data, err := gen.Generate(since, reportRuns)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	// Output report
	if reportOutput == "" {
		outputPath, err := report.WriteMarkdownFile(data, cfg.ReportOutputDir)
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Report saved to: %s\n", outputPath)
	} else {
		content := report.FormatMarkdown(data)
		if reportOutput == "-" {
			fmt.Println(content)
		} else {
			if err := os.WriteFile(reportOutput, []byte(content), 0644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			fmt.Printf("Report saved to: %s\n", reportOutput)
		}
	}

	// Print summary
	fmt.Println()
	fmt.Println("Report Summary:")
	fmt.Printf("  Attendance rows: %d\n", len(data.Attendance))
	fmt.Printf("  Incomplete rows: %d\n", data.Incomplete)
	fmt.Printf("  Terminals reachable: %d/%d\n", data.ReachableCount, len(data.Terminals))
	fmt.Printf("  Sync runs: %d\n", data.RunsTotal)

	return nil
}
