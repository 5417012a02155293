// Package report generates attendance sync reports.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/user/fingerpulse/internal/model"
	"github.com/user/fingerpulse/internal/storage"
	"github.com/user/fingerpulse/internal/util"
)

// Generator creates sync and terminal health reports.
type Generator struct {
	db     *storage.DB
	config *util.Config
}

// NewGenerator creates a new report generator.
func NewGenerator(db *storage.DB, cfg *util.Config) *Generator {
	return &Generator{
		db:     db,
		config: cfg,
	}
}

// ReportData holds all data for a report.
type ReportData struct {
	GeneratedAt time.Time
	Since       string // YYYY-MM-DD

	// Attendance section
	Attendance      []model.DailyAttendanceRecord
	AttendanceTotal int
	Incomplete      int // rows missing check-in or check-out

	// Terminal section
	Terminals      []model.TerminalStatus
	ReachableCount int

	// Sync run section
	Runs      []model.SyncRun
	RunsTotal int
}

// Generate collects report data for dates on or after since.
func (g *Generator) Generate(since string, runLimit int) (*ReportData, error) {
	data := &ReportData{
		GeneratedAt: time.Now(),
		Since:       since,
	}

	attStorage := storage.NewAttendanceStorage(g.db)

	records, err := attStorage.ListSince(since)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	data.Attendance = records
	for _, rec := range records {
		if rec.CheckIn == "" || rec.CheckOut == "" {
			data.Incomplete++
		}
	}

	if total, err := attStorage.Count(); err == nil {
		data.AttendanceTotal = total
	}

	statusStorage := storage.NewTermStatusStorage(g.db)
	if statuses, err := statusStorage.Latest(); err == nil {
		data.Terminals = statuses
		for _, st := range statuses {
			if st.Reachable {
				data.ReachableCount++
			}
		}
	}

	runStorage := storage.NewRunStorage(g.db)
	runs, err := runStorage.List(runLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get sync runs: %w", err)
	}
	data.Runs = runs

	if total, err := runStorage.Count(); err == nil {
		data.RunsTotal = total
	}

	return data, nil
}

// FormatMarkdown renders the report as markdown.
func FormatMarkdown(data *ReportData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# FingerPulse Report\n\n")
	fmt.Fprintf(&b, "Generated: %s  \n", data.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Covering dates since: %s\n\n", data.Since)

	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "- Attendance rows in range: %d (of %d total)\n", len(data.Attendance), data.AttendanceTotal)
	fmt.Fprintf(&b, "- Incomplete rows (missing a punch): %d\n", data.Incomplete)
	fmt.Fprintf(&b, "- Terminals reachable: %d/%d\n", data.ReachableCount, len(data.Terminals))
	fmt.Fprintf(&b, "- Sync runs recorded: %d\n\n", data.RunsTotal)

	fmt.Fprintf(&b, "## Terminal Status\n\n")
	if len(data.Terminals) == 0 {
		fmt.Fprintf(&b, "No status samples recorded.\n\n")
	} else {
		fmt.Fprintf(&b, "| Host | Port | Reachable | Latency (ms) | Checked |\n")
		fmt.Fprintf(&b, "|------|------|-----------|--------------|--------|\n")
		for _, st := range data.Terminals {
			state := "no"
			if st.Reachable {
				state = "yes"
			}
			fmt.Fprintf(&b, "| %s | %d | %s | %.1f | %s |\n",
				st.Host, st.Port, state, st.LatencyMs,
				st.CheckedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Fprintf(&b, "\n")
	}

	fmt.Fprintf(&b, "## Sync Runs\n\n")
	if len(data.Runs) == 0 {
		fmt.Fprintf(&b, "No sync runs recorded.\n\n")
	} else {
		fmt.Fprintf(&b, "| Finished | Terminals | Pulled | Merged | Upserted | Skipped | Detail |\n")
		fmt.Fprintf(&b, "|----------|-----------|--------|--------|----------|---------|--------|\n")
		for _, run := range data.Runs {
			detail := run.Detail
			if detail == "" {
				detail = "-"
			}
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %d | %d | %s |\n",
				run.FinishedAt.Format("2006-01-02 15:04:05"),
				run.Terminals, run.Pulled, run.Merged, run.Upserted, run.Skipped,
				detail)
		}
		fmt.Fprintf(&b, "\n")
	}

	fmt.Fprintf(&b, "## Attendance\n\n")
	if len(data.Attendance) == 0 {
		fmt.Fprintf(&b, "No attendance records in range.\n")
	} else {
		fmt.Fprintf(&b, "| Fingerprint ID | Date | Check In | Check Out |\n")
		fmt.Fprintf(&b, "|----------------|------|----------|----------|\n")
		for _, rec := range data.Attendance {
			in := rec.CheckIn
			if in == "" {
				in = "-"
			}
			out := rec.CheckOut
			if out == "" {
				out = "-"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", rec.FingerprintID, rec.Date, in, out)
		}
	}

	return b.String()
}

// WriteMarkdownFile writes the report to the output directory and returns
// the file path.
func WriteMarkdownFile(data *ReportData, outputDir string) (string, error) {
	if err := util.EnsureDir(outputDir); err != nil {
		return "", fmt.Errorf("failed to create report dir: %w", err)
	}

	filename := fmt.Sprintf("fingerpulse_%s.md", data.GeneratedAt.Format("20060102_150405"))
	path := filepath.Join(outputDir, filename)

	if err := os.WriteFile(path, []byte(FormatMarkdown(data)), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}
