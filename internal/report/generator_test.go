package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/user/fingerpulse/internal/model"
	"github.com/user/fingerpulse/internal/storage"
	"github.com/user/fingerpulse/internal/util"
)

func setupGenerator(t *testing.T) (*Generator, *storage.DB) {
	t.Helper()

	db, err := storage.Open(storage.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := util.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.ReportOutputDir = filepath.Join(cfg.DataDir, "reports")

	return NewGenerator(db, cfg), db
}

func TestGenerate(t *testing.T) {
	gen, db := setupGenerator(t)

	attStorage := storage.NewAttendanceStorage(db)
	if err := attStorage.UpsertDaily(&model.DailyAttendanceRecord{
		FingerprintID: "12", Date: "2025-03-01", CheckIn: "07:58",
	}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	if err := storage.NewTermStatusStorage(db).Save(&model.TerminalStatus{
		Host: "10.0.0.1", Port: 4370, Reachable: true, CheckedAt: time.Now(),
	}); err != nil {
		t.Fatalf("save status failed: %v", err)
	}

	if err := storage.NewRunStorage(db).Save(&model.SyncRun{
		ID: "run-1", StartedAt: time.Now(), FinishedAt: time.Now(),
		Terminals: 1, Pulled: 1, Merged: 1, Upserted: 1,
	}); err != nil {
		t.Fatalf("save run failed: %v", err)
	}

	data, err := gen.Generate("2025-01-01", 10)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(data.Attendance) != 1 {
		t.Errorf("attendance rows = %d, want 1", len(data.Attendance))
	}
	if data.Incomplete != 1 {
		t.Errorf("incomplete = %d, want 1 (missing check-out)", data.Incomplete)
	}
	if data.ReachableCount != 1 {
		t.Errorf("reachable = %d, want 1", data.ReachableCount)
	}
	if data.RunsTotal != 1 {
		t.Errorf("runs = %d, want 1", data.RunsTotal)
	}
}

func TestFormatMarkdown(t *testing.T) {
	gen, db := setupGenerator(t)

	if err := storage.NewAttendanceStorage(db).UpsertDaily(&model.DailyAttendanceRecord{
		FingerprintID: "12", Date: "2025-03-01", CheckIn: "07:58", CheckOut: "17:01",
	}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	data, err := gen.Generate("2025-01-01", 10)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	content := FormatMarkdown(data)

	for _, want := range []string{
		"# FingerPulse Report",
		"## Terminal Status",
		"## Sync Runs",
		"| 12 | 2025-03-01 | 07:58 | 17:01 |",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestWriteMarkdownFile(t *testing.T) {
	gen, _ := setupGenerator(t)

	data, err := gen.Generate("2025-01-01", 10)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	path, err := WriteMarkdownFile(data, gen.config.ReportOutputDir)
	if err != nil {
		t.Fatalf("WriteMarkdownFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if !strings.Contains(string(content), "# FingerPulse Report") {
		t.Error("written report missing header")
	}
}
