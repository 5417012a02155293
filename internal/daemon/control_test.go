package daemon

import (
	"testing"
	"time"
)

func TestStatusFileRoundtrip(t *testing.T) {
	dir := t.TempDir()

	status := &DaemonStatus{
		Running:   true,
		PID:       1234,
		StartTime: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
		Uptime:    90 * time.Minute,
		Jobs: []JobStatus{
			{Name: "terminal_sync", Interval: 5 * time.Minute, ErrorCount: 1},
		},
	}

	if err := WriteStatusFile(dir, status, "2 terminals, 4 upserted"); err != nil {
		t.Fatalf("WriteStatusFile failed: %v", err)
	}

	sf, err := ReadStatusFile(dir)
	if err != nil {
		t.Fatalf("ReadStatusFile failed: %v", err)
	}

	if !sf.Running || sf.PID != 1234 {
		t.Errorf("status = %+v", sf)
	}
	if sf.LastSync != "2 terminals, 4 upserted" {
		t.Errorf("LastSync = %q", sf.LastSync)
	}
	if len(sf.Jobs) != 1 || sf.Jobs[0].Name != "terminal_sync" {
		t.Errorf("jobs = %+v", sf.Jobs)
	}
}

func TestReadStatusFileMissing(t *testing.T) {
	if _, err := ReadStatusFile(t.TempDir()); err == nil {
		t.Error("expected error for missing status file")
	}
}

func TestCheckRunningNoPIDFile(t *testing.T) {
	running, pid := CheckRunning(t.TempDir())
	if running || pid != 0 {
		t.Errorf("got running=%v pid=%d, want not running", running, pid)
	}
}
