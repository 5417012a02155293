package storage

import (
	"testing"
	"time"

	"github.com/user/fingerpulse/internal/model"
)

func TestRunStorage(t *testing.T) {
	db := setupTestDB(t)
	s := NewRunStorage(db)

	// Empty store
	run, err := s.Latest()
	if err != nil {
		t.Fatalf("Latest on empty store failed: %v", err)
	}
	if run != nil {
		t.Errorf("got %+v, want nil before any runs", run)
	}

	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	runs := []*model.SyncRun{
		{ID: "run-1", StartedAt: base, FinishedAt: base.Add(time.Minute), Terminals: 2, Pulled: 10, Merged: 4, Upserted: 4},
		{ID: "run-2", StartedAt: base.Add(time.Hour), FinishedAt: base.Add(61 * time.Minute), Terminals: 2, Pulled: 3, Upserted: 1, Skipped: 2, Detail: "10.0.0.2:4370: unreachable"},
	}
	for _, r := range runs {
		if err := s.Save(r); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	latest, err := s.Latest()
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest == nil || latest.ID != "run-2" {
		t.Errorf("latest = %+v, want run-2", latest)
	}
	if latest.Detail != "10.0.0.2:4370: unreachable" {
		t.Errorf("Detail = %q", latest.Detail)
	}

	list, err := s.List(10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d runs, want 2", len(list))
	}
	if list[0].ID != "run-2" {
		t.Errorf("list[0] = %s, want newest first", list[0].ID)
	}

	count, err := s.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}
