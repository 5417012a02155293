package storage

import (
	"testing"
	"time"

	"github.com/user/fingerpulse/internal/model"
)

func TestTermStatusSaveAndLatest(t *testing.T) {
	db := setupTestDB(t)
	s := NewTermStatusStorage(db)

	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	samples := []*model.TerminalStatus{
		{Host: "10.0.0.1", Port: 4370, Reachable: false, CheckedAt: base},
		{Host: "10.0.0.1", Port: 4370, Reachable: true, LatencyMs: 1.5, CheckedAt: base.Add(time.Minute)},
		{Host: "10.0.0.2", Port: 4370, Reachable: false, CheckedAt: base},
	}
	for _, st := range samples {
		if err := s.Save(st); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
	if samples[0].ID == 0 {
		t.Error("expected Save to backfill the row id")
	}

	latest, err := s.Latest()
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("got %d samples, want one per terminal", len(latest))
	}

	// Ordered by host; the first terminal's newest sample is the reachable
	// one.
	if !latest[0].Reachable {
		t.Error("latest sample for 10.0.0.1 should be the reachable one")
	}
	if latest[1].Reachable {
		t.Error("latest sample for 10.0.0.2 should be unreachable")
	}

	count, err := s.CountReachable()
	if err != nil {
		t.Fatalf("CountReachable failed: %v", err)
	}
	if count != 1 {
		t.Errorf("reachable count = %d, want 1", count)
	}
}

func TestTermStatusHistory(t *testing.T) {
	db := setupTestDB(t)
	s := NewTermStatusStorage(db)

	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := s.Save(&model.TerminalStatus{
			Host: "10.0.0.1", Port: 4370, Reachable: true,
			CheckedAt: base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	history, err := s.History("10.0.0.1", 4370, base.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("got %d samples, want 2 after the cutoff", len(history))
	}

	history, err = s.History("10.0.0.9", 4370, base)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("got %d samples for unknown host, want 0", len(history))
	}
}
