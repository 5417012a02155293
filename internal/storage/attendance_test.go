package storage

import (
	"testing"

	"github.com/user/fingerpulse/internal/model"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestUpsertDailyInsert(t *testing.T) {
	db := setupTestDB(t)
	s := NewAttendanceStorage(db)

	rec := &model.DailyAttendanceRecord{
		FingerprintID: "12",
		Date:          "2025-03-01",
		CheckIn:       "07:58",
	}
	if err := s.UpsertDaily(rec); err != nil {
		t.Fatalf("UpsertDaily failed: %v", err)
	}

	got, err := s.GetDaily("12", "2025-03-01")
	if err != nil {
		t.Fatalf("GetDaily failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a stored record")
	}
	if got.CheckIn != "07:58" || got.CheckOut != "" {
		t.Errorf("stored = %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be set")
	}
}

func TestUpsertDailyMergesFields(t *testing.T) {
	db := setupTestDB(t)
	s := NewAttendanceStorage(db)

	if err := s.UpsertDaily(&model.DailyAttendanceRecord{
		FingerprintID: "12", Date: "2025-03-01", CheckIn: "07:58",
	}); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	// Second write carries only the afternoon punch; the stored check-in
	// must survive.
	if err := s.UpsertDaily(&model.DailyAttendanceRecord{
		FingerprintID: "12", Date: "2025-03-01", CheckOut: "17:01",
	}); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	got, err := s.GetDaily("12", "2025-03-01")
	if err != nil {
		t.Fatalf("GetDaily failed: %v", err)
	}
	if got.CheckIn != "07:58" {
		t.Errorf("CheckIn = %q, want preserved 07:58", got.CheckIn)
	}
	if got.CheckOut != "17:01" {
		t.Errorf("CheckOut = %q, want 17:01", got.CheckOut)
	}
}

func TestUpsertDailyIdempotent(t *testing.T) {
	db := setupTestDB(t)
	s := NewAttendanceStorage(db)

	rec := &model.DailyAttendanceRecord{
		FingerprintID: "12", Date: "2025-03-01", CheckIn: "07:58", CheckOut: "17:01",
	}

	for i := 0; i < 3; i++ {
		if err := s.UpsertDaily(rec); err != nil {
			t.Fatalf("upsert %d failed: %v", i, err)
		}
	}

	count, err := s.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want a single row", count)
	}
}

func TestUpsertDailySeparateKeys(t *testing.T) {
	db := setupTestDB(t)
	s := NewAttendanceStorage(db)

	recs := []*model.DailyAttendanceRecord{
		{FingerprintID: "12", Date: "2025-03-01", CheckIn: "07:58"},
		{FingerprintID: "12", Date: "2025-03-02", CheckIn: "08:01"},
		{FingerprintID: "305", Date: "2025-03-01", CheckIn: "08:00"},
	}
	for _, rec := range recs {
		if err := s.UpsertDaily(rec); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	count, _ := s.Count()
	if count != 3 {
		t.Errorf("count = %d, want 3 distinct keys", count)
	}
}

func TestGetDailyAbsent(t *testing.T) {
	db := setupTestDB(t)
	s := NewAttendanceStorage(db)

	got, err := s.GetDaily("nobody", "2025-03-01")
	if err != nil {
		t.Fatalf("GetDaily failed: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil for absent key", got)
	}
}

func TestListSince(t *testing.T) {
	db := setupTestDB(t)
	s := NewAttendanceStorage(db)

	dates := []string{"2025-02-27", "2025-03-01", "2025-03-02"}
	for _, d := range dates {
		if err := s.UpsertDaily(&model.DailyAttendanceRecord{
			FingerprintID: "12", Date: d, CheckIn: "08:00",
		}); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	records, err := s.ListSince("2025-03-01")
	if err != nil {
		t.Fatalf("ListSince failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	// Newest date first.
	if records[0].Date != "2025-03-02" {
		t.Errorf("records[0].Date = %s, want 2025-03-02", records[0].Date)
	}
}
