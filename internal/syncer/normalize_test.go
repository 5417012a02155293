package syncer

import (
	"errors"
	"testing"
	"time"

	"github.com/user/fingerpulse/internal/model"
)

func TestNormalize(t *testing.T) {
	raw := model.RawPunchEvent{
		"deviceUserId": "12",
		"recordTime":   "2025-03-01T07:58:00",
	}

	punch, err := Normalize(raw, NoYearFilter)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if punch.UserID != "12" {
		t.Errorf("UserID = %q, want 12", punch.UserID)
	}
	if punch.Date != "2025-03-01" {
		t.Errorf("Date = %q, want 2025-03-01", punch.Date)
	}
	if punch.Time != "07:58" {
		t.Errorf("Time = %q, want 07:58", punch.Time)
	}
	if !punch.IsMorning {
		t.Error("expected 07:58 to be a morning punch")
	}
}

func TestNormalizeFieldAliases(t *testing.T) {
	ts := time.Date(2025, 3, 1, 16, 45, 0, 0, time.UTC)

	cases := []struct {
		name string
		raw  model.RawPunchEvent
	}{
		{"snake_case", model.RawPunchEvent{"device_user_id": "7", "record_time": "2025-03-01 16:45:00"}},
		{"generic", model.RawPunchEvent{"userId": "7", "timestamp": ts}},
		{"checkTime", model.RawPunchEvent{"enrollNumber": 7, "checkTime": "2025-03-01T16:45"}},
		{"uid_numeric", model.RawPunchEvent{"uid": float64(7), "time": "2025-03-01 16:45"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			punch, err := Normalize(c.raw, NoYearFilter)
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			if punch.UserID != "7" {
				t.Errorf("UserID = %q, want 7", punch.UserID)
			}
			if punch.Time != "16:45" {
				t.Errorf("Time = %q, want 16:45", punch.Time)
			}
			if punch.IsMorning {
				t.Error("expected 16:45 to be an afternoon punch")
			}
		})
	}
}

func TestNormalizeAliasOrder(t *testing.T) {
	// When multiple aliases are present the first populated one wins.
	raw := model.RawPunchEvent{
		"deviceUserId": "12",
		"uid":          99,
		"recordTime":   "2025-03-01T07:58:00",
	}

	punch, err := Normalize(raw, NoYearFilter)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if punch.UserID != "12" {
		t.Errorf("UserID = %q, want deviceUserId to win over uid", punch.UserID)
	}
}

func TestNormalizeErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  model.RawPunchEvent
		year int
		want error
	}{
		{"no timestamp", model.RawPunchEvent{"deviceUserId": "12"}, NoYearFilter, ErrNoTimestamp},
		{"garbage timestamp", model.RawPunchEvent{"deviceUserId": "12", "recordTime": "not-a-time"}, NoYearFilter, ErrNoTimestamp},
		{"no user id", model.RawPunchEvent{"recordTime": "2025-03-01T07:58:00"}, NoYearFilter, ErrNoUserID},
		{"blank user id", model.RawPunchEvent{"deviceUserId": "  ", "recordTime": "2025-03-01T07:58:00"}, NoYearFilter, ErrNoUserID},
		{"year filtered", model.RawPunchEvent{"deviceUserId": "12", "recordTime": "2024-12-31T07:58:00"}, 2025, ErrYearFiltered},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Normalize(c.raw, c.year)
			if !errors.Is(err, c.want) {
				t.Errorf("err = %v, want %v", err, c.want)
			}
		})
	}
}

func TestNormalizeYearFilterAppliedLast(t *testing.T) {
	// A record that is both unparseable and out of year reports the parse
	// failure, not the filter.
	raw := model.RawPunchEvent{"recordTime": "2024-01-01T08:00:00"}
	if _, err := Normalize(raw, 2025); !errors.Is(err, ErrNoUserID) {
		t.Errorf("err = %v, want ErrNoUserID before the year filter", err)
	}
}

func TestNormalizeEpochTimestamp(t *testing.T) {
	// 2025-03-01 07:58:00 UTC
	raw := model.RawPunchEvent{"deviceUserId": "12", "timestamp": float64(1740815880)}

	punch, err := Normalize(raw, NoYearFilter)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if punch.Date != "2025-03-01" || punch.Time != "07:58" {
		t.Errorf("got %s %s, want 2025-03-01 07:58", punch.Date, punch.Time)
	}
}

func TestExtractRecords(t *testing.T) {
	event := map[string]interface{}{"deviceUserId": "12", "recordTime": "2025-03-01T07:58:00"}

	cases := []struct {
		name    string
		payload interface{}
		want    int
	}{
		{"nil", nil, 0},
		{"raw slice", []model.RawPunchEvent{event}, 1},
		{"map slice", []map[string]interface{}{event, event}, 2},
		{"interface slice", []interface{}{event, "junk", event}, 2},
		{"wrapper data", map[string]interface{}{"data": []interface{}{event}}, 1},
		{"wrapper logs", map[string]interface{}{"logs": []map[string]interface{}{event}}, 1},
		{"wrapper attendances", model.RawPunchEvent{"attendances": []interface{}{event}}, 1},
		{"unknown shape", 42, 0},
		{"wrapper without records", map[string]interface{}{"status": "ok"}, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ExtractRecords(c.payload); len(got) != c.want {
				t.Errorf("got %d records, want %d", len(got), c.want)
			}
		})
	}
}
