// Package syncer pulls punch logs from fingerprint terminals, reduces them to
// daily attendance records and writes them to the attendance store.
package syncer

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/user/fingerpulse/internal/model"
)

// NoYearFilter disables the year filter.
const NoYearFilter = 0

// Skip reasons for a single punch record. A skipped punch never fails the
// batch; callers count skips by reason for diagnostics.
var (
	ErrNoTimestamp  = errors.New("punch has no usable timestamp")
	ErrNoUserID     = errors.New("punch has no usable user id")
	ErrYearFiltered = errors.New("punch outside target year")
)

// Firmware revisions disagree on field names, so each logical field is read
// through an ordered alias list; first populated candidate wins.
var (
	timestampKeys = []string{"recordTime", "record_time", "timestamp", "checkTime", "check_time", "time"}
	userIDKeys    = []string{"deviceUserId", "device_user_id", "userId", "user_id", "enrollNumber", "uid"}
)

// Normalize converts one raw device punch into its canonical shape. The
// target year filter (when non-zero) is applied last so that filter skips can
// be counted separately from parse failures.
func Normalize(raw model.RawPunchEvent, targetYear int) (*model.NormalizedPunch, error) {
	ts, ok := extractTimestamp(raw)
	if !ok {
		return nil, ErrNoTimestamp
	}

	userID, ok := extractUserID(raw)
	if !ok {
		return nil, ErrNoUserID
	}

	// Device clocks are zone-less wall time carried as UTC; deriving the
	// calendar date in UTC keeps punches on the terminal's own day.
	ts = ts.UTC()

	if targetYear != NoYearFilter && ts.Year() != targetYear {
		return nil, ErrYearFiltered
	}

	return &model.NormalizedPunch{
		UserID:    userID,
		Date:      ts.Format("2006-01-02"),
		Time:      ts.Format("15:04"),
		IsMorning: ts.Hour() < 12,
	}, nil
}

// ExtractRecords accepts the payload shapes devices and middleware peers have
// been seen to produce: a direct record slice, or a wrapper object exposing
// the slice under a known field. Any other shape yields zero records rather
// than failing the sync.
func ExtractRecords(payload interface{}) []model.RawPunchEvent {
	switch v := payload.(type) {
	case nil:
		return nil

	case []model.RawPunchEvent:
		return v

	case []map[string]interface{}:
		events := make([]model.RawPunchEvent, 0, len(v))
		for _, m := range v {
			events = append(events, model.RawPunchEvent(m))
		}
		return events

	case []interface{}:
		events := make([]model.RawPunchEvent, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]interface{}); ok {
				events = append(events, model.RawPunchEvent(m))
			}
		}
		return events

	case model.RawPunchEvent:
		return extractWrapped(map[string]interface{}(v))

	case map[string]interface{}:
		return extractWrapped(v)

	default:
		return nil
	}
}

func extractWrapped(wrapper map[string]interface{}) []model.RawPunchEvent {
	for _, key := range []string{"data", "logs", "records", "attendances"} {
		if inner, ok := wrapper[key]; ok {
			return ExtractRecords(inner)
		}
	}
	return nil
}

func extractTimestamp(raw model.RawPunchEvent) (time.Time, bool) {
	for _, key := range timestampKeys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if ts, ok := parseTimestamp(v); ok {
			return ts, true
		}
	}
	return time.Time{}, false
}

func parseTimestamp(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t, true

	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		layouts := []string{
			time.RFC3339,
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"2006-01-02T15:04",
			"2006-01-02 15:04",
		}
		for _, layout := range layouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, true
			}
		}
		return time.Time{}, false

	case float64:
		// Epoch seconds, the only numeric encoding seen in pushed payloads.
		if t < 1e9 {
			return time.Time{}, false
		}
		return time.Unix(int64(t), 0).UTC(), true

	case int64:
		if t < 1e9 {
			return time.Time{}, false
		}
		return time.Unix(t, 0).UTC(), true

	default:
		return time.Time{}, false
	}
}

func extractUserID(raw model.RawPunchEvent) (string, bool) {
	for _, key := range userIDKeys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if id := coerceUserID(v); id != "" {
			return id, true
		}
	}
	return "", false
}

func coerceUserID(v interface{}) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case uint16:
		return strconv.Itoa(int(id))
	case float64:
		// JSON numbers decode as float64; device user ids are integral.
		return strconv.FormatInt(int64(id), 10)
	default:
		return ""
	}
}
