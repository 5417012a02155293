package terminal

import (
	"encoding/binary"
	"testing"
	"time"
)

func attRecord40(userSn uint16, userID string, ts time.Time) []byte {
	rec := make([]byte, attRecordSize)
	binary.LittleEndian.PutUint16(rec[0:2], userSn)
	copy(rec[2:11], userID)
	binary.LittleEndian.PutUint32(rec[27:31], encodeTime(ts))
	return rec
}

func TestParseAttendanceRecords40(t *testing.T) {
	ts := time.Date(2025, 3, 1, 7, 58, 0, 0, time.UTC)

	data := make([]byte, 4)
	data = append(data, attRecord40(1, "12", ts)...)
	data = append(data, attRecord40(2, "305", ts.Add(9*time.Hour))...)

	events := parseAttendanceRecords(data)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	if got := events[0]["deviceUserId"]; got != "12" {
		t.Errorf("deviceUserId = %v, want 12", got)
	}
	if got := events[0]["recordTime"].(time.Time); !got.Equal(ts) {
		t.Errorf("recordTime = %v, want %v", got, ts)
	}
	if got := events[1]["userSn"]; got != 2 {
		t.Errorf("userSn = %v, want 2", got)
	}
}

func TestParseAttendanceRecordsFallsBackToSerial(t *testing.T) {
	ts := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	data := make([]byte, 4)
	data = append(data, attRecord40(42, "", ts)...)

	events := parseAttendanceRecords(data)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if got := events[0]["deviceUserId"]; got != "42" {
		t.Errorf("deviceUserId = %v, want serial fallback 42", got)
	}
}

func TestParseAttendanceRecordsSkipsEmpty(t *testing.T) {
	data := make([]byte, 4+attRecordSize) // all zero record

	events := parseAttendanceRecords(data)
	if len(events) != 0 {
		t.Errorf("got %d events, want 0", len(events))
	}
}

func TestParseAttendanceRecordsLegacy16(t *testing.T) {
	ts := time.Date(2024, 6, 15, 17, 5, 0, 0, time.UTC)

	rec := make([]byte, attRecordSizeLegacy)
	binary.LittleEndian.PutUint16(rec[0:2], 9)
	binary.LittleEndian.PutUint32(rec[4:8], encodeTime(ts))

	data := append(make([]byte, 4), rec...)

	events := parseAttendanceRecords(data)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if got := events[0]["deviceUserId"]; got != "9" {
		t.Errorf("deviceUserId = %v, want 9", got)
	}
	if got := events[0]["recordTime"].(time.Time); !got.Equal(ts) {
		t.Errorf("recordTime = %v, want %v", got, ts)
	}
}

func TestParseAttendanceRecordsTruncated(t *testing.T) {
	ts := time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC)

	data := make([]byte, 4)
	data = append(data, attRecord40(1, "7", ts)...)
	data = append(data, 0xaa, 0xbb, 0xcc) // partial trailing record

	events := parseAttendanceRecords(data)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1 whole record", len(events))
	}
}

func TestParseAttendanceRecordsEmptyDataset(t *testing.T) {
	if events := parseAttendanceRecords(nil); events != nil {
		t.Errorf("nil dataset: got %v", events)
	}
	if events := parseAttendanceRecords([]byte{0, 0, 0, 0}); events != nil {
		t.Errorf("prefix-only dataset: got %v", events)
	}
}

func TestParseUserRecords(t *testing.T) {
	rec := make([]byte, userRecordSize)
	binary.LittleEndian.PutUint16(rec[0:2], 3)
	rec[2] = 14 // admin role
	copy(rec[11:35], "Budi Santoso")
	copy(rec[48:57], "305")

	data := append(make([]byte, 4), rec...)

	users := parseUserRecords(data)
	if len(users) != 1 {
		t.Fatalf("got %d users, want 1", len(users))
	}

	u := users[0]
	if u.UID != 3 {
		t.Errorf("UID = %d, want 3", u.UID)
	}
	if u.UserID != "305" {
		t.Errorf("UserID = %q, want 305", u.UserID)
	}
	if u.Name != "Budi Santoso" {
		t.Errorf("Name = %q, want Budi Santoso", u.Name)
	}
	if u.Role != 14 {
		t.Errorf("Role = %d, want 14", u.Role)
	}
}

func TestTrimPadding(t *testing.T) {
	cases := []struct {
		in   []byte
		want string
	}{
		{[]byte{'1', '2', 0, 0, 0}, "12"},
		{[]byte{' ', '3', '0', '5', ' '}, "305"},
		{[]byte{0, 'x'}, ""},
		{[]byte{}, ""},
	}

	for _, c := range cases {
		if got := trimPadding(c.in); got != c.want {
			t.Errorf("trimPadding(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
