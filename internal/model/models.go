// Package model defines core data structures for fingerpulse.
package model

import (
	"fmt"
	"time"
)

// TerminalEndpoint identifies one physical fingerprint terminal.
type TerminalEndpoint struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Addr returns the host:port dial address.
func (e TerminalEndpoint) Addr() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// RawPunchEvent is a punch record as reported by a device. Field names vary
// between firmware revisions, so it stays an open map until normalization.
type RawPunchEvent map[string]interface{}

// NormalizedPunch is a device punch reduced to its canonical shape.
type NormalizedPunch struct {
	UserID    string `json:"user_id"`
	Date      string `json:"date"` // YYYY-MM-DD
	Time      string `json:"time"` // HH:MM, 24h
	IsMorning bool   `json:"is_morning"`
}

// DailyAttendanceRecord is one stored attendance row per employee per day.
// Empty CheckIn/CheckOut means "no punch recorded for that side of the day".
type DailyAttendanceRecord struct {
	FingerprintID string    `json:"fingerprint_id"`
	Date          string    `json:"date"`
	CheckIn       string    `json:"check_in,omitempty"`
	CheckOut      string    `json:"check_out,omitempty"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

// SyncResultRecord is the caller-facing projection of a merged attendance
// record, shaped for the dashboard frontend. EmployeeID is always "unknown";
// the caller resolves it against its own employee directory.
type SyncResultRecord struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employeeId"`
	Date           string  `json:"date"`
	Day            string  `json:"day"`
	ShiftIn        string  `json:"shiftIn"`
	FingerprintIn  *string `json:"fingerprintIn"`
	ShiftOut       string  `json:"shiftOut"`
	FingerprintOut *string `json:"fingerprintOut"`
	Remarks        string  `json:"remarks"`
	IsLate         bool    `json:"isLate"`
}

// ConnStatus is the outcome of one connectivity check.
type ConnStatus string

const (
	ConnUnreachable     ConnStatus = "unreachable"
	ConnProtocolError   ConnStatus = "protocol_error"
	ConnOnline          ConnStatus = "online"
	ConnSimulatedOnline ConnStatus = "simulated_online"
)

// ConnectivityReport is the per-terminal result of a connectivity test.
// Reports are returned to the caller and never persisted.
type ConnectivityReport struct {
	Endpoint TerminalEndpoint `json:"endpoint"`
	Status   ConnStatus       `json:"status"`
	Detail   string           `json:"detail,omitempty"`
}

// TerminalUser is an enrolled user as stored on a terminal.
type TerminalUser struct {
	UID    uint16 `json:"uid"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   int    `json:"role"`
}

// TerminalStatus is a persisted reachability sample for one terminal.
type TerminalStatus struct {
	ID        int64     `json:"id"`
	Host      string    `json:"host"`
	Port      int       `json:"port"`
	Reachable bool      `json:"reachable"`
	LatencyMs float64   `json:"latency_ms"`
	CheckedAt time.Time `json:"checked_at"`
}

// SyncRun records the outcome of one sync invocation.
type SyncRun struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Terminals  int       `json:"terminals"`
	Pulled     int       `json:"pulled"`
	Merged     int       `json:"merged"`
	Upserted   int       `json:"upserted"`
	Skipped    int       `json:"skipped"`
	Detail     string    `json:"detail,omitempty"`
}
