package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/user/fingerpulse/internal/model"
)

// AttendanceStorage handles daily attendance persistence. It satisfies the
// syncer's store contract.
type AttendanceStorage struct {
	db *DB
}

// NewAttendanceStorage creates a new attendance storage handler.
func NewAttendanceStorage(db *DB) *AttendanceStorage {
	return &AttendanceStorage{db: db}
}

// UpsertDaily writes one attendance record keyed by (fingerprint_id, date).
// The write is a single idempotent statement: re-running the same batch only
// reconfirms identical values, and a stored punch never regresses to NULL
// even when concurrent invocations race on the same key.
func (s *AttendanceStorage) UpsertDaily(rec *model.DailyAttendanceRecord) error {
	query := s.db.rebind(`INSERT INTO attendance_logs (fingerprint_id, date, check_in, check_out, updated_at)
			  VALUES (?, ?, ?, ?, ?)
			  ON CONFLICT(fingerprint_id, date) DO UPDATE SET
			  check_in = COALESCE(excluded.check_in, attendance_logs.check_in),
			  check_out = COALESCE(excluded.check_out, attendance_logs.check_out),
			  updated_at = excluded.updated_at`)

	_, err := s.db.Exec(query,
		rec.FingerprintID, rec.Date,
		nullable(rec.CheckIn), nullable(rec.CheckOut), time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert attendance: %w", err)
	}

	return nil
}

// GetDaily returns the stored record for one key, or nil when absent.
func (s *AttendanceStorage) GetDaily(fingerprintID, date string) (*model.DailyAttendanceRecord, error) {
	query := s.db.rebind(`SELECT fingerprint_id, date, check_in, check_out, updated_at
			  FROM attendance_logs WHERE fingerprint_id = ? AND date = ?`)

	var rec model.DailyAttendanceRecord
	var checkIn, checkOut sql.NullString
	var updatedAt sql.NullTime

	err := s.db.QueryRow(query, fingerprintID, date).Scan(
		&rec.FingerprintID, &rec.Date, &checkIn, &checkOut, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}

	rec.CheckIn = checkIn.String
	rec.CheckOut = checkOut.String
	if updatedAt.Valid {
		rec.UpdatedAt = updatedAt.Time
	}

	return &rec, nil
}

// ListSince returns records for dates on or after the given YYYY-MM-DD date.
func (s *AttendanceStorage) ListSince(date string) ([]model.DailyAttendanceRecord, error) {
	query := s.db.rebind(`SELECT fingerprint_id, date, check_in, check_out, updated_at
			  FROM attendance_logs WHERE date >= ? ORDER BY date DESC, fingerprint_id`)

	rows, err := s.db.Query(query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var records []model.DailyAttendanceRecord
	for rows.Next() {
		var rec model.DailyAttendanceRecord
		var checkIn, checkOut sql.NullString
		var updatedAt sql.NullTime

		if err := rows.Scan(&rec.FingerprintID, &rec.Date, &checkIn, &checkOut, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}

		rec.CheckIn = checkIn.String
		rec.CheckOut = checkOut.String
		if updatedAt.Valid {
			rec.UpdatedAt = updatedAt.Time
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Count returns the number of stored attendance rows.
func (s *AttendanceStorage) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM attendance_logs").Scan(&count)
	return count, err
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
