package storage

import (
	"fmt"
	"time"

	"github.com/user/fingerpulse/internal/model"
)

// TermStatusStorage handles terminal reachability history.
type TermStatusStorage struct {
	db *DB
}

// NewTermStatusStorage creates a new terminal status storage handler.
func NewTermStatusStorage(db *DB) *TermStatusStorage {
	return &TermStatusStorage{db: db}
}

// Save stores one reachability sample.
func (s *TermStatusStorage) Save(st *model.TerminalStatus) error {
	query := s.db.rebind(`INSERT INTO terminal_status (host, port, reachable, latency_ms, checked_at)
			  VALUES (?, ?, ?, ?, ?)`)

	reachable := 0
	if st.Reachable {
		reachable = 1
	}

	result, err := s.db.Exec(query, st.Host, st.Port, reachable, st.LatencyMs, st.CheckedAt)
	if err != nil {
		return fmt.Errorf("failed to save terminal status: %w", err)
	}

	if st.ID == 0 {
		if id, err := result.LastInsertId(); err == nil {
			st.ID = id
		}
	}

	return nil
}

// Latest returns the most recent sample per terminal.
func (s *TermStatusStorage) Latest() ([]model.TerminalStatus, error) {
	query := `SELECT t.id, t.host, t.port, t.reachable, t.latency_ms, t.checked_at
			  FROM terminal_status t
			  JOIN (SELECT host, port, MAX(checked_at) AS latest
					FROM terminal_status GROUP BY host, port) q
			  ON t.host = q.host AND t.port = q.port AND t.checked_at = q.latest
			  ORDER BY t.host, t.port`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query terminal status: %w", err)
	}
	defer rows.Close()

	var statuses []model.TerminalStatus
	for rows.Next() {
		var st model.TerminalStatus
		var reachable int
		if err := rows.Scan(&st.ID, &st.Host, &st.Port, &reachable, &st.LatencyMs, &st.CheckedAt); err != nil {
			continue
		}
		st.Reachable = reachable != 0
		statuses = append(statuses, st)
	}

	return statuses, rows.Err()
}

// History returns samples for one terminal since a given time.
func (s *TermStatusStorage) History(host string, port int, since time.Time) ([]model.TerminalStatus, error) {
	query := s.db.rebind(`SELECT id, host, port, reachable, latency_ms, checked_at
			  FROM terminal_status WHERE host = ? AND port = ? AND checked_at >= ?
			  ORDER BY checked_at DESC`)

	rows, err := s.db.Query(query, host, port, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	var statuses []model.TerminalStatus
	for rows.Next() {
		var st model.TerminalStatus
		var reachable int
		if err := rows.Scan(&st.ID, &st.Host, &st.Port, &reachable, &st.LatencyMs, &st.CheckedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status: %w", err)
		}
		st.Reachable = reachable != 0
		statuses = append(statuses, st)
	}

	return statuses, rows.Err()
}

// CountReachable returns how many terminals were reachable in their latest
// sample.
func (s *TermStatusStorage) CountReachable() (int, error) {
	latest, err := s.Latest()
	if err != nil {
		return 0, err
	}

	count := 0
	for _, st := range latest {
		if st.Reachable {
			count++
		}
	}
	return count, nil
}
