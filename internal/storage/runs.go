package storage

import (
	"database/sql"
	"fmt"

	"github.com/user/fingerpulse/internal/model"
)

// RunStorage handles sync run history.
type RunStorage struct {
	db *DB
}

// NewRunStorage creates a new sync run storage handler.
func NewRunStorage(db *DB) *RunStorage {
	return &RunStorage{db: db}
}

// Save stores the outcome of one sync invocation.
func (s *RunStorage) Save(run *model.SyncRun) error {
	query := s.db.rebind(`INSERT INTO sync_runs (id, started_at, finished_at, terminals, pulled, merged, upserted, skipped, detail)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.db.Exec(query,
		run.ID, run.StartedAt, run.FinishedAt,
		run.Terminals, run.Pulled, run.Merged, run.Upserted, run.Skipped,
		run.Detail)
	if err != nil {
		return fmt.Errorf("failed to save sync run: %w", err)
	}

	return nil
}

// Latest returns the most recent sync run, or nil when none exist yet.
func (s *RunStorage) Latest() (*model.SyncRun, error) {
	query := `SELECT id, started_at, finished_at, terminals, pulled, merged, upserted, skipped, detail
			  FROM sync_runs ORDER BY started_at DESC LIMIT 1`

	run, err := s.scanRun(s.db.QueryRow(query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

// List returns the most recent runs, newest first.
func (s *RunStorage) List(limit int) ([]model.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := s.db.rebind(`SELECT id, started_at, finished_at, terminals, pulled, merged, upserted, skipped, detail
			  FROM sync_runs ORDER BY started_at DESC LIMIT ?`)

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []model.SyncRun
	for rows.Next() {
		var run model.SyncRun
		var detail sql.NullString
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt,
			&run.Terminals, &run.Pulled, &run.Merged, &run.Upserted, &run.Skipped,
			&detail); err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		run.Detail = detail.String
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Count returns the number of recorded sync runs.
func (s *RunStorage) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM sync_runs").Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *RunStorage) scanRun(row rowScanner) (*model.SyncRun, error) {
	var run model.SyncRun
	var detail sql.NullString

	err := row.Scan(&run.ID, &run.StartedAt, &run.FinishedAt,
		&run.Terminals, &run.Pulled, &run.Merged, &run.Upserted, &run.Skipped,
		&detail)
	if err != nil {
		return nil, err
	}

	run.Detail = detail.String
	return &run, nil
}
