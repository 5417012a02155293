// Package storage provides attendance persistence for fingerpulse. Two
// drivers are supported: a local SQLite file (default) and a hosted Postgres
// database for deployments that share the store with the dashboard backend.
package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/user/fingerpulse/internal/util"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DB wraps the database connection.
type DB struct {
	*sql.DB
	driver string
	mu     sync.RWMutex
}

var (
	instance *DB
	once     sync.Once
)

// GetDB returns the singleton database instance.
func GetDB() *DB {
	return instance
}

// Initialize creates and initializes the singleton database from config.
func Initialize(cfg *util.Config) (*DB, error) {
	var initErr error
	once.Do(func() {
		var db *DB
		var err error

		switch cfg.StoreDriver {
		case DriverPostgres:
			db, err = Open(DriverPostgres, cfg.PostgresDSN)
		default:
			dbPath := filepath.Join(cfg.DataDir, "fingerpulse.db")
			db, err = Open(DriverSQLite, dbPath+"?_journal=WAL&_busy_timeout=5000")
		}
		if err != nil {
			initErr = err
			return
		}

		instance = db
	})

	return instance, initErr
}

// Open opens a non-singleton database connection and ensures the schema
// exists. Tests use this directly with an in-memory SQLite DSN.
func Open(driver, dsn string) (*DB, error) {
	driverName := "sqlite3"
	if driver == DriverPostgres {
		driverName = "postgres"
	}

	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver != DriverPostgres {
		// SQLite only supports one writer
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
	}

	db := &DB{DB: conn, driver: driver}

	if err := db.createTables(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

func (db *DB) createTables() error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	stamp := "DATETIME"
	if db.driver == DriverPostgres {
		serial = "BIGSERIAL PRIMARY KEY"
		stamp = "TIMESTAMPTZ"
	}

	tables := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS attendance_logs (
			id %s,
			fingerprint_id TEXT NOT NULL,
			date TEXT NOT NULL,
			check_in TEXT,
			check_out TEXT,
			updated_at %s,
			UNIQUE(fingerprint_id, date)
		)`, serial, stamp),
		`CREATE INDEX IF NOT EXISTS idx_attendance_logs_date ON attendance_logs(date)`,
		`CREATE INDEX IF NOT EXISTS idx_attendance_logs_fingerprint ON attendance_logs(fingerprint_id)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS terminal_status (
			id %s,
			host TEXT NOT NULL,
			port INTEGER NOT NULL,
			reachable INTEGER NOT NULL DEFAULT 0,
			latency_ms REAL,
			checked_at %s
		)`, serial, stamp),
		`CREATE INDEX IF NOT EXISTS idx_terminal_status_host ON terminal_status(host, port)`,
		`CREATE INDEX IF NOT EXISTS idx_terminal_status_checked ON terminal_status(checked_at)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS sync_runs (
			id TEXT PRIMARY KEY,
			started_at %s,
			finished_at %s,
			terminals INTEGER DEFAULT 0,
			pulled INTEGER DEFAULT 0,
			merged INTEGER DEFAULT 0,
			upserted INTEGER DEFAULT 0,
			skipped INTEGER DEFAULT 0,
			detail TEXT
		)`, stamp, stamp),
		`CREATE INDEX IF NOT EXISTS idx_sync_runs_started ON sync_runs(started_at)`,
	}

	for _, table := range tables {
		if _, err := db.Exec(table); err != nil {
			return fmt.Errorf("failed to execute: %s: %w", table, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}

// WithLock executes a function with write lock.
func (db *DB) WithLock(fn func() error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn()
}

// WithRLock executes a function with read lock.
func (db *DB) WithRLock(fn func() error) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn()
}

// rebind converts ?-style placeholders to the $n form lib/pq expects.
func (db *DB) rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}

	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
