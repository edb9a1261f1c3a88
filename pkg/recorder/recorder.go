// Package recorder persists telemetry pulled from the simulator to SQLite.
package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Register driver
)

// Recorder wraps the sql.DB connection.
type Recorder struct {
	*sql.DB
}

// Init opens the database and runs migrations.
func Init(path string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	// Enable WAL mode for better concurrency and set busy timeout
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=30000;"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	r := &Recorder{db}
	// Enforce single connection to avoid SQLITE_BUSY errors during writes
	db.SetMaxOpenConns(1)

	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return r, nil
}

func (r *Recorder) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS position_samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			lat REAL,
			lon REAL,
			alt REAL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS dref_samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			dataref TEXT NOT NULL,
			idx INTEGER NOT NULL DEFAULT 0,
			value REAL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_dref_samples_name ON dref_samples(dataref)`,
	}
	for _, q := range queries {
		if _, err := r.Exec(q); err != nil {
			return fmt.Errorf("query failed (%s): %w", q[:30], err)
		}
	}
	return nil
}

// RecordPosition stores one position sample.
func (r *Recorder) RecordPosition(lat, lon, alt float64) error {
	_, err := r.Exec("INSERT INTO position_samples (lat, lon, alt) VALUES (?, ?, ?)", lat, lon, alt)
	return err
}

// RecordDataref stores every element of a dataref read as one row each.
func (r *Recorder) RecordDataref(name string, values []float32) error {
	tx, err := r.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO dref_samples (dataref, idx, value) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, v := range values {
		if _, err := stmt.Exec(name, i, float64(v)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// PositionCount returns the number of stored position samples.
func (r *Recorder) PositionCount() (int, error) {
	var n int
	err := r.QueryRow("SELECT COUNT(*) FROM position_samples").Scan(&n)
	return n, err
}

// LatestDataref returns the most recent values stored for a dataref.
func (r *Recorder) LatestDataref(name string) ([]float32, error) {
	rows, err := r.Query(`SELECT value FROM dref_samples
		WHERE dataref = ? AND id IN (
			SELECT MAX(id) FROM dref_samples WHERE dataref = ? GROUP BY idx)
		ORDER BY idx`, name, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []float32
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, float32(v))
	}
	return values, rows.Err()
}

// Prune removes samples older than the specified duration.
func (r *Recorder) Prune(olderThan time.Duration) error {
	// Format time compatible with SQLite DEFAULT CURRENT_TIMESTAMP
	deadline := time.Now().Add(-olderThan).UTC().Format("2006-01-02 15:04:05")
	if _, err := r.Exec("DELETE FROM position_samples WHERE created_at < ?", deadline); err != nil {
		return err
	}
	_, err := r.Exec("DELETE FROM dref_samples WHERE created_at < ?", deadline)
	return err
}
