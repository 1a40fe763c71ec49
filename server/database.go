package main

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the sqlite connection
type DB struct {
	conn *sql.DB
}

// Pilot is an account row
type Pilot struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// RunRecord summarizes a finished arena run
type RunRecord struct {
	SessionID string
	Duration  float64
	EndedAt   time.Time
}

// OpenDB opens (or creates) the sqlite database at path
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// sqlite handles one writer at a time
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pilots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE COLLATE NOCASE,
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		duration REAL NOT NULL,
		ended_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS run_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		pilot_id INTEGER NOT NULL DEFAULT 0,
		session_id TEXT NOT NULL,
		data TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_run_events_session ON run_events(session_id);
	CREATE INDEX IF NOT EXISTS idx_run_events_pilot ON run_events(pilot_id);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close closes the database
func (db *DB) Close() error {
	return db.conn.Close()
}

// CreatePilot inserts a new account and returns its id
func (db *DB) CreatePilot(username, passwordHash string) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO pilots (username, password_hash) VALUES (?, ?)",
		username, passwordHash,
	)
	if err != nil {
		return 0, fmt.Errorf("create pilot: %w", err)
	}
	return res.LastInsertId()
}

// GetPilotByUsername returns the pilot or nil if not found
func (db *DB) GetPilotByUsername(username string) (*Pilot, error) {
	var p Pilot
	err := db.conn.QueryRow(
		"SELECT id, username, password_hash, created_at FROM pilots WHERE username = ?",
		username,
	).Scan(&p.ID, &p.Username, &p.PasswordHash, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pilot: %w", err)
	}
	return &p, nil
}

// UsernameExists checks if a username is taken
func (db *DB) UsernameExists(username string) (bool, error) {
	var n int
	err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM pilots WHERE username = ?", username,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return n > 0, nil
}

// GetSetting returns a settings value, "" if absent
func (db *DB) GetSetting(key string) (string, error) {
	var v string
	err := db.conn.QueryRow(
		"SELECT value FROM settings WHERE key = ?", key,
	).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting: %w", err)
	}
	return v, nil
}

// SetSetting upserts a settings value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}

// RecordRun stores a finished run's duration in seconds
func (db *DB) RecordRun(sessionID string, duration float64) error {
	_, err := db.conn.Exec(
		"INSERT INTO runs (session_id, duration) VALUES (?, ?)",
		sessionID, duration,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent finished runs, newest first
func (db *DB) RecentRuns(limit int) ([]RunRecord, error) {
	rows, err := db.conn.Query(
		"SELECT session_id, duration, ended_at FROM runs ORDER BY ended_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.SessionID, &r.Duration, &r.EndedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertEvents writes a batch of run events in one transaction
func (db *DB) InsertEvents(events []RunEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	stmt, err := tx.Prepare(
		"INSERT INTO run_events (event_type, pilot_id, session_id, data, created_at) VALUES (?, ?, ?, ?, ?)",
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.Exec(e.Type, e.PilotID, e.SessionID, e.Data, e.At); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return tx.Commit()
}

// PilotKillCount tallies enemy kills credited to a pilot
func (db *DB) PilotKillCount(pilotID int64) (int, error) {
	var n int
	err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM run_events WHERE event_type = ? AND pilot_id = ?",
		EvtEnemyKill, pilotID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("kill count: %w", err)
	}
	return n, nil
}
