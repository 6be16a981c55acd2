package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// SessionRow is one played session
type SessionRow struct {
	ID           string
	Role         string
	StartedAt    time.Time
	EndedAt      sql.NullTime
	LevelReached int
	Kills        int
	EndCause     string
}

// EventRow is one journaled protocol event
type EventRow struct {
	ID        int64
	SessionID string
	Direction string
	Type      string
	Data      string
	CreatedAt string
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		role TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		ended_at DATETIME,
		level_reached INTEGER NOT NULL DEFAULT 1,
		kills INTEGER NOT NULL DEFAULT 0,
		end_cause TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		direction TEXT NOT NULL,
		event_type TEXT NOT NULL,
		data TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id);
	`
	_, err := db.conn.Exec(schema)
	if err != nil {
		log.Printf("DB migration error: %v", err)
	}
	return err
}

// CreateSession records the start of a session
func (db *DB) CreateSession(id, role string, level int) error {
	_, err := db.conn.Exec(
		"INSERT INTO sessions (id, role, started_at, level_reached) VALUES (?, ?, ?, ?)",
		id, role, time.Now().UTC(), level,
	)
	return err
}

// UpdateSession stores progress for a running session. The level only
// ever moves up.
func (db *DB) UpdateSession(id string, level, kills int) error {
	_, err := db.conn.Exec(
		"UPDATE sessions SET level_reached = MAX(level_reached, ?), kills = ? WHERE id = ?",
		level, kills, id,
	)
	return err
}

// EndSession closes a session row
func (db *DB) EndSession(id, cause string, level, kills int) error {
	_, err := db.conn.Exec(
		`UPDATE sessions SET ended_at = ?, end_cause = ?, level_reached = MAX(level_reached, ?), kills = ?
		WHERE id = ?`,
		time.Now().UTC(), cause, level, kills, id,
	)
	return err
}

// GetSession returns a session by ID, nil if unknown
func (db *DB) GetSession(id string) (*SessionRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, role, started_at, ended_at, level_reached, kills, end_cause FROM sessions WHERE id = ?",
		id,
	)
	s := &SessionRow{}
	err := row.Scan(&s.ID, &s.Role, &s.StartedAt, &s.EndedAt, &s.LevelReached, &s.Kills, &s.EndCause)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// RecentSessions returns the newest sessions first
func (db *DB) RecentSessions(limit int) ([]SessionRow, error) {
	rows, err := db.conn.Query(`
		SELECT id, role, started_at, ended_at, level_reached, kills, end_cause
		FROM sessions
		ORDER BY started_at DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SessionRow
	for rows.Next() {
		var s SessionRow
		if err := rows.Scan(&s.ID, &s.Role, &s.StartedAt, &s.EndedAt, &s.LevelReached, &s.Kills, &s.EndCause); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// SessionEvents returns the journal of a session in insertion order
func (db *DB) SessionEvents(sessionID string) ([]EventRow, error) {
	rows, err := db.conn.Query(
		"SELECT id, session_id, direction, event_type, COALESCE(data, ''), created_at FROM events WHERE session_id = ? ORDER BY id",
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []EventRow
	for rows.Next() {
		var e EventRow
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Direction, &e.Type, &e.Data, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// GetSetting returns a stored setting, "" if missing
func (db *DB) GetSetting(key string) string {
	var v string
	if err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v); err != nil {
		return ""
	}
	return v
}

// SetSetting stores a setting
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}
