package main

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// PlayerRow is a registered account
type PlayerRow struct {
	ID        int64
	Username  string
	PassHash  string
	CreatedAt time.Time
}

// Run outcomes
const (
	OutcomeDestroyed = "destroyed"
	OutcomeAbandoned = "abandoned"
)

// RunRow is one finished run of a session's pilot
type RunRow struct {
	ID        int64         `json:"id"`
	PlayerID  int64         `json:"pid,omitempty"` // 0 for guests
	Pilot     string        `json:"pilot"`
	SessionID string        `json:"sid"`
	Level     int           `json:"level"`
	Score     int           `json:"score"`
	Duration  time.Duration `json:"duration"`
	Outcome   string        `json:"outcome"`
	CreatedAt time.Time     `json:"created_at"`
}

// LeaderboardEntry is one row of the leaderboard
type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	Pilot    string  `json:"pilot"`
	Score    int     `json:"score"`
	Level    int     `json:"level"`
	Duration float64 `json:"duration"`
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// sqlite allows a single writer
	conn.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		pass_hash TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		player_id INTEGER REFERENCES players(id),
		pilot TEXT NOT NULL,
		session_id TEXT NOT NULL,
		level INTEGER NOT NULL DEFAULT 0,
		score INTEGER NOT NULL DEFAULT 0,
		duration REAL NOT NULL DEFAULT 0,
		outcome TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS analytics_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		player_id INTEGER,
		session_id TEXT,
		data TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_score ON runs(score DESC);
	CREATE INDEX IF NOT EXISTS idx_events_type ON analytics_events(event_type, created_at);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// CreatePlayer creates an account and returns its id
func (db *DB) CreatePlayer(username, passHash string) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO players (username, pass_hash) VALUES (?, ?)",
		username, passHash,
	)
	if err != nil {
		return 0, fmt.Errorf("insert player: %w", err)
	}
	return res.LastInsertId()
}

// GetPlayerByUsername returns nil without error when no such player exists
func (db *DB) GetPlayerByUsername(username string) (*PlayerRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, pass_hash, created_at FROM players WHERE username = ?",
		username,
	)
	p := &PlayerRow{}
	err := row.Scan(&p.ID, &p.Username, &p.PassHash, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get player %q: %w", username, err)
	}
	return p, nil
}

// UsernameExists checks if a username is taken
func (db *DB) UsernameExists(username string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM players WHERE username = ?", username).Scan(&count)
	return count > 0, err
}

// GetSetting returns "" when key is unset
func (db *DB) GetSetting(key string) string {
	var v string
	if err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v); err != nil {
		return ""
	}
	return v
}

func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// RecordRun stores a finished run and returns its id
func (db *DB) RecordRun(r RunRow) (int64, error) {
	pid := sql.NullInt64{Int64: r.PlayerID, Valid: r.PlayerID > 0}
	res, err := db.conn.Exec(
		`INSERT INTO runs (player_id, pilot, session_id, level, score, duration, outcome)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		pid, r.Pilot, r.SessionID, r.Level, r.Score, r.Duration.Seconds(), r.Outcome,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// GetLeaderboard returns the best runs, highest score first
func (db *DB) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	rows, err := db.conn.Query(`
		SELECT pilot, score, level, duration FROM runs
		ORDER BY score DESC, level DESC, duration ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	result := make([]LeaderboardEntry, 0, limit)
	for rows.Next() {
		e := LeaderboardEntry{Rank: len(result) + 1}
		if err := rows.Scan(&e.Pilot, &e.Score, &e.Level, &e.Duration); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// RunsForPlayer returns a player's most recent runs
func (db *DB) RunsForPlayer(playerID int64, limit int) ([]RunRow, error) {
	rows, err := db.conn.Query(`
		SELECT id, pilot, session_id, level, score, duration, outcome, created_at
		FROM runs WHERE player_id = ?
		ORDER BY id DESC LIMIT ?`, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("runs for %d: %w", playerID, err)
	}
	defer rows.Close()

	var result []RunRow
	for rows.Next() {
		r := RunRow{PlayerID: playerID}
		var secs float64
		if err := rows.Scan(&r.ID, &r.Pilot, &r.SessionID, &r.Level, &r.Score, &secs, &r.Outcome, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Duration = time.Duration(secs * float64(time.Second))
		result = append(result, r)
	}
	return result, rows.Err()
}
