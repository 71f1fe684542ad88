package main

import (
	"database/sql"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// RunRow is one finished run (a cleared level or a game over) observed by the relay
type RunRow struct {
	ID        int64     `json:"id"`
	Room      string    `json:"room"`
	Outcome   string    `json:"outcome"`
	Level     int       `json:"level"`
	Score     int       `json:"score"`
	Coins     int       `json:"coins"`
	Frames    uint64    `json:"frames"`
	Players   []string  `json:"players"`
	CreatedAt time.Time `json:"createdAt"`
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
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

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		room TEXT NOT NULL,
		outcome TEXT NOT NULL,
		level INTEGER NOT NULL DEFAULT 0,
		score INTEGER NOT NULL DEFAULT 0,
		coins INTEGER NOT NULL DEFAULT 0,
		frames INTEGER NOT NULL DEFAULT 0,
		players TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_score ON runs(score DESC);
	`
	_, err := db.conn.Exec(schema)
	if err != nil {
		log.Printf("DB migration error: %v", err)
	}
	return err
}

// GetSetting returns a stored setting, or "" when unset
func (db *DB) GetSetting(key string) string {
	var v string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v)
	if err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).WithField("key", key).Warn("read setting")
		}
		return ""
	}
	return v
}

// SetSetting stores a setting, replacing any previous value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// RecordRuns writes a batch of runs in one transaction
func (db *DB) RecordRuns(runs []RunRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO runs (room, outcome, level, score, coins, frames, players, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range runs {
		_, err := stmt.Exec(r.Room, r.Outcome, r.Level, r.Score, r.Coins, int64(r.Frames),
			strings.Join(r.Players, ","), r.CreatedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// TopRuns returns the best runs by score, newest first among equal scores
func (db *DB) TopRuns(limit int) ([]RunRow, error) {
	rows, err := db.conn.Query(`
		SELECT id, room, outcome, level, score, coins, frames, players, created_at
		FROM runs
		ORDER BY score DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]RunRow, 0, limit)
	for rows.Next() {
		var (
			r       RunRow
			frames  int64
			players string
			created string
		)
		if err := rows.Scan(&r.ID, &r.Room, &r.Outcome, &r.Level, &r.Score, &r.Coins, &frames, &players, &created); err != nil {
			return nil, err
		}
		r.Frames = uint64(frames)
		if players != "" {
			r.Players = strings.Split(players, ",")
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		result = append(result, r)
	}
	return result, rows.Err()
}
