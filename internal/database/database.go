// Package database keeps chat transcripts in SQLite. Nothing here is
// needed to hold a conversation; sessions live in memory and the
// transcript is a best-effort record.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"titlechat/internal/models"
)

type DB struct {
	conn   *sql.DB
	logger *zap.Logger
}

// Open opens the SQLite database, applies WAL mode, and runs migrations.
func Open(path string, logger *zap.Logger) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	// Limit concurrent writers to avoid SQLITE_BUSY beyond the busy_timeout.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, logger: logger.Named("database")}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	db.logger.Info("database: ready", zap.String("path", path))
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
id         TEXT PRIMARY KEY,
region     TEXT NOT NULL DEFAULT '',
created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`,
		`CREATE TABLE IF NOT EXISTS messages (
id         TEXT PRIMARY KEY,
session_id TEXT NOT NULL,
role       TEXT NOT NULL,
content    TEXT NOT NULL,
created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
FOREIGN KEY(session_id) REFERENCES sessions(id)
)`,
		`CREATE TABLE IF NOT EXISTS session_answers (
session_id TEXT PRIMARY KEY,
json_dump  TEXT,
updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
FOREIGN KEY(session_id) REFERENCES sessions(id)
)`,
	}

	for _, stmt := range migrations {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("database: migration failed: %w", err)
		}
	}
	return nil
}

// ─── Sessions ─────────────────────────────────────────────────────────────────

// UpsertSession creates a session row if it doesn't exist.
func (db *DB) UpsertSession(id string) error {
	_, err := db.conn.Exec(
		`INSERT INTO sessions(id) VALUES(?) ON CONFLICT(id) DO NOTHING`, id,
	)
	return err
}

// SetSessionRegion records the region a session settled on.
func (db *DB) SetSessionRegion(id, region string) error {
	_, err := db.conn.Exec(
		`UPDATE sessions SET region = ?, updated_at = ? WHERE id = ?`,
		region, time.Now(), id,
	)
	return err
}

func (db *DB) GetSession(id string) (*models.Session, error) {
	var s models.Session
	err := db.conn.QueryRow(
		`SELECT id, region, created_at, updated_at FROM sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.Region, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ─── Messages ─────────────────────────────────────────────────────────────────

// InsertMessage saves a single transcript line.
func (db *DB) InsertMessage(m *models.Message) error {
	_, err := db.conn.Exec(
		`INSERT INTO messages(id, session_id, role, content) VALUES(?, ?, ?, ?)`,
		m.ID, m.SessionID, m.Role, m.Content,
	)
	return err
}

// GetRecentMessages returns the last n messages for a session, oldest first.
func (db *DB) GetRecentMessages(sessionID string, limit int) ([]models.Message, error) {
	rows, err := db.conn.Query(
		`SELECT id, session_id, role, content, created_at
		 FROM messages
		 WHERE session_id = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, rows.Err()
}

// ─── Answers ──────────────────────────────────────────────────────────────────

// UpsertAnswers saves the collected answers (name, phone, state) as JSON.
func (db *DB) UpsertAnswers(sessionID, jsonDump string) error {
	_, err := db.conn.Exec(
		`INSERT INTO session_answers(session_id, json_dump, updated_at)
		 VALUES(?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET json_dump = excluded.json_dump, updated_at = excluded.updated_at`,
		sessionID, jsonDump, time.Now(),
	)
	return err
}

func (db *DB) GetAnswers(sessionID string) (string, error) {
	var dump string
	err := db.conn.QueryRow(
		`SELECT json_dump FROM session_answers WHERE session_id = ?`, sessionID,
	).Scan(&dump)
	return dump, err
}
