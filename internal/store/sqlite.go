package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mcasas/reviewdeck/internal/apperr"
	"github.com/mcasas/reviewdeck/internal/models"
)

const blobSchemaSQL = `
CREATE TABLE IF NOT EXISTS blobs (
	key     TEXT PRIMARY KEY,
	payload TEXT NOT NULL
);
`

// SQLite implements Provider on top of a single-row key/value table.
// The whole collection is still one JSON payload keyed by StorageKey; the
// database just supplies durability and atomic replacement.
type SQLite struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the SQLite database and applies the schema.
func OpenSQLite(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(blobSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// Load reads and deserializes the collection payload.
func (s *SQLite) Load() ([]models.Review, error) {
	var payload string
	err := s.conn.QueryRow(`SELECT payload FROM blobs WHERE key = ?`, StorageKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return []models.Review{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: load blob: %w", err)
	}
	var reviews []models.Review
	if err := json.Unmarshal([]byte(payload), &reviews); err != nil {
		return nil, fmt.Errorf("%w: key %s: %v", apperr.ErrCorruptStore, StorageKey, err)
	}
	return reviews, nil
}

// Save upserts the full collection payload in one statement.
func (s *SQLite) Save(reviews []models.Review) error {
	data, err := json.Marshal(reviews)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", apperr.ErrStorage, err)
	}
	_, err = s.conn.Exec(`
		INSERT INTO blobs (key, payload) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload
	`, StorageKey, string(data))
	if err != nil {
		return fmt.Errorf("%w: upsert blob: %v", apperr.ErrStorage, err)
	}
	return nil
}
