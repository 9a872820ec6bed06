package backup

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SQLiteStore persists backup entries in a local SQLite database.
// The entry itself is stored as a JSON payload; the write time is kept in
// a separate indexed column so Cleanup can run as a single DELETE.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// InitDatabase opens (creating if needed) the local database file and
// ensures the schema exists. Callers must import a database/sql driver
// registered under the name "sqlite" (modernc.org/sqlite).
func InitDatabase(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup db: %w", err)
	}
	_, err = db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS backups (
  key TEXT PRIMARY KEY,
  payload BLOB NOT NULL,
  updated_at INTEGER NOT NULL
);
`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init backup schema: %w", err)
	}
	return db, nil
}

func (s *SQLiteStore) Put(ctx context.Context, e *Entry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode backup[%s]: %w", e.Key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO backups (key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, e.Key, payload, e.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to put backup[%s]: %w", e.Key, err)
	}
	return nil
}

// Get returns the entry for key, or (nil, nil) when none exists. A payload
// that fails to decode is treated as "no backup" rather than an error, so
// a corrupt row can never break the editor on mount.
func (s *SQLiteStore) Get(ctx context.Context, key string) (*Entry, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM backups WHERE key = ?`, key).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get backup[%s]: %w", key, err)
	}

	var e Entry
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, nil
	}
	return &e, nil
}

func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM backups WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to remove backup[%s]: %w", key, err)
	}
	return nil
}

// Cleanup deletes entries last written before now-olderThan. The cutoff is
// compared against the updated_at column inside one statement, so a Put
// racing the cleanup either lands before the DELETE (and survives, being
// newer than the cutoff) or after it.
func (s *SQLiteStore) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UnixMilli()
	res, err := s.db.ExecContext(ctx, `DELETE FROM backups WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up backups: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
