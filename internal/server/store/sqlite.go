// Package store persists document fragments for the dev server, keyed by
// the same opaque content key the editor uses.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/autoauthor/autoauthor/internal/common"
)

type SQLiteDocumentStore struct {
	db *sql.DB
}

func NewSQLiteDocumentStore(db *sql.DB) *SQLiteDocumentStore {
	return &SQLiteDocumentStore{db: db}
}

// InitDatabase opens the document database and ensures the schema exists.
// Callers must import a database/sql driver registered under the name
// "sqlite" (modernc.org/sqlite).
func InitDatabase(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document db: %w", err)
	}
	_, err = db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS documents (
  key TEXT PRIMARY KEY,
  body TEXT NOT NULL,
  updated_at INTEGER NOT NULL
);
`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init document schema: %w", err)
	}
	return db, nil
}

func (s *SQLiteDocumentStore) Save(ctx context.Context, key, body string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (key, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`, key, body, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save document[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLiteDocumentStore) Get(ctx context.Context, key string) (string, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE key = ?`, key).Scan(&body)
	if err == sql.ErrNoRows {
		return "", common.ErrorNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get document[%s]: %w", key, err)
	}
	return body, nil
}
