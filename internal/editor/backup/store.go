// Package backup implements the durable local fallback for content that
// failed to persist remotely. At most one entry exists per content key;
// a newer write overwrites the older one, and the entry is removed the
// moment a save for that key succeeds.
package backup

import (
	"context"
	"time"
)

// Entry is the durable fallback copy of unsynced content.
//
// Fields:
//   - Key: opaque string scoping the entry (e.g. "bookId:chapterId").
//   - Content: the serialized content that failed to save.
//   - Timestamp: when the triggering failure happened.
//   - SaveError: short human-readable reason for the failure.
type Entry struct {
	Key       string    `json:"key"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	SaveError string    `json:"save_error"`
}

// Store is the durable key-scoped backup storage.
//
// Contract:
//   - Put upserts: a second Put for the same key replaces the entry.
//   - Get returns (nil, nil) when no entry exists for the key, and also
//     when the stored payload cannot be decoded — corrupt data is treated
//     as absence, never as an error surfaced to the editor.
//   - Remove of a missing key is a no-op.
//   - Cleanup deletes entries whose last write is older than the given age
//     and reports how many were removed. It must never delete entries newer
//     than the threshold, even when racing a concurrent Put.
type Store interface {
	Put(ctx context.Context, e *Entry) error
	Get(ctx context.Context, key string) (*Entry, error)
	Remove(ctx context.Context, key string) error
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}
