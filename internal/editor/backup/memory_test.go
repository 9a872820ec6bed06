package backup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	e := &Entry{Key: "k", Content: "c", Timestamp: time.Now(), SaveError: "err"}
	require.NoError(t, s.Put(ctx, e))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *e, *got)

	// the store must hand out copies, not aliases
	got.Content = "mutated"
	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "c", again.Content)

	require.NoError(t, s.Remove(ctx, "k"))
	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore_Cleanup(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, &Entry{Key: "old", Timestamp: time.Now().Add(-2 * time.Hour)}))
	require.NoError(t, s.Put(ctx, &Entry{Key: "fresh", Timestamp: time.Now()}))

	n, err := s.Cleanup(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, _ := s.Get(ctx, "fresh")
	assert.NotNil(t, got)
}
