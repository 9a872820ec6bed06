package editor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoauthor/autoauthor/internal/editor/backup"
	"github.com/autoauthor/autoauthor/internal/editor/recovery"
	"github.com/autoauthor/autoauthor/internal/editor/saver"
	"github.com/autoauthor/autoauthor/internal/editor/session"
	"github.com/autoauthor/autoauthor/internal/logging"
)

type fakeBackend struct {
	mu       sync.Mutex
	saveErr  error
	saved    map[string]string
	status   *session.Status
	pingErr  error
	logouts  int
	refreshs int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{saved: make(map[string]string)}
}

func (f *fakeBackend) SaveContent(ctx context.Context, key, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[key] = body
	return nil
}

func (f *fakeBackend) FetchSessionStatus(ctx context.Context) (*session.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status == nil {
		return nil, nil
	}
	cp := *f.status
	return &cp, nil
}

func (f *fakeBackend) RefreshSession(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshs++
	return nil
}

func (f *fakeBackend) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	return nil
}

func (f *fakeBackend) LogoutAll(ctx context.Context, keepCurrent bool) error { return nil }

func (f *fakeBackend) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeBackend) setSaveErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveErr = err
}

func (f *fakeBackend) savedBody(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.saved[key]
	return v, ok
}

func nopLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestController(t *testing.T, b *fakeBackend) (*Controller, *backup.MemoryStore) {
	t.Helper()
	store := backup.NewMemoryStore()
	c := New(b, store, nopLogger(), Options{
		Debounce:      15 * time.Millisecond,
		SaveTimeout:   time.Second,
		PollInterval:  20 * time.Millisecond,
		ProbeInterval: 20 * time.Millisecond,
	})
	t.Cleanup(c.Close)
	return c, store
}

func TestController_InitialConnectivityProbedSynchronously(t *testing.T) {
	b := newFakeBackend()
	b.pingErr = errors.New("down")
	c, _ := newTestController(t, b)
	assert.False(t, c.Connectivity.State().IsOnline)
}

func TestController_EditSaveRecoverCycle(t *testing.T) {
	b := newFakeBackend()
	b.setSaveErr(errors.New("network error"))
	c, store := newTestController(t, b)
	ctx := context.Background()

	c.Saver.Schedule("book1:ch1", "Hello")
	require.Eventually(t, func() bool {
		e, err := store.Get(ctx, "book1:ch1")
		return err == nil && e != nil
	}, time.Second, 5*time.Millisecond)

	flow := c.Recover("book1:ch1")
	e, err := flow.Check(ctx)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, recovery.PhaseBackupFound, flow.Phase())

	b.setSaveErr(nil)
	content, err := flow.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hello", content)

	require.Eventually(t, func() bool {
		body, ok := b.savedBody("book1:ch1")
		return ok && body == "Hello"
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		e, err := store.Get(ctx, "book1:ch1")
		return err == nil && e == nil
	}, time.Second, 5*time.Millisecond)
}

func TestController_SessionPollingRuns(t *testing.T) {
	b := newFakeBackend()
	b.status = &session.Status{SessionID: "s1", Active: true}
	c, _ := newTestController(t, b)

	require.Eventually(t, func() bool {
		st := c.Sessions.Status()
		return st != nil && st.SessionID == "s1"
	}, time.Second, 5*time.Millisecond)
}

func TestController_LogoutClearsAlerts(t *testing.T) {
	b := newFakeBackend()
	b.status = &session.Status{SessionID: "s1", Active: true, IdleWarning: true}
	c, _ := newTestController(t, b)

	require.Eventually(t, func() bool {
		return len(c.Alerts.Active()) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Logout(context.Background()))
	assert.Empty(t, c.Alerts.Active())
	assert.Nil(t, c.Sessions.Status())
}

func TestController_SaveStateCallback(t *testing.T) {
	b := newFakeBackend()
	store := backup.NewMemoryStore()

	var mu sync.Mutex
	var last saver.Status
	c := New(b, store, nopLogger(), Options{
		Debounce:      15 * time.Millisecond,
		PollInterval:  time.Minute,
		ProbeInterval: time.Minute,
		OnSaveState: func(_ string, st saver.Status) {
			mu.Lock()
			last = st
			mu.Unlock()
		},
	})
	t.Cleanup(c.Close)

	c.Saver.Schedule("k", "v")
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return last.State == saver.StateSaved
	}, time.Second, 5*time.Millisecond)
}
