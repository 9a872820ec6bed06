package connectivity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_InitialStateReadSynchronously(t *testing.T) {
	m := NewMonitor(SourceFunc(func() bool { return false }), time.Second, nil)
	assert.Equal(t, State{IsOnline: false, WasOffline: false}, m.State())

	m2 := NewMonitor(SourceFunc(func() bool { return true }), time.Second, nil)
	assert.True(t, m2.State().IsOnline)
}

func TestMonitor_ReconnectSetsWasOfflineThenClearsOnce(t *testing.T) {
	m := NewMonitor(SourceFunc(func() bool { return true }), 40*time.Millisecond, nil)
	defer m.Close()

	m.SetOnline(false)
	assert.Equal(t, State{IsOnline: false, WasOffline: false}, m.State())

	m.SetOnline(true)
	assert.Equal(t, State{IsOnline: true, WasOffline: true}, m.State())

	require.Eventually(t, func() bool {
		return !m.State().WasOffline
	}, time.Second, 5*time.Millisecond)
	assert.True(t, m.State().IsOnline)
}

func TestMonitor_SecondReconnectRestartsClearTimer(t *testing.T) {
	m := NewMonitor(SourceFunc(func() bool { return true }), 60*time.Millisecond, nil)
	defer m.Close()

	m.SetOnline(false)
	m.SetOnline(true)

	// halfway through the window, bounce again
	time.Sleep(30 * time.Millisecond)
	m.SetOnline(false)
	m.SetOnline(true)

	// the original timer would have fired around now; the restart must
	// keep WasOffline set
	time.Sleep(40 * time.Millisecond)
	assert.True(t, m.State().WasOffline, "stale timer must not clear a restarted window")

	require.Eventually(t, func() bool {
		return !m.State().WasOffline
	}, time.Second, 5*time.Millisecond)
}

func TestMonitor_GoingOfflineDoesNotTouchWasOffline(t *testing.T) {
	m := NewMonitor(SourceFunc(func() bool { return true }), time.Minute, nil)
	defer m.Close()

	m.SetOnline(false)
	m.SetOnline(true)
	require.True(t, m.State().WasOffline)

	m.SetOnline(false)
	st := m.State()
	assert.False(t, st.IsOnline)
	assert.True(t, st.WasOffline)
}

func TestMonitor_RepeatedSameObservationIsNoTransition(t *testing.T) {
	var mu sync.Mutex
	var changes []State
	m := NewMonitor(SourceFunc(func() bool { return true }), time.Minute, func(st State) {
		mu.Lock()
		changes = append(changes, st)
		mu.Unlock()
	})
	defer m.Close()

	m.SetOnline(true)
	m.SetOnline(true)
	mu.Lock()
	assert.Empty(t, changes)
	mu.Unlock()
}

func TestMonitor_CloseCancelsClearTimer(t *testing.T) {
	m := NewMonitor(SourceFunc(func() bool { return true }), 20*time.Millisecond, nil)
	m.SetOnline(false)
	m.SetOnline(true)
	m.Close()

	time.Sleep(50 * time.Millisecond)
	// state frozen at close time
	assert.True(t, m.State().WasOffline)
}

type fakePinger struct {
	mu  sync.Mutex
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakePinger) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func TestProber_DrivesMonitorTransitions(t *testing.T) {
	ping := &fakePinger{}
	m := NewMonitor(SourceFunc(func() bool { return true }), time.Minute, nil)
	defer m.Close()

	p := NewProber(ping, m, 10*time.Millisecond, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	ping.setErr(errors.New("unreachable"))
	require.Eventually(t, func() bool { return !m.State().IsOnline }, time.Second, 5*time.Millisecond)

	ping.setErr(nil)
	require.Eventually(t, func() bool { return m.State().IsOnline }, time.Second, 5*time.Millisecond)
	assert.True(t, m.State().WasOffline)
}
