// Package connectivity tracks whether the editor can reach the backend and
// exposes a short-lived "just recovered" signal after a reconnect, used by
// the UI to announce that pending work can resume.
package connectivity

import (
	"context"
	"sync"
	"time"
)

// State is the reactive connectivity pair.
type State struct {
	IsOnline   bool
	WasOffline bool
}

// Source reports the current connectivity synchronously. Abstracted so the
// monitor is testable without a live backend; production code wires a ping
// probe through SourceFunc.
type Source interface {
	Online() bool
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func() bool

func (f SourceFunc) Online() bool { return f() }

const DefaultRecoveryWindow = 5 * time.Second

// Monitor owns the connectivity state for one editor instance. The initial
// state is read synchronously at construction, so there is no window with a
// default value that disagrees with reality.
//
// On an offline→online transition WasOffline is set and a single clear
// timer is armed; a second reconnect inside the window restarts that timer
// instead of stacking a second one. A stale timer from a previous arm is
// ignored via a generation check, so it can never clear WasOffline early.
type Monitor struct {
	window   time.Duration
	onChange func(State)

	mu         sync.Mutex
	state      State
	clearTimer *time.Timer
	clearGen   uint64
	closed     bool
}

// NewMonitor reads the initial state from src and returns a monitor with
// the given recovery window (0 means DefaultRecoveryWindow). onChange may
// be nil; when set it observes every state change and must not block.
func NewMonitor(src Source, window time.Duration, onChange func(State)) *Monitor {
	if window <= 0 {
		window = DefaultRecoveryWindow
	}
	return &Monitor{
		window:   window,
		onChange: onChange,
		state:    State{IsOnline: src.Online()},
	}
}

// SetOnline feeds a connectivity observation into the monitor. Repeated
// observations of the same value are not transitions and change nothing.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.closed || m.state.IsOnline == online {
		m.mu.Unlock()
		return
	}

	if !online {
		// Going offline does not touch WasOffline: an earlier recovery
		// window, if any, keeps running.
		m.state.IsOnline = false
		st := m.state
		m.mu.Unlock()
		m.emit(st)
		return
	}

	m.state.IsOnline = true
	m.state.WasOffline = true
	m.armClearTimerLocked()
	st := m.state
	m.mu.Unlock()
	m.emit(st)
}

// State returns the current connectivity pair.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Close cancels the pending clear timer, if any.
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.clearTimer != nil {
		m.clearTimer.Stop()
		m.clearTimer = nil
	}
}

func (m *Monitor) armClearTimerLocked() {
	if m.clearTimer != nil {
		m.clearTimer.Stop()
	}
	m.clearGen++
	gen := m.clearGen
	m.clearTimer = time.AfterFunc(m.window, func() { m.clearRecovered(gen) })
}

func (m *Monitor) clearRecovered(gen uint64) {
	m.mu.Lock()
	if m.closed || gen != m.clearGen || !m.state.WasOffline {
		m.mu.Unlock()
		return
	}
	m.state.WasOffline = false
	m.clearTimer = nil
	st := m.state
	m.mu.Unlock()
	m.emit(st)
}

func (m *Monitor) emit(st State) {
	if m.onChange != nil {
		m.onChange(st)
	}
}

// Pinger is a liveness probe against the backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Prober feeds a Monitor from periodic liveness probes.
type Prober struct {
	pinger   Pinger
	monitor  *Monitor
	interval time.Duration
	timeout  time.Duration
}

func NewProber(pinger Pinger, monitor *Monitor, interval, timeout time.Duration) *Prober {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Prober{pinger: pinger, monitor: monitor, interval: interval, timeout: timeout}
}

// Run probes until ctx is cancelled. Intended to be started as a goroutine.
func (p *Prober) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
			err := p.pinger.Ping(probeCtx)
			cancel()
			p.monitor.SetOnline(err == nil)
		case <-ctx.Done():
			return
		}
	}
}
