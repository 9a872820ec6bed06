package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/autoauthor/autoauthor/internal/logging"
)

const (
	DefaultPollInterval = 60 * time.Second

	// DefaultExpiryWarn is how close to expiry the expiring condition
	// arms; DefaultAutoRefreshWindow is how close to expiry an automatic
	// refresh is attempted.
	DefaultExpiryWarn        = 5 * time.Minute
	DefaultAutoRefreshWindow = 10 * time.Minute
)

// Config tunes the poller. Zero values fall back to the defaults above.
type Config struct {
	Interval          time.Duration
	AutoRefresh       bool
	ExpiryWarn        time.Duration
	AutoRefreshWindow time.Duration
}

// Poller periodically fetches the session status, maintains the per-
// condition edge-trigger state machines, and performs the auto-refresh
// near expiry.
//
// Condition state machines are Unset→Active: a callback fires on the
// transition into Active and can fire again only after the condition
// clears. The suspicious condition latches: a poll reporting
// isSuspicious=false does not clear it — only a successful Refresh (an
// explicit server-side re-validation) resets it.
type Poller struct {
	api API
	log logging.Logger
	cfg Config
	cb  Callbacks

	kick chan struct{}

	mu               sync.Mutex
	status           *Status
	lastErr          error
	idleActive       bool
	expiringActive   bool
	suspiciousActive bool
	refreshInFlight  bool
}

func NewPoller(api API, log logging.Logger, cfg Config, cb Callbacks) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.ExpiryWarn <= 0 {
		cfg.ExpiryWarn = DefaultExpiryWarn
	}
	if cfg.AutoRefreshWindow <= 0 {
		cfg.AutoRefreshWindow = DefaultAutoRefreshWindow
	}
	return &Poller{
		api:  api,
		log:  log.With("component", "session"),
		cfg:  cfg,
		cb:   cb,
		kick: make(chan struct{}, 1),
	}
}

// Run polls until ctx is cancelled: once immediately, then on every tick,
// plus immediately after any session action resolves. Intended to be
// started as a goroutine.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ticker.C:
			p.poll(ctx)
		case <-p.kick:
			p.poll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Status returns a copy of the last known session status, or nil when no
// session is active (or none has been fetched yet).
func (p *Poller) Status() *Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == nil {
		return nil
	}
	cp := *p.status
	return &cp
}

// LastError returns the most recent poll error, cleared by the next
// successful poll.
func (p *Poller) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Derived projects the current state into the warning-surface booleans.
func (p *Poller) Derived() Derived {
	p.mu.Lock()
	defer p.mu.Unlock()
	d := Derived{Suspicious: p.suspiciousActive}
	if p.status != nil {
		d.IdleWarning = p.status.IdleWarning
		d.ExpiringSoon = p.expiringSoonLocked(p.status)
	}
	return d
}

// Refresh extends the session. On success the suspicious latch is reset
// (the server has re-validated the session) and an immediate re-poll is
// requested. On failure the error is returned and the local status is left
// untouched.
func (p *Poller) Refresh(ctx context.Context) error {
	if err := p.api.RefreshSession(ctx); err != nil {
		return fmt.Errorf("session refresh failed: %w", err)
	}
	p.mu.Lock()
	p.suspiciousActive = false
	p.mu.Unlock()
	p.requestPoll()
	return nil
}

// Logout terminates the current session. On success the local status is
// cleared immediately, without waiting for the next poll.
func (p *Poller) Logout(ctx context.Context) error {
	if err := p.api.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	p.clearLocalStatus()
	p.requestPoll()
	return nil
}

// LogoutAll terminates every session of the user. With keepCurrent the
// current session survives and only a re-poll is needed; otherwise the
// local status is cleared like in Logout.
func (p *Poller) LogoutAll(ctx context.Context, keepCurrent bool) error {
	if err := p.api.LogoutAll(ctx, keepCurrent); err != nil {
		return fmt.Errorf("logout-all failed: %w", err)
	}
	if !keepCurrent {
		p.clearLocalStatus()
	}
	p.requestPoll()
	return nil
}

func (p *Poller) clearLocalStatus() {
	p.mu.Lock()
	p.status = nil
	p.idleActive = false
	p.expiringActive = false
	p.suspiciousActive = false
	p.mu.Unlock()
}

// requestPoll asks the Run loop for an immediate poll; a no-op when one is
// already queued or the loop is not running.
func (p *Poller) requestPoll() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// poll fetches the status once and applies it. A fetch failure keeps the
// previous status in place (stale-but-displayed) and is surfaced only
// through OnPollError and the log.
func (p *Poller) poll(ctx context.Context) {
	st, err := p.api.FetchSessionStatus(ctx)
	if err != nil {
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()
		p.log.Debug(ctx, "session status fetch failed", "error", err)
		if p.cb.OnPollError != nil {
			p.cb.OnPollError(err)
		}
		return
	}
	p.apply(ctx, st)
}

// apply replaces the status wholesale and walks each condition's edge
// trigger. Callbacks run after the lock is released.
func (p *Poller) apply(ctx context.Context, st *Status) {
	var fired []func(Status)

	p.mu.Lock()
	p.lastErr = nil
	p.status = st

	if st == nil {
		// No active session: every condition is vacuously clear.
		p.idleActive = false
		p.expiringActive = false
		p.suspiciousActive = false
		p.mu.Unlock()
		return
	}

	if st.IdleWarning {
		if !p.idleActive && p.cb.OnSessionIdle != nil {
			fired = append(fired, p.cb.OnSessionIdle)
		}
		p.idleActive = true
	} else {
		p.idleActive = false
	}

	if p.expiringSoonLocked(st) {
		if !p.expiringActive && p.cb.OnSessionExpiring != nil {
			fired = append(fired, p.cb.OnSessionExpiring)
		}
		p.expiringActive = true
	} else {
		p.expiringActive = false
	}

	// Suspicious latches; see Refresh for the only reset path.
	if st.Suspicious && !p.suspiciousActive {
		p.suspiciousActive = true
		if p.cb.OnSuspiciousActivity != nil {
			fired = append(fired, p.cb.OnSuspiciousActivity)
		}
	}

	autoRefresh := p.cfg.AutoRefresh && p.shouldAutoRefreshLocked(st) && !p.refreshInFlight
	if autoRefresh {
		p.refreshInFlight = true
	}
	snapshot := *st
	p.mu.Unlock()

	for _, f := range fired {
		f(snapshot)
	}
	if autoRefresh {
		go p.autoRefresh(ctx)
	}
}

func (p *Poller) expiringSoonLocked(st *Status) bool {
	return st.TimeUntilExpirySeconds != nil &&
		*st.TimeUntilExpirySeconds < int64(p.cfg.ExpiryWarn/time.Second)
}

func (p *Poller) shouldAutoRefreshLocked(st *Status) bool {
	t := st.TimeUntilExpirySeconds
	return t != nil && *t > 0 && *t < int64(p.cfg.AutoRefreshWindow/time.Second)
}

// autoRefresh performs the near-expiry refresh. The in-flight flag keeps
// poll ticks landing mid-refresh from starting a second one.
func (p *Poller) autoRefresh(ctx context.Context) {
	err := p.Refresh(ctx)
	p.mu.Lock()
	p.refreshInFlight = false
	p.mu.Unlock()
	if err != nil {
		p.log.Warn(ctx, "auto refresh failed", "error", err)
		return
	}
	p.log.Debug(ctx, "session auto-refreshed")
}
