// Package sessions tracks server-side session records: activity for idle
// detection, absolute expiry, request counting, and a device fingerprint
// whose change marks the session suspicious.
package sessions

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/autoauthor/autoauthor/internal/common"
)

// Record is one authenticated session.
type Record struct {
	ID           string
	UserID       string
	Fingerprint  string
	CreatedAt    time.Time
	LastActiveAt time.Time
	ExpiresAt    time.Time
	RequestCount int64
	Suspicious   bool
}

// Snapshot is the liveness view served to the status endpoint.
type Snapshot struct {
	SessionID       string
	Active          bool
	Suspicious      bool
	IdleSeconds     int64
	IdleWarning     bool
	TimeUntilExpiry time.Duration
	RequestCount    int64
}

// Manager owns the in-memory session records.
type Manager struct {
	lifetime      time.Duration
	idleWarnAfter time.Duration
	now           func() time.Time

	mu   sync.Mutex
	byID map[string]*Record
}

func NewManager(lifetime, idleWarnAfter time.Duration) *Manager {
	return &Manager{
		lifetime:      lifetime,
		idleWarnAfter: idleWarnAfter,
		now:           time.Now,
		byID:          make(map[string]*Record),
	}
}

// Fingerprint derives the session fingerprint from the client's user agent
// and remote address.
func Fingerprint(userAgent, remoteAddr string) string {
	sum := sha256.Sum256([]byte(userAgent + "|" + remoteAddr))
	return hex.EncodeToString(sum[:16])
}

// Create registers a new session for userID.
func (m *Manager) Create(userID, fingerprint string) *Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	r := &Record{
		ID:           uuid.NewString(),
		UserID:       userID,
		Fingerprint:  fingerprint,
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    now.Add(m.lifetime),
	}
	m.byID[r.ID] = r
	cp := *r
	return &cp
}

// Observe records one request against the session: it bumps the request
// count and compares the fingerprint, flagging the session suspicious on a
// mismatch. It does NOT reset the idle clock — status polls flow through
// here, and a poll is not user activity. Expired sessions are dropped.
func (m *Manager) Observe(id, fingerprint string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, common.ErrNoSession
	}
	if m.now().After(r.ExpiresAt) {
		delete(m.byID, id)
		return nil, common.ErrSessionExpired
	}
	r.RequestCount++
	if fingerprint != "" && fingerprint != r.Fingerprint {
		r.Suspicious = true
	}
	cp := *r
	return &cp, nil
}

// MarkActivity resets the idle clock. Called for real user actions
// (content reads and writes), not for status polls.
func (m *Manager) MarkActivity(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.byID[id]; ok {
		r.LastActiveAt = m.now()
	}
}

// Status builds the liveness snapshot for the session.
func (m *Manager) Status(id string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, common.ErrNoSession
	}
	now := m.now()
	if now.After(r.ExpiresAt) {
		delete(m.byID, id)
		return nil, common.ErrSessionExpired
	}
	idle := now.Sub(r.LastActiveAt)
	return &Snapshot{
		SessionID:       r.ID,
		Active:          true,
		Suspicious:      r.Suspicious,
		IdleSeconds:     int64(idle.Seconds()),
		IdleWarning:     idle >= m.idleWarnAfter,
		TimeUntilExpiry: r.ExpiresAt.Sub(now),
		RequestCount:    r.RequestCount,
	}, nil
}

// Refresh extends the session lifetime and clears the suspicious flag: the
// client has re-authenticated its intent, which is the explicit
// re-validation path for fingerprint alerts.
func (m *Manager) Refresh(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return common.ErrNoSession
	}
	now := m.now()
	if now.After(r.ExpiresAt) {
		delete(m.byID, id)
		return common.ErrSessionExpired
	}
	r.ExpiresAt = now.Add(m.lifetime)
	r.Suspicious = false
	return nil
}

// Delete terminates one session; deleting a missing session is a no-op.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
}

// DeleteAllForUser terminates every session of the user, optionally
// keeping one (the caller's current session). It returns the number of
// sessions removed.
func (m *Manager) DeleteAllForUser(userID, keepID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int
	for id, r := range m.byID {
		if r.UserID == userID && id != keepID {
			delete(m.byID, id)
			n++
		}
	}
	return n
}

// PurgeExpired drops sessions past their expiry; intended for a periodic
// housekeeping goroutine.
func (m *Manager) PurgeExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	var n int
	for id, r := range m.byID {
		if now.After(r.ExpiresAt) {
			delete(m.byID, id)
			n++
		}
	}
	return n
}
