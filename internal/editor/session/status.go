// Package session polls the server for session liveness and derives
// idle/expiry/suspicious-activity conditions for the warning surface. Each
// condition is edge-triggered: its callback fires once per continuous
// occurrence, not on every poll tick the condition stays true.
package session

import "context"

// Status is the server-reported liveness snapshot. It is replaced wholesale
// from each poll response and never mutated locally.
//
// TimeUntilExpirySeconds is nil when no fixed expiry is tracked (a
// non-expiring or already-terminated session); the poller then schedules no
// refresh.
type Status struct {
	SessionID              string `json:"session_id"`
	Active                 bool   `json:"is_active"`
	Suspicious             bool   `json:"is_suspicious"`
	IdleSeconds            int64  `json:"idle_seconds"`
	IdleWarning            bool   `json:"idle_warning"`
	TimeUntilExpirySeconds *int64 `json:"time_until_expiry_seconds"`
	RequestCount           int64  `json:"request_count"`
}

// Derived is the projection of the current status into the booleans the
// warning surface renders.
type Derived struct {
	IdleWarning  bool
	ExpiringSoon bool
	Suspicious   bool
}

// API is the slice of the backend the poller consumes. FetchSessionStatus
// returns (nil, nil) when no session is active.
type API interface {
	FetchSessionStatus(ctx context.Context) (*Status, error)
	RefreshSession(ctx context.Context) error
	Logout(ctx context.Context) error
	LogoutAll(ctx context.Context, keepCurrent bool) error
}

// Callbacks receive edge-triggered condition notifications. All callbacks
// are optional and must not block; they are invoked from the poller's
// goroutine without any lock held.
type Callbacks struct {
	OnSessionIdle        func(Status)
	OnSessionExpiring    func(Status)
	OnSuspiciousActivity func(Status)
	OnPollError          func(error)
}
