// Package notify projects the session poller's derived conditions into
// dismissible alerts. Dismissal is local only — it never calls the server —
// and an alert re-arms when the poller's edge trigger fires again.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/autoauthor/autoauthor/internal/editor/session"
)

// Kind identifies a warning type. Each kind holds at most one alert.
type Kind int

const (
	KindIdle Kind = iota
	KindExpiring
	KindSuspicious
)

func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "idle"
	case KindExpiring:
		return "expiring"
	case KindSuspicious:
		return "suspicious"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Alert is one non-blocking warning shown to the user.
type Alert struct {
	Kind      Kind
	Message   string
	Status    session.Status
	RaisedAt  time.Time
	Dismissed bool
}

// Center holds the current alerts. onChange, when set, is invoked after
// every mutation so a UI can re-render; it must not block.
type Center struct {
	onChange func()

	mu     sync.Mutex
	alerts map[Kind]*Alert
}

func NewCenter(onChange func()) *Center {
	return &Center{onChange: onChange, alerts: make(map[Kind]*Alert)}
}

// Raise creates or re-arms the alert for kind. A previously dismissed alert
// becomes visible again — this is the re-arm path driven by the poller's
// edge trigger, so it cannot happen while a condition merely persists.
func (c *Center) Raise(kind Kind, st session.Status) {
	c.mu.Lock()
	c.alerts[kind] = &Alert{
		Kind:     kind,
		Message:  messageFor(kind),
		Status:   st,
		RaisedAt: time.Now(),
	}
	c.mu.Unlock()
	c.notify()
}

// Dismiss hides the alert locally. No server call is made and the poller's
// condition state is untouched.
func (c *Center) Dismiss(kind Kind) {
	c.mu.Lock()
	if a, ok := c.alerts[kind]; ok {
		a.Dismissed = true
	}
	c.mu.Unlock()
	c.notify()
}

// Clear drops every alert, e.g. after logout.
func (c *Center) Clear() {
	c.mu.Lock()
	c.alerts = make(map[Kind]*Alert)
	c.mu.Unlock()
	c.notify()
}

// Active returns the currently visible (non-dismissed) alerts in kind order.
func (c *Center) Active() []Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Alert
	for _, k := range []Kind{KindIdle, KindExpiring, KindSuspicious} {
		if a, ok := c.alerts[k]; ok && !a.Dismissed {
			out = append(out, *a)
		}
	}
	return out
}

// SessionCallbacks wires the center to a poller: each edge-triggered
// condition raises its alert. The poll-error callback is deliberately
// absent here — fetch failures are background noise, not user warnings.
func (c *Center) SessionCallbacks() session.Callbacks {
	return session.Callbacks{
		OnSessionIdle:        func(st session.Status) { c.Raise(KindIdle, st) },
		OnSessionExpiring:    func(st session.Status) { c.Raise(KindExpiring, st) },
		OnSuspiciousActivity: func(st session.Status) { c.Raise(KindSuspicious, st) },
	}
}

func (c *Center) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}

func messageFor(kind Kind) string {
	switch kind {
	case KindIdle:
		return "You have been inactive for a while — your session may sign out soon."
	case KindExpiring:
		return "Your session is about to expire. Refresh to keep working."
	case KindSuspicious:
		return "Unusual activity was detected on your session. Review your active sessions."
	default:
		return "Session warning."
	}
}
