// Package recovery implements the mount-time restore flow for locally
// backed-up content. On editor mount the flow checks the backup store for
// the content key and, when an entry exists, offers the user a restore or
// discard decision.
package recovery

import (
	"context"
	"fmt"
	"sync"

	"github.com/autoauthor/autoauthor/internal/common"
	"github.com/autoauthor/autoauthor/internal/editor/backup"
)

// Phase tracks the flow: Idle → Checking → {NoBackup | BackupFound} →
// {Restored | Discarded}.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseChecking
	PhaseNoBackup
	PhaseBackupFound
	PhaseRestored
	PhaseDiscarded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseChecking:
		return "checking"
	case PhaseNoBackup:
		return "no_backup"
	case PhaseBackupFound:
		return "backup_found"
	case PhaseRestored:
		return "restored"
	case PhaseDiscarded:
		return "discarded"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Scheduler is the slice of the save pipeline the flow needs: restoring
// re-schedules a save so the backup is cleared by the normal success path.
type Scheduler interface {
	Schedule(key, content string)
}

// Flow drives recovery for a single content key. It never deletes the
// backup entry itself on restore; only a later successful save does that,
// so a failed post-restore save cannot lose the data.
type Flow struct {
	store backup.Store
	sched Scheduler
	key   string

	mu    sync.Mutex
	phase Phase
	entry *backup.Entry
}

func NewFlow(store backup.Store, sched Scheduler, key string) *Flow {
	return &Flow{store: store, sched: sched, key: key, phase: PhaseIdle}
}

// Check reads the backup store for the flow's key. It returns the found
// entry, or nil when there is none (including when the stored payload was
// corrupt — the store fails open). Repeated calls without intervening edits
// are idempotent.
func (f *Flow) Check(ctx context.Context) (*backup.Entry, error) {
	f.mu.Lock()
	f.phase = PhaseChecking
	f.mu.Unlock()

	e, err := f.store.Get(ctx, f.key)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.phase = PhaseIdle
		return nil, fmt.Errorf("backup check failed: %w", err)
	}
	if e == nil {
		f.phase = PhaseNoBackup
		f.entry = nil
		return nil, nil
	}
	f.phase = PhaseBackupFound
	f.entry = e
	return e, nil
}

// Restore hands back the backed-up content and schedules a save for it.
// The caller replaces its in-memory content with the returned value. The
// backup entry stays in place until the scheduled save succeeds.
func (f *Flow) Restore(ctx context.Context) (string, error) {
	f.mu.Lock()
	if f.phase != PhaseBackupFound || f.entry == nil {
		f.mu.Unlock()
		return "", common.ErrorNotFound
	}
	content := f.entry.Content
	f.phase = PhaseRestored
	f.mu.Unlock()

	f.sched.Schedule(f.key, content)
	return content, nil
}

// Discard removes the backup entry without touching the current content.
func (f *Flow) Discard(ctx context.Context) error {
	f.mu.Lock()
	if f.phase != PhaseBackupFound {
		f.mu.Unlock()
		return common.ErrorNotFound
	}
	f.mu.Unlock()

	if err := f.store.Remove(ctx, f.key); err != nil {
		return fmt.Errorf("backup discard failed: %w", err)
	}
	f.mu.Lock()
	f.phase = PhaseDiscarded
	f.entry = nil
	f.mu.Unlock()
	return nil
}

// Phase returns the current flow phase.
func (f *Flow) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

// Entry returns the found backup entry, or nil outside PhaseBackupFound.
func (f *Flow) Entry() *backup.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entry
}

// Preview returns the first n runes of the backed-up content for display
// in the recovery prompt.
func (f *Flow) Preview(n int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.entry == nil {
		return ""
	}
	return common.TruncateRunes(f.entry.Content, n)
}
