// Package saver implements the debounced auto-save pipeline. Rapid edits to
// one content key are coalesced into a single persistence attempt after a
// quiet period; a failed attempt writes the content to the local backup
// store so nothing is lost across a reload.
package saver

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/autoauthor/autoauthor/internal/editor/backup"
	"github.com/autoauthor/autoauthor/internal/logging"
)

// ContentWriter persists one content fragment remotely. Implemented by the
// REST API client; replaced by fakes in tests.
type ContentWriter interface {
	SaveContent(ctx context.Context, key, body string) error
}

const (
	DefaultDebounce = 2 * time.Second
	DefaultTimeout  = 15 * time.Second

	// maxStoredErrorLen caps the failure reason recorded in a backup entry;
	// anything longer is unlikely to be a human-readable message.
	maxStoredErrorLen = 120
)

// Pipeline coalesces edits per key and guarantees at most one persistence
// attempt in flight per key at any time. A debounce firing while an attempt
// is pending defers the next attempt until the pending one resolves; it is
// then run immediately with the latest content.
type Pipeline struct {
	writer   ContentWriter
	backups  backup.Store
	log      logging.Logger
	debounce time.Duration
	timeout  time.Duration
	onState  func(key string, st Status)

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	keys   map[string]*keyState
	closed bool
}

type keyState struct {
	timer    *time.Timer
	latest   string
	inFlight bool
	rerun    bool
	status   Status
}

// NewPipeline builds a pipeline over the given writer and backup store.
// Zero durations fall back to the defaults. onState may be nil; when set it
// receives every save-state transition and must not block.
func NewPipeline(writer ContentWriter, backups backup.Store, log logging.Logger,
	debounce, timeout time.Duration, onState func(key string, st Status)) *Pipeline {

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pipeline{
		writer:   writer,
		backups:  backups,
		log:      log.With("component", "saver"),
		debounce: debounce,
		timeout:  timeout,
		onState:  onState,
		ctx:      ctx,
		cancel:   cancel,
		keys:     make(map[string]*keyState),
	}
}

// Schedule records the latest content for key and restarts its debounce
// timer. Only the content present when the timer finally fires is persisted;
// intermediate values are dropped.
func (p *Pipeline) Schedule(key, content string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	ks := p.keyStateLocked(key)
	ks.latest = content
	if ks.timer != nil {
		ks.timer.Stop()
	}
	ks.timer = time.AfterFunc(p.debounce, func() { p.fire(key) })
}

// SaveNow persists content for key immediately, bypassing the debounce
// window. The success and failure handling is identical to the debounced
// path, including the backup write on failure.
func (p *Pipeline) SaveNow(key, content string) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	ks := p.keyStateLocked(key)
	ks.latest = content
	if ks.timer != nil {
		ks.timer.Stop()
		ks.timer = nil
	}
	p.mu.Unlock()
	p.fire(key)
}

// Status returns the current save state for key.
func (p *Pipeline) Status(key string) Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ks, ok := p.keys[key]; ok {
		return ks.status
	}
	return Status{State: StateIdle}
}

// Close cancels all pending debounce timers and detaches in-flight attempts
// from the observable state. A failed in-flight attempt still writes its
// backup entry, so content is preserved even across an unmount race.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for _, ks := range p.keys {
		if ks.timer != nil {
			ks.timer.Stop()
			ks.timer = nil
		}
	}
	p.cancel()
}

func (p *Pipeline) keyStateLocked(key string) *keyState {
	ks, ok := p.keys[key]
	if !ok {
		ks = &keyState{status: Status{State: StateIdle}}
		p.keys[key] = ks
	}
	return ks
}

// fire starts an attempt for key, or defers it when one is already in
// flight. Called from the debounce timer goroutine and from SaveNow.
func (p *Pipeline) fire(key string) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	ks := p.keyStateLocked(key)
	ks.timer = nil
	if ks.inFlight {
		// At most one attempt per key; re-run with the latest
		// content once the pending one resolves.
		ks.rerun = true
		p.mu.Unlock()
		return
	}
	ks.inFlight = true
	content := ks.latest
	ks.status = Status{State: StatePending}
	p.mu.Unlock()

	p.emit(key, Status{State: StatePending})
	go p.attempt(key, content)
}

func (p *Pipeline) attempt(key, content string) {
	attemptID := uuid.NewString()
	p.log.Debug(p.ctx, "save attempt started", "key", key, "attempt", attemptID)

	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	err := p.writer.SaveContent(ctx, key, content)
	cancel()

	var st Status
	if err != nil {
		st = Status{State: StateFailed, Err: err}
		p.writeBackup(key, content, err)
		p.log.Warn(p.ctx, "save attempt failed", "key", key, "attempt", attemptID, "error", err)
	} else {
		st = Status{State: StateSaved, SavedAt: time.Now()}
		p.clearBackup(key)
		p.log.Debug(p.ctx, "save attempt succeeded", "key", key, "attempt", attemptID)
	}

	p.mu.Lock()
	ks := p.keyStateLocked(key)
	ks.inFlight = false
	ks.status = st
	rerun := ks.rerun
	ks.rerun = false
	closed := p.closed
	var next string
	if rerun && !closed {
		ks.inFlight = true
		next = ks.latest
		ks.status = Status{State: StatePending}
	}
	p.mu.Unlock()

	if closed {
		return
	}
	p.emit(key, st)
	if rerun {
		p.emit(key, Status{State: StatePending})
		go p.attempt(key, next)
	}
}

func (p *Pipeline) writeBackup(key, content string, saveErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	e := &backup.Entry{
		Key:       key,
		Content:   content,
		Timestamp: time.Now(),
		SaveError: shortError(saveErr),
	}
	if err := p.backups.Put(ctx, e); err != nil {
		p.log.Error(ctx, "failed to write local backup", "key", key, "error", err)
	}
}

func (p *Pipeline) clearBackup(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.backups.Remove(ctx, key); err != nil {
		p.log.Warn(ctx, "failed to clear local backup", "key", key, "error", err)
	}
}

func (p *Pipeline) emit(key string, st Status) {
	if p.onState != nil {
		p.onState(key, st)
	}
}

// shortError keeps the stored failure reason displayable: long or
// multi-line server output is replaced with a generic message.
func shortError(err error) string {
	msg := err.Error()
	if len(msg) > maxStoredErrorLen {
		return "failed to save"
	}
	for _, c := range msg {
		if c == '\n' || c == '\r' {
			return "failed to save"
		}
	}
	return msg
}
