// Package editor wires the data-preservation and session-liveness
// subsystems into one controller per editor instance. Every timer and
// goroutine is owned by the controller and torn down by Close, so several
// controllers (several open chapters or windows) coexist without shared
// ambient state.
package editor

import (
	"context"
	"time"

	"github.com/autoauthor/autoauthor/internal/editor/backup"
	"github.com/autoauthor/autoauthor/internal/editor/connectivity"
	"github.com/autoauthor/autoauthor/internal/editor/notify"
	"github.com/autoauthor/autoauthor/internal/editor/recovery"
	"github.com/autoauthor/autoauthor/internal/editor/saver"
	"github.com/autoauthor/autoauthor/internal/editor/session"
	"github.com/autoauthor/autoauthor/internal/logging"
)

// API is the full backend surface the controller consumes: content
// persistence, session status/actions, and a liveness probe.
type API interface {
	saver.ContentWriter
	session.API
	connectivity.Pinger
}

// Options tunes the controller. Zero values fall back to each component's
// defaults. The callbacks feed the UI layer and must not block.
type Options struct {
	Debounce       time.Duration
	SaveTimeout    time.Duration
	PollInterval   time.Duration
	AutoRefresh    bool
	ProbeInterval  time.Duration
	RecoveryWindow time.Duration

	OnSaveState    func(key string, st saver.Status)
	OnConnectivity func(st connectivity.State)
	OnAlertsChange func()
}

// Controller owns the save pipeline, the session poller, the connectivity
// monitor, and the alert center for one editor instance.
type Controller struct {
	Saver        *saver.Pipeline
	Sessions     *session.Poller
	Connectivity *connectivity.Monitor
	Alerts       *notify.Center

	api     API
	backups backup.Store
	cancel  context.CancelFunc
}

// New builds and starts a controller. The initial connectivity state is
// probed synchronously so the UI never renders a guessed value.
func New(api API, backups backup.Store, log logging.Logger, opts Options) *Controller {
	alerts := notify.NewCenter(opts.OnAlertsChange)

	pipeline := saver.NewPipeline(api, backups, log,
		opts.Debounce, opts.SaveTimeout, opts.OnSaveState)

	poller := session.NewPoller(api, log, session.Config{
		Interval:    opts.PollInterval,
		AutoRefresh: opts.AutoRefresh,
	}, alerts.SessionCallbacks())

	initial := connectivity.SourceFunc(func() bool {
		probeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return api.Ping(probeCtx) == nil
	})
	monitor := connectivity.NewMonitor(initial, opts.RecoveryWindow, opts.OnConnectivity)
	prober := connectivity.NewProber(api, monitor, opts.ProbeInterval, 0)

	ctx, cancel := context.WithCancel(context.Background())
	go poller.Run(ctx)
	go prober.Run(ctx)

	return &Controller{
		Saver:        pipeline,
		Sessions:     poller,
		Connectivity: monitor,
		Alerts:       alerts,
		api:          api,
		backups:      backups,
		cancel:       cancel,
	}
}

// Recover returns the recovery flow for one content key, ready for the
// mount-time Check.
func (c *Controller) Recover(key string) *recovery.Flow {
	return recovery.NewFlow(c.backups, c.Saver, key)
}

// Logout terminates the session and drops any visible warnings.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.Sessions.Logout(ctx); err != nil {
		return err
	}
	c.Alerts.Clear()
	return nil
}

// Close cancels every timer and goroutine the controller owns. In-flight
// network responses arriving afterwards are ignored, except that a failed
// save still records its local backup.
func (c *Controller) Close() {
	c.cancel()
	c.Saver.Close()
	c.Connectivity.Close()
}
