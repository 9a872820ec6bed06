// Package cli is the terminal front end for the editor core: a
// line-oriented writing loop over the save pipeline, with the recovery
// prompt on open and the session warnings surfaced between lines.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/autoauthor/autoauthor/internal/editor"
	"github.com/autoauthor/autoauthor/internal/editor/api"
	"github.com/autoauthor/autoauthor/internal/editor/backup"
	"github.com/autoauthor/autoauthor/internal/editor/config"
	"github.com/autoauthor/autoauthor/internal/editor/connectivity"
	"github.com/autoauthor/autoauthor/internal/editor/saver"
	"github.com/autoauthor/autoauthor/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config  *config.Config
	client  *api.Client
	backups *backup.SQLiteStore
	ctrl    *editor.Controller
	log     logging.Logger
	reader  *bufio.Reader

	mu      sync.Mutex
	key     string
	content []string
	save    saver.Status
	conn    connectivity.State
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	db, err := backup.InitDatabase(ctx, cfg.BackupDBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing backup database: %w", err)
	}
	backups := backup.NewSQLiteStore(db)
	if n, err := backups.Cleanup(ctx, cfg.BackupRetention); err == nil && n > 0 {
		log.Info(ctx, "cleaned up stale backups", "count", n)
	}

	client, err := api.NewClient(cfg.ServerEndpointAddr, cfg.SaveTimeout)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:  cfg,
		client:  client,
		backups: backups,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
	}

	a.ctrl = editor.New(client, backups, log, editor.Options{
		Debounce:      cfg.Debounce,
		SaveTimeout:   cfg.SaveTimeout,
		PollInterval:  cfg.PollInterval,
		AutoRefresh:   cfg.AutoRefresh,
		ProbeInterval: cfg.ProbeInterval,
		OnSaveState: func(key string, st saver.Status) {
			a.mu.Lock()
			a.save = st
			a.mu.Unlock()
		},
		OnConnectivity: func(st connectivity.State) {
			a.mu.Lock()
			a.conn = st
			a.mu.Unlock()
			if st.IsOnline && st.WasOffline {
				fmt.Println("\nConnection restored.")
			} else if !st.IsOnline {
				fmt.Println("\nConnection lost. Your work is kept locally until it can be saved.")
			}
		},
		OnAlertsChange: func() { a.printAlerts() },
	})
	return a, nil
}

// Login prompts for credentials and authenticates against the backend.
func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		return err
	}

	if _, err := a.client.Login(ctx, email, string(password)); err != nil {
		fmt.Println("Login failed:", err)
		return err
	}
	fmt.Println("Logged in.")
	return nil
}

// Open mounts a content key: it runs the recovery check and, when a backup
// exists, prompts for restore or discard.
func (a *App) Open(ctx context.Context, key string) error {
	a.mu.Lock()
	a.key = key
	a.content = nil
	a.mu.Unlock()

	flow := a.ctrl.Recover(key)
	entry, err := flow.Check(ctx)
	if err != nil {
		return err
	}
	if entry == nil {
		return a.loadRemote(ctx, key)
	}

	fmt.Printf("Found unsaved work from %s:\n  %s\n", entry.Timestamp.Format("2006-01-02 15:04"), flow.Preview(80))
	answer, err := GetSimpleText(a.reader, "Restore it? (yes/no)", os.Stdout)
	if err != nil {
		return err
	}
	if strings.EqualFold(answer, "yes") || strings.EqualFold(answer, "y") {
		content, err := flow.Restore(ctx)
		if err != nil {
			return err
		}
		a.setContent(content)
		fmt.Println("Restored. It will be saved as soon as the server accepts it.")
		return nil
	}
	if err := flow.Discard(ctx); err != nil {
		return err
	}
	fmt.Println("Discarded.")
	return a.loadRemote(ctx, key)
}

func (a *App) loadRemote(ctx context.Context, key string) error {
	body, err := a.client.FetchContent(ctx, key)
	if err != nil {
		// A missing document is a fresh start, not a failure.
		a.setContent("")
		return nil
	}
	a.setContent(body)
	return nil
}

func (a *App) setContent(body string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if body == "" {
		a.content = nil
		return
	}
	a.content = strings.Split(body, "\n")
}

// AppendLine adds one line of text and schedules an auto-save.
func (a *App) AppendLine(line string) {
	a.mu.Lock()
	a.content = append(a.content, line)
	key, body := a.key, strings.Join(a.content, "\n")
	a.mu.Unlock()

	a.ctrl.Saver.Schedule(key, body)
}

// SaveNow forces an immediate save of the current content.
func (a *App) SaveNow() {
	a.mu.Lock()
	key, body := a.key, strings.Join(a.content, "\n")
	a.mu.Unlock()

	a.ctrl.Saver.SaveNow(key, body)
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.ctrl.Logout(ctx); err != nil {
		fmt.Println("Logout failed:", err)
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

func (a *App) LogoutAll(ctx context.Context) error {
	if err := a.ctrl.Sessions.LogoutAll(ctx, true); err != nil {
		fmt.Println("Logout failed:", err)
		return err
	}
	fmt.Println("Other sessions terminated.")
	return nil
}

func (a *App) printAlerts() {
	for _, alert := range a.ctrl.Alerts.Active() {
		fmt.Printf("\n[!] %s\n", alert.Message)
	}
}

func (a *App) status() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return formatStatus(a.save, a.conn)
}

func (a *App) Close() {
	a.ctrl.Close()
}

// formatStatus renders the prompt suffix, e.g. "(online, saved)".
func formatStatus(save saver.Status, conn connectivity.State) string {
	var parts []string
	if conn.IsOnline {
		if conn.WasOffline {
			parts = append(parts, "back online")
		} else {
			parts = append(parts, "online")
		}
	} else {
		parts = append(parts, "offline")
	}
	if s := save.State.String(); s != "" && save.State != saver.StateIdle {
		parts = append(parts, s)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
