// The dev server backs the editor during development: it accepts any
// credentials, stores content fragments in SQLite, and tracks session
// liveness in memory.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/autoauthor/autoauthor/internal/logging"
	"github.com/autoauthor/autoauthor/internal/server/config"
	"github.com/autoauthor/autoauthor/internal/server/httpapi"
	"github.com/autoauthor/autoauthor/internal/server/sessions"
	"github.com/autoauthor/autoauthor/internal/server/store"
)

const purgeInterval = time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := store.InitDatabase(ctx, cfg.DocumentDBPath)
	if err != nil {
		log.Error(ctx, "failed to init document db", "path", cfg.DocumentDBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	sm := sessions.NewManager(cfg.SessionLifetime, cfg.IdleWarnAfter)
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sm.PurgeExpired(); n > 0 {
					log.Debug(ctx, "purged expired sessions", "count", n)
				}
			}
		}
	}()

	api := httpapi.NewServer(log, sm, store.NewSQLiteDocumentStore(db), httpapi.Options{
		JWTSecret:     []byte(cfg.JWTSecret),
		TokenValidity: cfg.SessionLifetime,
		LoginRPS:      cfg.LoginRPS,
		LoginBurst:    cfg.LoginBurst,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.Router(),
	}

	go func() {
		log.Info(ctx, "server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server forced shutdown", "error", err)
		os.Exit(1)
	}

	log.Info(ctx, "server stopped")
}
