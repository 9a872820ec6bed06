// Package httpapi is the dev server's HTTP surface: a chi router exposing
// login, content persistence, and the session-liveness endpoints the editor
// polls.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/autoauthor/autoauthor/internal/logging"
	"github.com/autoauthor/autoauthor/internal/server/sessions"
)

// DocumentStore persists content fragments by key.
type DocumentStore interface {
	Save(ctx context.Context, key, body string) error
	Get(ctx context.Context, key string) (string, error)
}

type Options struct {
	JWTSecret     []byte
	TokenValidity time.Duration
	LoginRPS      float64
	LoginBurst    int
}

type Server struct {
	log      logging.Logger
	sessions *sessions.Manager
	docs     DocumentStore
	opts     Options
}

func NewServer(log logging.Logger, sm *sessions.Manager, docs DocumentStore, opts Options) *Server {
	return &Server{log: log, sessions: sm, docs: docs, opts: opts}
}

// Router assembles the route tree. Login is rate limited per IP; everything
// under /api/v1 except login requires a valid token.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(RateLimit(s.opts.LoginRPS, s.opts.LoginBurst))
		r.Post("/api/v1/auth/login", s.handleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(JWTAuth(s.opts.JWTSecret))

		r.Get("/api/v1/session/status", s.handleSessionStatus)
		r.Post("/api/v1/session/refresh", s.handleSessionRefresh)
		r.Post("/api/v1/session/logout", s.handleLogout)
		r.Post("/api/v1/session/logout-all", s.handleLogoutAll)

		r.Put("/api/v1/content/{key}", s.handlePutContent)
		r.Get("/api/v1/content/{key}", s.handleGetContent)
	})

	return r
}
