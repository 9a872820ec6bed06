package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/autoauthor/autoauthor/internal/common"
	"github.com/autoauthor/autoauthor/internal/server/auth"
	"github.com/autoauthor/autoauthor/internal/server/sessions"
)

const maxBodyBytes = 10 << 20 // 10MB

// statusResponse mirrors the liveness snapshot on the wire.
// time_until_expiry_seconds is a pointer so a session without a tracked
// expiry serializes as null rather than 0.
type statusResponse struct {
	SessionID              string `json:"session_id"`
	Active                 bool   `json:"is_active"`
	Suspicious             bool   `json:"is_suspicious"`
	IdleSeconds            int64  `json:"idle_seconds"`
	IdleWarning            bool   `json:"idle_warning"`
	TimeUntilExpirySeconds *int64 `json:"time_until_expiry_seconds"`
	RequestCount           int64  `json:"request_count"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleLogin authenticates and opens a session. This is a dev server: any
// non-empty email/password pair is accepted and the email doubles as the
// user ID.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	rec := s.sessions.Create(req.Email, sessions.Fingerprint(r.UserAgent(), clientIP(r)))
	token, err := auth.GenerateToken(rec.UserID, rec.ID, s.opts.JWTSecret, s.opts.TokenValidity)
	if err != nil {
		s.log.Error(r.Context(), "failed to generate token", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.log.Info(r.Context(), "session created", "user", rec.UserID, "session", rec.ID)
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// observe records the request against the caller's session and returns its
// identity. A missing or expired session record means the token outlived the
// session (logged out elsewhere, server restart, expiry).
func (s *Server) observe(r *http.Request) (Identity, error) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		return Identity{}, common.ErrNoSession
	}
	_, err := s.sessions.Observe(id.SessionID, sessions.Fingerprint(r.UserAgent(), clientIP(r)))
	return id, err
}

// handleSessionStatus reports the liveness snapshot. A dead session is a 404
// so the client can distinguish "no session" from a transport failure.
func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	id, err := s.observe(r)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "no active session")
		return
	}

	snap, err := s.sessions.Status(id.SessionID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "no active session")
		return
	}

	expiry := int64(snap.TimeUntilExpiry.Seconds())
	writeJSON(w, http.StatusOK, statusResponse{
		SessionID:              snap.SessionID,
		Active:                 snap.Active,
		Suspicious:             snap.Suspicious,
		IdleSeconds:            snap.IdleSeconds,
		IdleWarning:            snap.IdleWarning,
		TimeUntilExpirySeconds: &expiry,
		RequestCount:           snap.RequestCount,
	})
}

func (s *Server) handleSessionRefresh(w http.ResponseWriter, r *http.Request) {
	id, err := s.observe(r)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	if err := s.sessions.Refresh(id.SessionID); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	// Logging out an already-dead session succeeds.
	s.sessions.Delete(id.SessionID)
	s.log.Info(r.Context(), "session terminated", "session", id.SessionID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		KeepCurrent bool `json:"keep_current"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	keepID := ""
	if req.KeepCurrent {
		keepID = id.SessionID
	}
	n := s.sessions.DeleteAllForUser(id.UserID, keepID)
	if !req.KeepCurrent {
		s.sessions.Delete(id.SessionID)
	}
	s.log.Info(r.Context(), "sessions terminated", "user", id.UserID, "count", n)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePutContent(w http.ResponseWriter, r *http.Request) {
	id, err := s.observe(r)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	key := chi.URLParam(r, "key")
	if key == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid content key")
		return
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.docs.Save(r.Context(), key, req.Body); err != nil {
		s.log.Error(r.Context(), "failed to save content", "key", key, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// A save is real user activity and resets the idle clock.
	s.sessions.MarkActivity(id.SessionID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	id, err := s.observe(r)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	key := chi.URLParam(r, "key")
	body, err := s.docs.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeJSONError(w, http.StatusNotFound, "content not found")
			return
		}
		s.log.Error(r.Context(), "failed to load content", "key", key, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sessions.MarkActivity(id.SessionID)
	writeJSON(w, http.StatusOK, map[string]string{"body": body})
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrSessionExpired):
		writeJSONError(w, http.StatusUnauthorized, "session expired")
	case errors.Is(err, common.ErrNoSession):
		writeJSONError(w, http.StatusUnauthorized, "no active session")
	default:
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
