// Package common defines shared constants and sentinel errors used across
// the editor client and the dev server. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Session lifecycle errors.
	ErrNoSession      = errors.New("no active session")
	ErrSessionExpired = errors.New("session expired")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
