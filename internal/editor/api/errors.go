package api

import "errors"

var (
	// ErrUnavailable covers network failures and 5xx responses after the
	// retry budget is exhausted.
	ErrUnavailable = errors.New("server unavailable")
)
