package saver

import (
	"fmt"
	"time"
)

// State is the save lifecycle position for one content key.
type State int

const (
	StateIdle State = iota
	StatePending
	StateSaved
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateSaved:
		return "saved"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Status is the observable save state for a key. SavedAt is meaningful only
// in StateSaved, Err only in StateFailed.
type Status struct {
	State   State
	SavedAt time.Time
	Err     error
}
