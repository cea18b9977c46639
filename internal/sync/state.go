package sync

import "time"

// Status is the coordinator's sync state machine position.
type Status int

const (
	// StatusIdle means no sync has been requested yet.
	StatusIdle Status = iota
	// StatusSyncing means a request is waiting out the sync debounce.
	StatusSyncing
	// StatusSynced means the canonical state holds the requested value.
	// Durability may still be pending behind the storage debounce.
	StatusSynced
	// StatusError means the last request was rejected or a forced write
	// failed. Recoverable: the next valid request clears it.
	StatusError
)

// String returns the status label used in logs.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSyncing:
		return "syncing"
	case StatusSynced:
		return "synced"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// State is a snapshot of a coordinator's sync progress. Err is "" when the
// coordinator is healthy; otherwise it carries a user-presentable message.
type State struct {
	Status       Status
	LastSyncTime time.Time
	Err          string
}
