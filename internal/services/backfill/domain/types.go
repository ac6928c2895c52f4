// Package domain holds the core types and ports for the windowed backfill
package domain

import (
	"time"

	"chatmirror/internal/adapters/source"
)

// Week is the width of one backfill window
const Week = 7 * 24 * time.Hour

// Message re-exports the source message shape fed to collectors
type Message = source.Message

// MessageStream re-exports the lazy oldest-first history stream
type MessageStream = source.MessageStream

// SyncWindow is one week-long backfill slice for one tenant. Windows tile
// [tenant_created_at, now) in ascending order with no gaps or overlaps;
// a nil FinishedAt marks a retry candidate
type SyncWindow struct {
	TenantID   int64
	From       time.Time
	To         time.Time
	StartedAt  time.Time
	FinishedAt *time.Time
	IsFirst    bool
}

// Finished reports whether the window completed
func (w SyncWindow) Finished() bool { return w.FinishedAt != nil }

// Channel is the slice of a catalog channel the processor reads.
// LastMessageID nil means the channel never held a message and is skipped
type Channel struct {
	ID            int64
	LastMessageID *int64
}

// Tenant is the slice of a catalog tenant the scheduler reads
type Tenant struct {
	ID        int64
	CreatedAt time.Time
}

// RunReport summarizes one scheduler invocation for one tenant
type RunReport struct {
	RetryPasses int
	Retried     int
	Advanced    int
}

// WindowStatus is the checkpoint slice of the ops status payload
type WindowStatus struct {
	TenantID       int64      `json:"tenant_id"`
	Finished       int        `json:"finished"`
	Unfinished     int        `json:"unfinished"`
	LastFinishedAt *time.Time `json:"last_finished_at,omitempty"`
	CaughtUp       bool       `json:"caught_up"`
}
