package domain

import (
	"context"
	"time"
)

// BackupPort is the public port exposed by the module (trigger surface).
// A second entrant for the same tenant gets a Conflict while the first run
// is still in flight
type BackupPort interface {
	BackupTenant(ctx context.Context, tenantID int64) error
	BackupAll(ctx context.Context) error
}

// TriggerPort starts backup passes without holding the caller: the lease
// claim (and so the Conflict answer) is synchronous, the pass runs detached
type TriggerPort interface {
	StartBackup(ctx context.Context, tenantID int64) error
	StartBackupAll(ctx context.Context) error
}

// StatusPort summarizes checkpoint progress for the ops surface
type StatusPort interface {
	WindowStatus(ctx context.Context, tenantID int64) (WindowStatus, error)
}

// CheckpointPort persists window progress. StartWindow is idempotent
// (re-opening an existing window is a no-op); FinishWindow sets finished_at
// and records the first-window flag as given
type CheckpointPort interface {
	Select(ctx context.Context, tenantID int64) ([]SyncWindow, error)
	StartWindow(ctx context.Context, tenantID int64, from, to time.Time) error
	FinishWindow(ctx context.Context, tenantID int64, from, to time.Time, isFirst bool) error
}

// HistoryPort is the slice of the source client the processor streams from
type HistoryPort interface {
	History(ctx context.Context, channelID int64, from, to time.Time) (MessageStream, error)
}

// ChannelsPort enumerates a tenant's live channels in processing order
type ChannelsPort interface {
	Channels(ctx context.Context, tenantID int64) ([]Channel, error)
}

// TenantsPort is the catalog slice the scheduler and backup-all need
type TenantsPort interface {
	Tenant(ctx context.Context, tenantID int64) (Tenant, error)
	Tenants(ctx context.Context) ([]Tenant, error)
}

// ResyncPort refreshes a tenant's structural catalog before a backup pass
type ResyncPort interface {
	Resync(ctx context.Context, tenantID int64) error
}

// Collector accumulates normalized rows for one entity kind during a window.
// Add never fails; extraction absorbs bad input. Flush writes in fixed-size
// chunks, in order, clearing the batch only after every chunk lands
type Collector interface {
	Name() string
	Add(m Message)
	Len() int
	Flush(ctx context.Context) error
}

// CollectorFactory builds a fresh collector set for one tenant's window
type CollectorFactory func(tenantID int64) []Collector

// ProcessorPort runs one window to completion and marks the checkpoint
type ProcessorPort interface {
	Process(ctx context.Context, w SyncWindow, isFirst bool) error
}
