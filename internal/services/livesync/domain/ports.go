package domain

import "context"

// DispatchPort routes one decoded event into the buffered queues
type DispatchPort interface {
	Dispatch(ctx context.Context, ev Event) error
}

// FlushPort runs one flush tick outside the schedule. A tick already in
// flight answers Conflict
type FlushPort interface {
	Flush(ctx context.Context) error
}

// StatusPort reports per-kind queue depths for the ops surface
type StatusPort interface {
	QueueDepths() map[string]int
}

// BackupTrigger kicks a full tenant backup when a tenant joins. The backfill
// service satisfies it; the second entrant behind its lease gets Conflict
type BackupTrigger interface {
	BackupTenant(ctx context.Context, tenantID int64) error
}
