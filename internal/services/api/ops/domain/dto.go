// Package domain defines the ops surface DTOs
package domain

import (
	"time"

	bfdom "chatmirror/internal/services/backfill/domain"
	catdom "chatmirror/internal/services/catalog/domain"
)

// BackupRequest selects the backup scope. A zero tenant id means every
// known tenant
type BackupRequest struct {
	TenantID int64 `json:"tenant_id,string,omitempty"`
}

// BackupAccepted acknowledges a backup pass started in the background.
// RunID doubles as the request_id on every log line the pass emits
type BackupAccepted struct {
	RunID    string `json:"run_id"`
	Scope    string `json:"scope"` // tenant or all
	TenantID int64  `json:"tenant_id,string,omitempty"`
}

// FlushResult reports a completed on-demand flush tick
type FlushResult struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

// EventAccepted acknowledges one ingested live event
type EventAccepted struct {
	Type     string `json:"type"`
	TenantID int64  `json:"tenant_id,string,omitempty"`
}

// StatusResponse combines the sync state of one tenant: checkpoint
// windows, catalog shape and live queue depths
type StatusResponse struct {
	Windows bfdom.WindowStatus  `json:"windows"`
	Catalog catdom.TenantStatus `json:"catalog"`
	Queues  map[string]int      `json:"queues"`
}
