// Package repo provides postgres access for backfill checkpoints
package repo

import (
	"context"
	"time"

	"chatmirror/internal/modkit/repokit"
	perr "chatmirror/internal/platform/errors"
	"chatmirror/internal/platform/store"
	tim "chatmirror/internal/platform/time"
	"chatmirror/internal/services/backfill/domain"
)

type (
	// PG is a Postgres binder for domain.CheckpointPort
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.CheckpointPort
func NewPG() repokit.Binder[domain.CheckpointPort] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.CheckpointPort { return &queries{q: q} }

// Select returns every window for a tenant, ascending by from_at
func (r *queries) Select(ctx context.Context, tenantID int64) ([]domain.SyncWindow, error) {
	rows, err := store.Many(ctx, r.q, scanWindow, `
		SELECT tenant_id, from_at, to_at, started_at, finished_at, is_first_window
		FROM sync_windows
		WHERE tenant_id = $1
		ORDER BY from_at
	`, tenantID)
	return rows, perr.FromPostgresWithField(err, "select sync windows")
}

// StartWindow opens a window checkpoint. Re-opening an existing row is a
// no-op so a crashed run can resume without rewriting its start marker
func (r *queries) StartWindow(ctx context.Context, tenantID int64, from, to time.Time) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sync_windows (tenant_id, from_at, to_at, started_at, is_first_window)
		VALUES ($1, $2, $3, now(), false)
		ON CONFLICT (tenant_id, from_at, to_at) DO NOTHING
	`, tenantID, tim.UTC(from), tim.UTC(to))
	return perr.FromPostgresWithField(err, "start sync window")
}

// FinishWindow closes a window and records the first-window flag as given.
// The checkpoint row always exists by the time a window finishes, so
// anything but exactly one updated row means the keys drifted
func (r *queries) FinishWindow(ctx context.Context, tenantID int64, from, to time.Time, isFirst bool) error {
	err := store.ExecOne(ctx, r.q, `
		UPDATE sync_windows
		SET finished_at = now(), is_first_window = $4
		WHERE tenant_id = $1 AND from_at = $2 AND to_at = $3
	`, tenantID, tim.UTC(from), tim.UTC(to), isFirst)
	return perr.FromPostgresWithField(err, "finish sync window")
}

func scanWindow(row store.Row) (domain.SyncWindow, error) {
	var w domain.SyncWindow
	err := row.Scan(&w.TenantID, &w.From, &w.To, &w.StartedAt, &w.FinishedAt, &w.IsFirst)
	return w, err
}
