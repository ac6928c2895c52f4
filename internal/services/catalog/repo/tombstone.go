package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	perr "chatmirror/internal/platform/errors"
	"chatmirror/internal/services/catalog/domain"
)

// Soft deletes. Rows are never removed; deleted_at marks them gone so a later
// upsert can resurrect them and history queries keep working.

// SoftDeleteTenant tombstones one tenant
func (r *queries) SoftDeleteTenant(ctx context.Context, id int64) error {
	_, err := r.q.Exec(ctx,
		`UPDATE tenants SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	return perr.FromPostgresWithField(err, "tombstone tenant")
}

// SoftDeleteCategories tombstones categories by id
func (r *queries) SoftDeleteCategories(ctx context.Context, ids []int64) error {
	return r.tombstoneByID(ctx, "categories", ids)
}

// SoftDeleteChannels tombstones channels by id
func (r *queries) SoftDeleteChannels(ctx context.Context, ids []int64) error {
	return r.tombstoneByID(ctx, "channels", ids)
}

// SoftDeleteRoles tombstones roles by id
func (r *queries) SoftDeleteRoles(ctx context.Context, ids []int64) error {
	return r.tombstoneByID(ctx, "roles", ids)
}

// SoftDeleteMessages tombstones messages by id
func (r *queries) SoftDeleteMessages(ctx context.Context, ids []int64) error {
	return r.tombstoneByID(ctx, "messages", ids)
}

// SoftDeleteMembers tombstones memberships by (id, tenant_id)
func (r *queries) SoftDeleteMembers(ctx context.Context, keys []domain.MemberKey) error {
	if len(keys) == 0 {
		return nil
	}

	ids := make([]int64, len(keys))
	tenants := make([]int64, len(keys))
	for i, k := range keys {
		ids[i] = k.ID
		tenants[i] = k.TenantID
	}

	_, err := r.q.Exec(ctx, `
		UPDATE members m SET deleted_at = now()
		FROM unnest($1::bigint[], $2::bigint[]) AS t(id, tenant_id)
		WHERE m.id = t.id AND m.tenant_id = t.tenant_id AND m.deleted_at IS NULL
	`, ids, tenants)
	return perr.FromPostgresWithField(err, "tombstone members")
}

// tombstoneByID marks rows deleted in one statement.
// table is always a literal from the callers above, never user input
func (r *queries) tombstoneByID(ctx context.Context, table string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `UPDATE %s SET deleted_at = now()
		WHERE id IN (SELECT unnest($1::bigint[])) AND deleted_at IS NULL`, table)

	_, err := r.q.Exec(ctx, sb.String(), ids)
	return perr.FromPostgresWithField(err, "tombstone "+table)
}

// TenantStatus summarizes one tenant's catalog freshness
func (r *queries) TenantStatus(ctx context.Context, tenantID int64) (domain.TenantStatus, error) {
	var (
		st       domain.TenantStatus
		syncedAt *time.Time
	)
	err := r.q.QueryRow(ctx, `
		SELECT t.id, t.name, t.created_at, t.synced_at,
			(SELECT count(*) FROM channels c WHERE c.tenant_id = t.id AND c.deleted_at IS NULL)
		FROM tenants t
		WHERE t.id = $1
	`, tenantID).Scan(&st.TenantID, &st.Name, &st.CreatedAt, &syncedAt, &st.Channels)
	if err != nil {
		return domain.TenantStatus{}, perr.FromPostgresWithField(err, "tenant status")
	}
	st.SyncedAt = syncedAt
	return st, nil
}
