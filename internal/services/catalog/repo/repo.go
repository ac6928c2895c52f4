// Package repo implements the catalog storage over Postgres
package repo

import (
	"context"
	"fmt"
	"strings"

	"chatmirror/internal/modkit/repokit"
	perr "chatmirror/internal/platform/errors"
	"chatmirror/internal/platform/store"
	"chatmirror/internal/services/catalog/domain"
)

// PG is the Postgres binder for the catalog repo
type PG struct{}

// NewPG constructs the binder
func NewPG() repokit.Binder[domain.StoragePort] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.StoragePort { return &queries{q: q} }

type queries struct{ q repokit.Queryer }

// UpsertTenant writes one tenant row. A resurfacing tenant loses its
// tombstone: an upsert means the source says the entity exists right now
func (r *queries) UpsertTenant(ctx context.Context, row domain.TenantRow) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO tenants (id, name, icon_hash, owner_id, member_count, created_at, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (id) DO UPDATE SET
			name         = excluded.name,
			icon_hash    = excluded.icon_hash,
			owner_id     = excluded.owner_id,
			member_count = excluded.member_count,
			synced_at    = now(),
			deleted_at   = NULL
	`, row.ID, row.Name, row.IconHash, row.OwnerID, row.MemberCount, row.CreatedAt)
	return perr.FromPostgresWithField(err, "upsert tenant")
}

// UpsertCategories writes category rows in one statement
func (r *queries) UpsertCategories(ctx context.Context, rows []domain.CategoryRow) error {
	if len(rows) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO categories
		(id, tenant_id, name, position, created_at, synced_at) VALUES `)

	args := make([]any, 0, len(rows)*5)
	for i, c := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*5 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,now())", base, base+1, base+2, base+3, base+4)
		args = append(args, c.ID, c.TenantID, c.Name, c.Position, c.CreatedAt)
	}
	sb.WriteString(` ON CONFLICT (id) DO UPDATE SET
		name       = excluded.name,
		position   = excluded.position,
		synced_at  = now(),
		deleted_at = NULL`)

	_, err := r.q.Exec(ctx, sb.String(), args...)
	return perr.FromPostgresWithField(err, "upsert categories")
}

// UpsertChannels writes channel rows in one statement
func (r *queries) UpsertChannels(ctx context.Context, rows []domain.ChannelRow) error {
	if len(rows) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO channels
		(id, tenant_id, category_id, name, topic, position, last_message_id, created_at, synced_at) VALUES `)

	args := make([]any, 0, len(rows)*8)
	for i, c := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*8 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,now())",
			base, base+1, base+2, base+3, base+4, base+5, base+6, base+7)
		args = append(args,
			c.ID, c.TenantID, c.CategoryID, c.Name, c.Topic,
			c.Position, c.LastMessageID, c.CreatedAt,
		)
	}
	// last_message_id only moves forward; a stale directory snapshot must not
	// rewind it under a live stream that already advanced it
	sb.WriteString(` ON CONFLICT (id) DO UPDATE SET
		category_id     = excluded.category_id,
		name            = excluded.name,
		topic           = excluded.topic,
		position        = excluded.position,
		last_message_id = GREATEST(COALESCE(excluded.last_message_id, 0), COALESCE(channels.last_message_id, 0)),
		synced_at       = now(),
		deleted_at      = NULL`)

	_, err := r.q.Exec(ctx, sb.String(), args...)
	return perr.FromPostgresWithField(err, "upsert channels")
}

// UpsertRoles writes role rows in one statement
func (r *queries) UpsertRoles(ctx context.Context, rows []domain.RoleRow) error {
	if len(rows) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO roles
		(id, tenant_id, name, color, position, permissions, created_at, synced_at) VALUES `)

	args := make([]any, 0, len(rows)*7)
	for i, ro := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*7 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d,$%d,now())",
			base, base+1, base+2, base+3, base+4, base+5, base+6)
		args = append(args, ro.ID, ro.TenantID, ro.Name, ro.Color, ro.Position, ro.Permissions, ro.CreatedAt)
	}
	sb.WriteString(` ON CONFLICT (id) DO UPDATE SET
		name        = excluded.name,
		color       = excluded.color,
		position    = excluded.position,
		permissions = excluded.permissions,
		synced_at   = now(),
		deleted_at  = NULL`)

	_, err := r.q.Exec(ctx, sb.String(), args...)
	return perr.FromPostgresWithField(err, "upsert roles")
}

// UpsertMembers writes membership rows in one statement.
// Callers chunk; the parameter budget caps a single statement
func (r *queries) UpsertMembers(ctx context.Context, rows []domain.MemberRow) error {
	if len(rows) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO members
		(id, tenant_id, username, display_name, nick, avatar_hash, joined_at, synced_at) VALUES `)

	args := make([]any, 0, len(rows)*7)
	for i, m := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*7 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d,$%d,now())",
			base, base+1, base+2, base+3, base+4, base+5, base+6)
		args = append(args, m.ID, m.TenantID, m.Username, m.DisplayName, m.Nick, m.AvatarHash, m.JoinedAt)
	}
	sb.WriteString(` ON CONFLICT (id, tenant_id) DO UPDATE SET
		username     = excluded.username,
		display_name = excluded.display_name,
		nick         = excluded.nick,
		avatar_hash  = excluded.avatar_hash,
		synced_at    = now(),
		deleted_at   = NULL`)

	_, err := r.q.Exec(ctx, sb.String(), args...)
	return perr.FromPostgresWithField(err, "upsert members")
}

// GetTenant reads one tenant row, tombstoned or not
func (r *queries) GetTenant(ctx context.Context, id int64) (domain.TenantRow, error) {
	return store.One(ctx, r.q, scanTenant, `
		SELECT id, name, icon_hash, owner_id, member_count, created_at
		FROM tenants
		WHERE id = $1
	`, id)
}

// ListTenants returns all live tenants, stable order
func (r *queries) ListTenants(ctx context.Context) ([]domain.TenantRow, error) {
	return store.Many(ctx, r.q, scanTenant, `
		SELECT id, name, icon_hash, owner_id, member_count, created_at
		FROM tenants
		WHERE deleted_at IS NULL
		ORDER BY id
	`)
}

// ListChannels returns a tenant's live channels in enumeration order
// (position, then id for ties)
func (r *queries) ListChannels(ctx context.Context, tenantID int64) ([]domain.ChannelRow, error) {
	return store.Many(ctx, r.q, scanChannel, `
		SELECT id, tenant_id, category_id, name, topic, position, last_message_id, created_at
		FROM channels
		WHERE tenant_id = $1 AND deleted_at IS NULL
		ORDER BY position, id
	`, tenantID)
}

func scanTenant(row store.Row) (domain.TenantRow, error) {
	var t domain.TenantRow
	err := row.Scan(&t.ID, &t.Name, &t.IconHash, &t.OwnerID, &t.MemberCount, &t.CreatedAt)
	return t, err
}

func scanChannel(row store.Row) (domain.ChannelRow, error) {
	var c domain.ChannelRow
	err := row.Scan(&c.ID, &c.TenantID, &c.CategoryID, &c.Name, &c.Topic, &c.Position, &c.LastMessageID, &c.CreatedAt)
	return c, err
}
