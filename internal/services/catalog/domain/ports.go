package domain

import (
	"context"
	"time"
)

// StoragePort is the write surface for catalog rows. Every upsert is
// idempotent (keyed by id) so repeated syncs and concurrent flushes are safe
// without coordination. Deletes are soft (deleted_at tombstone)
type StoragePort interface {
	UpsertTenant(ctx context.Context, row TenantRow) error
	UpsertCategories(ctx context.Context, rows []CategoryRow) error
	UpsertChannels(ctx context.Context, rows []ChannelRow) error
	UpsertRoles(ctx context.Context, rows []RoleRow) error
	UpsertMembers(ctx context.Context, rows []MemberRow) error

	UpsertMessages(ctx context.Context, rows []MessageRow) error
	UpsertAttachments(ctx context.Context, rows []AttachmentRow) error
	UpsertReactions(ctx context.Context, rows []ReactionRow) error
	UpsertMentions(ctx context.Context, rows []MentionRow) error
	UpsertEmoji(ctx context.Context, rows []EmojiRow) error

	SoftDeleteTenant(ctx context.Context, id int64) error
	SoftDeleteCategories(ctx context.Context, ids []int64) error
	SoftDeleteChannels(ctx context.Context, ids []int64) error
	SoftDeleteRoles(ctx context.Context, ids []int64) error
	SoftDeleteMembers(ctx context.Context, keys []MemberKey) error
	SoftDeleteMessages(ctx context.Context, ids []int64) error

	GetTenant(ctx context.Context, id int64) (TenantRow, error)
	ListTenants(ctx context.Context) ([]TenantRow, error)
	ListChannels(ctx context.Context, tenantID int64) ([]ChannelRow, error)
	TenantStatus(ctx context.Context, tenantID int64) (TenantStatus, error)
}

// ResyncPort refreshes a tenant's structural catalog from the source
type ResyncPort interface {
	Resync(ctx context.Context, tenantID int64) error
}

// StatusPort summarizes catalog freshness for the ops surface
type StatusPort interface {
	TenantStatus(ctx context.Context, tenantID int64) (TenantStatus, error)
}

// TenantStatus is the catalog slice of the ops status payload
type TenantStatus struct {
	TenantID  int64      `json:"tenant_id"`
	Name      string     `json:"name"`
	Channels  int        `json:"channels"`
	CreatedAt time.Time  `json:"created_at"`
	SyncedAt  *time.Time `json:"synced_at,omitempty"`
}
