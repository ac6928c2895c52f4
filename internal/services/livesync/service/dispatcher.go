package service

import (
	"context"

	"chatmirror/internal/adapters/source"
	"chatmirror/internal/core/sanitize"
	perr "chatmirror/internal/platform/errors"
	"chatmirror/internal/platform/logger"
	catalogdom "chatmirror/internal/services/catalog/domain"
	catalogsvc "chatmirror/internal/services/catalog/service"
	"chatmirror/internal/services/livesync/domain"
)

// Queues are the typed producer handles the dispatcher writes to
type Queues struct {
	MessageInsert    *Queue[catalogdom.MessageRow]
	AttachmentInsert *Queue[catalogdom.AttachmentRow]
	MemberInsert     *Queue[catalogdom.MemberRow]

	MessageUpdate  *Queue[catalogdom.MessageRow]
	ChannelUpsert  *Queue[catalogdom.ChannelRow]
	CategoryUpsert *Queue[catalogdom.CategoryRow]
	RoleUpsert     *Queue[catalogdom.RoleRow]
	MemberUpdate   *Queue[catalogdom.MemberRow]
	TenantUpsert   *Queue[catalogdom.TenantRow]

	MessageDelete  *Queue[int64]
	ChannelDelete  *Queue[int64]
	CategoryDelete *Queue[int64]
	RoleDelete     *Queue[int64]
	MemberDelete   *Queue[catalogdom.MemberKey]
}

// NewQueues registers the standard kinds against the catalog store, in the
// order a tick drains them within each group
func NewQueues(reg *Registry, store catalogdom.StoragePort) Queues {
	return Queues{
		MessageInsert:    Register(reg, GroupInsert, "insert.messages", store.UpsertMessages),
		AttachmentInsert: Register(reg, GroupInsert, "insert.attachments", store.UpsertAttachments),
		MemberInsert:     Register(reg, GroupInsert, "insert.members", store.UpsertMembers),

		MessageUpdate:  Register(reg, GroupUpdate, "update.messages", store.UpsertMessages),
		ChannelUpsert:  Register(reg, GroupUpdate, "update.channels", store.UpsertChannels),
		CategoryUpsert: Register(reg, GroupUpdate, "update.categories", store.UpsertCategories),
		RoleUpsert:     Register(reg, GroupUpdate, "update.roles", store.UpsertRoles),
		MemberUpdate:   Register(reg, GroupUpdate, "update.members", store.UpsertMembers),
		TenantUpsert:   Register(reg, GroupUpdate, "update.tenants", tenantSink(store)),

		MessageDelete:  Register(reg, GroupDelete, "delete.messages", store.SoftDeleteMessages),
		ChannelDelete:  Register(reg, GroupDelete, "delete.channels", store.SoftDeleteChannels),
		CategoryDelete: Register(reg, GroupDelete, "delete.categories", store.SoftDeleteCategories),
		RoleDelete:     Register(reg, GroupDelete, "delete.roles", store.SoftDeleteRoles),
		MemberDelete:   Register(reg, GroupDelete, "delete.members", store.SoftDeleteMembers),
	}
}

// tenantSink adapts the single-row tenant upsert to the batch sink shape
func tenantSink(store catalogdom.StoragePort) func(ctx context.Context, rows []catalogdom.TenantRow) error {
	return func(ctx context.Context, rows []catalogdom.TenantRow) error {
		for _, r := range rows {
			if err := store.UpsertTenant(ctx, r); err != nil {
				return err
			}
		}
		return nil
	}
}

// Dispatcher routes decoded events into the queues. Enqueue never blocks, so
// Dispatch is cheap enough for the request path; the flusher does the writes
type Dispatcher struct {
	Q      Queues
	Backup domain.BackupTrigger

	norm *sanitize.Normalizer
}

// NewDispatcher constructs a dispatcher; backup may be nil when no backfill
// service runs in this process
func NewDispatcher(q Queues, backup domain.BackupTrigger) *Dispatcher {
	return &Dispatcher{Q: q, Backup: backup, norm: sanitize.New()}
}

// Dispatch implements domain.DispatchPort
func (d *Dispatcher) Dispatch(ctx context.Context, ev domain.Event) error {
	switch e := ev.(type) {
	case domain.MessageCreated:
		d.Q.MessageInsert.Enqueue(catalogsvc.PrepareMessages(d.norm, e.Msg.TenantID, e.Msg)...)
		d.Q.AttachmentInsert.Enqueue(catalogsvc.PrepareAttachments(e.Msg)...)

	case domain.MessageEdited:
		d.Q.MessageUpdate.Enqueue(catalogsvc.PrepareMessages(d.norm, e.Msg.TenantID, e.Msg)...)

	case domain.MessageDeleted:
		if e.ID != 0 {
			d.Q.MessageDelete.Enqueue(e.ID)
		}

	case domain.BulkMessagesDeleted:
		for _, id := range e.IDs {
			if id != 0 {
				d.Q.MessageDelete.Enqueue(id)
			}
		}

	case domain.ChannelCreated:
		d.Q.ChannelUpsert.Enqueue(catalogsvc.PrepareChannels(e.Channel.TenantID, []source.Channel{e.Channel})...)
	case domain.ChannelUpdated:
		d.Q.ChannelUpsert.Enqueue(catalogsvc.PrepareChannels(e.Channel.TenantID, []source.Channel{e.Channel})...)
	case domain.ChannelDeleted:
		if e.Channel.ID != 0 {
			d.Q.ChannelDelete.Enqueue(e.Channel.ID)
		}

	case domain.CategoryCreated:
		d.Q.CategoryUpsert.Enqueue(catalogsvc.PrepareCategories(e.Category.TenantID, []source.Category{e.Category})...)
	case domain.CategoryUpdated:
		d.Q.CategoryUpsert.Enqueue(catalogsvc.PrepareCategories(e.Category.TenantID, []source.Category{e.Category})...)
	case domain.CategoryDeleted:
		if e.Category.ID != 0 {
			d.Q.CategoryDelete.Enqueue(e.Category.ID)
		}

	case domain.RoleCreated:
		d.Q.RoleUpsert.Enqueue(catalogsvc.PrepareRoles(e.Role.TenantID, []source.Role{e.Role})...)
	case domain.RoleUpdated:
		d.Q.RoleUpsert.Enqueue(catalogsvc.PrepareRoles(e.Role.TenantID, []source.Role{e.Role})...)
	case domain.RoleDeleted:
		if e.Role.ID != 0 {
			d.Q.RoleDelete.Enqueue(e.Role.ID)
		}

	case domain.MemberJoined:
		d.Q.MemberInsert.Enqueue(catalogsvc.PrepareMembers(e.Member.TenantID, []source.Member{e.Member})...)

	case domain.MemberUpdated:
		// presence churn carries no identity change and is dropped here
		if !identityChanged(e.Old, e.New) {
			return nil
		}
		d.Q.MemberUpdate.Enqueue(catalogsvc.PrepareMembers(e.New.TenantID, []source.Member{e.New})...)

	case domain.MemberLeft:
		if e.ID != 0 && e.TenantID != 0 {
			d.Q.MemberDelete.Enqueue(catalogdom.MemberKey{ID: e.ID, TenantID: e.TenantID})
		}

	case domain.TenantJoined:
		if e.Tenant.ID != 0 {
			d.Q.TenantUpsert.Enqueue(catalogsvc.PrepareTenant(e.Tenant))
		}
		d.kickBackup(ctx, e.Tenant.ID)

	case domain.TenantUpdated:
		if e.Tenant.ID != 0 {
			d.Q.TenantUpsert.Enqueue(catalogsvc.PrepareTenant(e.Tenant))
		}

	default:
		return perr.InvalidArgf("livesync: unhandled event %T", ev)
	}
	return nil
}

// identityChanged reports whether the fields we mirror actually moved
func identityChanged(prev, curr source.Member) bool {
	return prev.Username != curr.Username ||
		prev.DisplayName != curr.DisplayName ||
		prev.Nick != curr.Nick ||
		prev.AvatarHash != curr.AvatarHash
}

// kickBackup starts a full backup for a freshly joined tenant. It runs
// detached from the triggering request; the backfill lease swallows the race
// with an already running backup
func (d *Dispatcher) kickBackup(ctx context.Context, tenantID int64) {
	if d.Backup == nil || tenantID == 0 {
		return
	}
	l := logger.C(ctx).With().Str("mod", "livesync").Int64("tenant_id", tenantID).Logger()
	bctx := context.WithoutCancel(ctx)
	go func() {
		if err := d.Backup.BackupTenant(bctx, tenantID); err != nil {
			if perr.IsCode(err, perr.ErrorCodeConflict) {
				l.Debug().Msg("livesync: tenant backup already running")
				return
			}
			l.Error().Err(err).Msg("livesync: tenant join backup failed")
		}
	}()
}
