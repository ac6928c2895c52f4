package module

import (
	"context"

	"chatmirror/internal/core/sanitize"
	"chatmirror/internal/services/backfill/domain"
	"chatmirror/internal/services/backfill/service"
	catalogdom "chatmirror/internal/services/catalog/domain"
	catalogsvc "chatmirror/internal/services/catalog/service"
)

// channelsAdapter narrows the catalog store to the processor's channel view
type channelsAdapter struct {
	store catalogdom.StoragePort
}

func (a channelsAdapter) Channels(ctx context.Context, tenantID int64) ([]domain.Channel, error) {
	rows, err := a.store.ListChannels(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Channel, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Channel{ID: r.ID, LastMessageID: r.LastMessageID})
	}
	return out, nil
}

// tenantsAdapter narrows the catalog store to the scheduler's tenant view
type tenantsAdapter struct {
	store catalogdom.StoragePort
}

func (a tenantsAdapter) Tenant(ctx context.Context, tenantID int64) (domain.Tenant, error) {
	row, err := a.store.GetTenant(ctx, tenantID)
	if err != nil {
		return domain.Tenant{}, err
	}
	return domain.Tenant{ID: row.ID, CreatedAt: row.CreatedAt}, nil
}

func (a tenantsAdapter) Tenants(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := a.store.ListTenants(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Tenant, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Tenant{ID: r.ID, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

// newCollectorFactory assembles the per-window collector set: messages plus
// its satellite kinds, all sinking into the catalog store. Extra factories
// append their collectors after the standard set, so mirrors flush last
func newCollectorFactory(
	store catalogdom.StoragePort,
	chunk int,
	extra []domain.CollectorFactory,
) domain.CollectorFactory {
	norm := sanitize.New()
	return func(tenantID int64) []domain.Collector {
		cols := []domain.Collector{
			service.NewCollector("messages", chunk,
				func(m domain.Message) []catalogdom.MessageRow {
					return catalogsvc.PrepareMessages(norm, tenantID, m)
				},
				store.UpsertMessages),
			service.NewCollector("attachments", chunk, catalogsvc.PrepareAttachments, store.UpsertAttachments),
			service.NewCollector("reactions", chunk, catalogsvc.PrepareReactions, store.UpsertReactions),
			service.NewCollector("mentions", chunk, catalogsvc.PrepareMentions, store.UpsertMentions),
			service.NewCollector("emoji", chunk, catalogsvc.PrepareEmoji, store.UpsertEmoji),
		}
		for _, f := range extra {
			cols = append(cols, f(tenantID)...)
		}
		return cols
	}
}
