// Package service derives analytics rows from synced messages and plugs
// them into the backfill flush pipeline as an extra collector kind
package service

import (
	"time"
	"unicode/utf8"

	"chatmirror/internal/adapters/source"
	"chatmirror/internal/services/archive/domain"
	bfdom "chatmirror/internal/services/backfill/domain"
	bfsvc "chatmirror/internal/services/backfill/service"
)

// Derive maps one message to its archive row. Rows carry shape only
// (length, attachment presence), never content. Messages without an id
// or channel yield nothing, same as the relational prepare step, and a
// missing wire tenant falls back to the window's tenant
func Derive(tenantID int64, m source.Message) []domain.Row {
	if m.ID == 0 || m.ChannelID == 0 {
		return nil
	}
	tid := m.TenantID
	if tid == 0 {
		tid = tenantID
	}
	return []domain.Row{{
		TenantID:       tid,
		ChannelID:      m.ChannelID,
		MessageID:      m.ID,
		AuthorID:       m.Author.ID,
		PostedDay:      m.PostedAt.UTC().Truncate(24 * time.Hour),
		ContentLen:     uint32(utf8.RuneCountInString(m.Content)),
		HasAttachments: len(m.Attachments) > 0,
	}}
}

// NewFactory returns a collector factory that registers the archive
// kind for each window. The collector shares the backfill chunking and
// retry semantics, so a ClickHouse outage keeps the window unfinished
// exactly like a relational sink failure would
func NewFactory(st domain.StoragePort, chunk int) bfdom.CollectorFactory {
	if st == nil {
		panic("archive service: nil storage")
	}
	return func(tenantID int64) []bfdom.Collector {
		return []bfdom.Collector{
			bfsvc.NewCollector("archive.messages", chunk,
				func(m bfdom.Message) []domain.Row { return Derive(tenantID, m) },
				st.InsertRows,
			),
		}
	}
}
