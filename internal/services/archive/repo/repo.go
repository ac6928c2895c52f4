// Package repo provides the ClickHouse-backed archive storage
package repo

import (
	"context"

	"chatmirror/internal/platform/store"
	"chatmirror/internal/services/archive/domain"
)

// column order matches the messages_archive schema; rows are appended
// positionally so this slice and buildRow must stay in lockstep
var archiveCols = []string{
	"tenant_id",
	"channel_id",
	"message_id",
	"author_id",
	"posted_day",
	"content_len",
	"has_attachments",
}

// NewCH wraps the ClickHouse seam as the archive storage port
func NewCH(ch store.Clickhouse) domain.StoragePort {
	if ch == nil {
		panic("archive repo: nil clickhouse")
	}
	return &chStore{ch: ch}
}

type chStore struct {
	ch store.Clickhouse
}

// InsertRows implements domain.StoragePort
// The table is append-only; the engine collapses duplicate message ids
// on merge, so re-sending a chunk after a mid-flush retry is harmless
func (s *chStore) InsertRows(ctx context.Context, rows []domain.Row) error {
	if len(rows) == 0 {
		return nil
	}
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, buildRow(r))
	}
	return s.ch.Insert(ctx, "chatmirror.messages_archive", archiveCols, out)
}

func buildRow(r domain.Row) []any {
	return []any{
		uint64(r.TenantID),
		uint64(r.ChannelID),
		uint64(r.MessageID),
		uint64(r.AuthorID),
		r.PostedDay,
		r.ContentLen,
		r.HasAttachments,
	}
}
