package repo

import (
	"context"
	"fmt"
	"strings"

	perr "chatmirror/internal/platform/errors"
	"chatmirror/internal/services/catalog/domain"
)

// UpsertMessages writes message rows in one statement. edited_at merges with
// COALESCE so a replayed create cannot null out an edit that already landed
func (r *queries) UpsertMessages(ctx context.Context, rows []domain.MessageRow) error {
	if len(rows) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO messages
		(id, channel_id, tenant_id, author_id, content, content_clean, posted_at, edited_at, synced_at) VALUES `)

	args := make([]any, 0, len(rows)*8)
	for i, m := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*8 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,now())",
			base, base+1, base+2, base+3, base+4, base+5, base+6, base+7)
		args = append(args,
			m.ID, m.ChannelID, m.TenantID, m.AuthorID,
			m.Content, m.ContentClean, m.PostedAt, m.EditedAt,
		)
	}
	sb.WriteString(` ON CONFLICT (id) DO UPDATE SET
		content       = excluded.content,
		content_clean = excluded.content_clean,
		edited_at     = COALESCE(excluded.edited_at, messages.edited_at),
		synced_at     = now(),
		deleted_at    = NULL`)

	_, err := r.q.Exec(ctx, sb.String(), args...)
	return perr.FromPostgresWithField(err, "upsert messages")
}

// UpsertAttachments writes attachment rows in one statement
func (r *queries) UpsertAttachments(ctx context.Context, rows []domain.AttachmentRow) error {
	if len(rows) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO message_attachments (message_id, url, filename) VALUES `)

	args := make([]any, 0, len(rows)*3)
	for i, a := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*3 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d)", base, base+1, base+2)
		args = append(args, a.MessageID, a.URL, a.Filename)
	}
	sb.WriteString(` ON CONFLICT (message_id, url) DO NOTHING`)

	_, err := r.q.Exec(ctx, sb.String(), args...)
	return perr.FromPostgresWithField(err, "upsert attachments")
}

// UpsertReactions writes reaction tallies in one statement; the count is a
// snapshot, so the latest write wins
func (r *queries) UpsertReactions(ctx context.Context, rows []domain.ReactionRow) error {
	if len(rows) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO message_reactions (message_id, emoji, count) VALUES `)

	args := make([]any, 0, len(rows)*3)
	for i, re := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*3 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d)", base, base+1, base+2)
		args = append(args, re.MessageID, re.Emoji, re.Count)
	}
	sb.WriteString(` ON CONFLICT (message_id, emoji) DO UPDATE SET count = excluded.count`)

	_, err := r.q.Exec(ctx, sb.String(), args...)
	return perr.FromPostgresWithField(err, "upsert reactions")
}

// UpsertMentions writes mention links in one statement
func (r *queries) UpsertMentions(ctx context.Context, rows []domain.MentionRow) error {
	if len(rows) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO message_mentions (message_id, member_id) VALUES `)

	args := make([]any, 0, len(rows)*2)
	for i, m := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*2 + 1
		fmt.Fprintf(&sb, "($%d,$%d)", base, base+1)
		args = append(args, m.MessageID, m.MemberID)
	}
	sb.WriteString(` ON CONFLICT (message_id, member_id) DO NOTHING`)

	_, err := r.q.Exec(ctx, sb.String(), args...)
	return perr.FromPostgresWithField(err, "upsert mentions")
}

// UpsertEmoji writes custom-emoji references in one statement
func (r *queries) UpsertEmoji(ctx context.Context, rows []domain.EmojiRow) error {
	if len(rows) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO message_emoji (message_id, emoji_id, name) VALUES `)

	args := make([]any, 0, len(rows)*3)
	for i, e := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*3 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d)", base, base+1, base+2)
		args = append(args, e.MessageID, e.EmojiID, e.Name)
	}
	sb.WriteString(` ON CONFLICT (message_id, emoji_id) DO NOTHING`)

	_, err := r.q.Exec(ctx, sb.String(), args...)
	return perr.FromPostgresWithField(err, "upsert emoji")
}
