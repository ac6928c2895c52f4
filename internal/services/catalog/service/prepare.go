// Package service contains the catalog resync workflow and the wire-to-row
// prepare policy shared with the backfill and livesync writers
package service

import (
	"chatmirror/internal/adapters/source"
	"chatmirror/internal/core/sanitize"
	str "chatmirror/internal/platform/strings"
	tim "chatmirror/internal/platform/time"
	"chatmirror/internal/services/catalog/domain"
)

// Prepare functions absorb their own bad input: a malformed wire document
// yields zero rows, never an error and never a panic, so collector fan-out
// stays total.

// PrepareTenant maps one tenant document to its row
func PrepareTenant(t source.Tenant) domain.TenantRow {
	return domain.TenantRow{
		ID:          t.ID,
		Name:        t.Name,
		IconHash:    str.Ptr(str.EmptyToNil(t.IconHash)),
		OwnerID:     t.OwnerID,
		MemberCount: t.MemberCount,
		CreatedAt:   tim.UTC(t.CreatedAt),
	}
}

// PrepareCategories maps category documents, dropping rows without an id
func PrepareCategories(tenantID int64, xs []source.Category) []domain.CategoryRow {
	out := make([]domain.CategoryRow, 0, len(xs))
	for _, c := range xs {
		if c.ID == 0 {
			continue
		}
		out = append(out, domain.CategoryRow{
			ID:        c.ID,
			TenantID:  pick(c.TenantID, tenantID),
			Name:      c.Name,
			Position:  c.Position,
			CreatedAt: tim.UTC(c.CreatedAt),
		})
	}
	return out
}

// PrepareChannels maps channel documents, dropping rows without an id
func PrepareChannels(tenantID int64, xs []source.Channel) []domain.ChannelRow {
	out := make([]domain.ChannelRow, 0, len(xs))
	for _, c := range xs {
		if c.ID == 0 {
			continue
		}
		row := domain.ChannelRow{
			ID:        c.ID,
			TenantID:  pick(c.TenantID, tenantID),
			Name:      c.Name,
			Topic:     str.Ptr(str.EmptyToNil(c.Topic)),
			Position:  c.Position,
			CreatedAt: tim.UTC(c.CreatedAt),
		}
		if c.CategoryID != 0 {
			cat := c.CategoryID
			row.CategoryID = &cat
		}
		if c.LastMessageID != 0 {
			last := c.LastMessageID
			row.LastMessageID = &last
		}
		out = append(out, row)
	}
	return out
}

// PrepareRoles maps role documents, dropping rows without an id
func PrepareRoles(tenantID int64, xs []source.Role) []domain.RoleRow {
	out := make([]domain.RoleRow, 0, len(xs))
	for _, ro := range xs {
		if ro.ID == 0 {
			continue
		}
		out = append(out, domain.RoleRow{
			ID:          ro.ID,
			TenantID:    pick(ro.TenantID, tenantID),
			Name:        ro.Name,
			Color:       ro.Color,
			Position:    ro.Position,
			Permissions: ro.Permissions,
			CreatedAt:   tim.UTC(ro.CreatedAt),
		})
	}
	return out
}

// PrepareMembers maps member documents, dropping rows without an id
func PrepareMembers(tenantID int64, xs []source.Member) []domain.MemberRow {
	out := make([]domain.MemberRow, 0, len(xs))
	for _, m := range xs {
		if m.ID == 0 {
			continue
		}
		out = append(out, PrepareMember(tenantID, m))
	}
	return out
}

// PrepareMember maps a single member document
func PrepareMember(tenantID int64, m source.Member) domain.MemberRow {
	return domain.MemberRow{
		ID:          m.ID,
		TenantID:    pick(m.TenantID, tenantID),
		Username:    m.Username,
		DisplayName: str.Ptr(str.EmptyToNil(m.DisplayName)),
		Nick:        str.Ptr(str.EmptyToNil(m.Nick)),
		AvatarHash:  str.Ptr(str.EmptyToNil(m.AvatarHash)),
		JoinedAt:    tim.UTC(m.JoinedAt),
	}
}

// PrepareMessages maps one message document to its primary row. Content keeps
// the stripped original text; ContentClean is the search-normalized form
func PrepareMessages(n *sanitize.Normalizer, tenantID int64, m source.Message) []domain.MessageRow {
	if m.ID == 0 || m.ChannelID == 0 {
		return nil
	}
	content := sanitize.Clean(m.Content)
	return []domain.MessageRow{{
		ID:           m.ID,
		ChannelID:    m.ChannelID,
		TenantID:     pick(m.TenantID, tenantID),
		AuthorID:     m.Author.ID,
		Content:      content,
		ContentClean: n.Normalize(content),
		PostedAt:     tim.UTC(m.PostedAt),
		EditedAt:     m.EditedAt,
	}}
}

// PrepareAttachments extracts attachment rows from one message
func PrepareAttachments(m source.Message) []domain.AttachmentRow {
	if m.ID == 0 || len(m.Attachments) == 0 {
		return nil
	}
	out := make([]domain.AttachmentRow, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		if a.URL == "" {
			continue
		}
		out = append(out, domain.AttachmentRow{MessageID: m.ID, URL: a.URL, Filename: a.Filename})
	}
	return out
}

// PrepareReactions extracts reaction tally rows from one message
func PrepareReactions(m source.Message) []domain.ReactionRow {
	if m.ID == 0 || len(m.Reactions) == 0 {
		return nil
	}
	out := make([]domain.ReactionRow, 0, len(m.Reactions))
	for _, re := range m.Reactions {
		if re.Emoji == "" {
			continue
		}
		out = append(out, domain.ReactionRow{MessageID: m.ID, Emoji: re.Emoji, Count: re.Count})
	}
	return out
}

// PrepareMentions extracts mention rows from one message, deduped so a user
// mentioned twice in one message lands once
func PrepareMentions(m source.Message) []domain.MentionRow {
	if m.ID == 0 || len(m.Mentions) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(m.Mentions))
	out := make([]domain.MentionRow, 0, len(m.Mentions))
	for _, u := range m.Mentions {
		if u.ID == 0 {
			continue
		}
		if _, dup := seen[u.ID]; dup {
			continue
		}
		seen[u.ID] = struct{}{}
		out = append(out, domain.MentionRow{MessageID: m.ID, MemberID: u.ID})
	}
	return out
}

// PrepareEmoji extracts custom-emoji reference rows from one message, deduped
func PrepareEmoji(m source.Message) []domain.EmojiRow {
	if m.ID == 0 || len(m.Emoji) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(m.Emoji))
	out := make([]domain.EmojiRow, 0, len(m.Emoji))
	for _, e := range m.Emoji {
		if e.ID == 0 {
			continue
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, domain.EmojiRow{MessageID: m.ID, EmojiID: e.ID, Name: e.Name})
	}
	return out
}

// pick prefers the wire-carried tenant id, falling back to the caller's
func pick(wire, fallback int64) int64 {
	if wire != 0 {
		return wire
	}
	return fallback
}
