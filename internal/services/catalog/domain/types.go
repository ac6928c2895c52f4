// Package domain defines the catalog row types and ports
package domain

import "time"

// TenantRow is one mirrored tenant (a chat server/guild)
type TenantRow struct {
	ID          int64
	Name        string
	IconHash    *string
	OwnerID     int64
	MemberCount int
	CreatedAt   time.Time
}

// CategoryRow is one channel category inside a tenant
type CategoryRow struct {
	ID        int64
	TenantID  int64
	Name      string
	Position  int
	CreatedAt time.Time
}

// ChannelRow is one text channel inside a tenant.
// LastMessageID nil means the channel has never held a message
type ChannelRow struct {
	ID            int64
	TenantID      int64
	CategoryID    *int64
	Name          string
	Topic         *string
	Position      int
	LastMessageID *int64
	CreatedAt     time.Time
}

// RoleRow is one role inside a tenant
type RoleRow struct {
	ID          int64
	TenantID    int64
	Name        string
	Color       int
	Position    int
	Permissions int64
	CreatedAt   time.Time
}

// MemberRow is one membership record, keyed (id, tenant_id) since the same
// account can belong to many tenants with different nicks
type MemberRow struct {
	ID          int64
	TenantID    int64
	Username    string
	DisplayName *string
	Nick        *string
	AvatarHash  *string
	JoinedAt    time.Time
}

// MemberKey addresses one membership for deletes
type MemberKey struct {
	ID       int64
	TenantID int64
}

// MessageRow is one mirrored message. Content is the raw text after control
// stripping; ContentClean is the search-normalized form
type MessageRow struct {
	ID           int64
	ChannelID    int64
	TenantID     int64
	AuthorID     int64
	Content      string
	ContentClean string
	PostedAt     time.Time
	EditedAt     *time.Time
}

// AttachmentRow is one file attached to a message
type AttachmentRow struct {
	MessageID int64
	URL       string
	Filename  string
}

// ReactionRow is one emoji reaction tally on a message
type ReactionRow struct {
	MessageID int64
	Emoji     string
	Count     int
}

// MentionRow links a message to one mentioned member
type MentionRow struct {
	MessageID int64
	MemberID  int64
}

// EmojiRow is one custom-emoji reference found in a message
type EmojiRow struct {
	MessageID int64
	EmojiID   int64
	Name      string
}
