package source

import "time"

// Snowflake ids arrive as decimal strings on the wire and are carried as
// int64 everywhere past the decode boundary.

// Tenant is the platform's group document
type Tenant struct {
	ID          int64     `json:"id,string"`
	Name        string    `json:"name"`
	IconHash    string    `json:"icon_hash"`
	OwnerID     int64     `json:"owner_id,string"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Category is a channel grouping inside a tenant
type Category struct {
	ID        int64     `json:"id,string"`
	TenantID  int64     `json:"tenant_id,string"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// Channel is a text channel. LastMessageID is zero for channels that have
// never held a message; the backfill pass skips those outright
type Channel struct {
	ID            int64     `json:"id,string"`
	TenantID      int64     `json:"tenant_id,string"`
	CategoryID    int64     `json:"category_id,string"`
	Name          string    `json:"name"`
	Topic         string    `json:"topic"`
	Position      int       `json:"position"`
	LastMessageID int64     `json:"last_message_id,string"`
	CreatedAt     time.Time `json:"created_at"`
}

// Role is a permission bundle inside a tenant
type Role struct {
	ID          int64     `json:"id,string"`
	TenantID    int64     `json:"tenant_id,string"`
	Name        string    `json:"name"`
	Color       int       `json:"color"`
	Position    int       `json:"position"`
	Permissions int64     `json:"permissions,string"`
	CreatedAt   time.Time `json:"created_at"`
}

// Member is a user scoped to one tenant
type Member struct {
	ID          int64     `json:"id,string"`
	TenantID    int64     `json:"tenant_id,string"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Nick        string    `json:"nick"`
	AvatarHash  string    `json:"avatar_hash"`
	JoinedAt    time.Time `json:"joined_at"`
}

// Message is one channel message with its satellites inlined
type Message struct {
	ID          int64        `json:"id,string"`
	ChannelID   int64        `json:"channel_id,string"`
	TenantID    int64        `json:"tenant_id,string"`
	Author      Member       `json:"author"`
	Content     string       `json:"content"`
	PostedAt    time.Time    `json:"posted_at"`
	EditedAt    *time.Time   `json:"edited_at,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Reactions   []Reaction   `json:"reactions,omitempty"`
	Mentions    []Member     `json:"mentions,omitempty"`
	Emoji       []EmojiRef   `json:"emoji,omitempty"`
}

// Attachment is one uploaded file on a message
type Attachment struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// Reaction is an aggregated emoji count on a message
type Reaction struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

// EmojiRef is a custom emoji used inside message content
type EmojiRef struct {
	ID   int64  `json:"id,string"`
	Name string `json:"name"`
}
