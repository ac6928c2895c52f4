// Package domain defines the live event variants and the ports the
// livesync service exposes
package domain

import (
	"chatmirror/internal/adapters/source"
)

// Event is the closed set of live platform events. Variants carry decoded
// wire documents; the dispatcher matches them exhaustively
type Event interface {
	isEvent()
}

// MessageCreated announces a brand new message
type MessageCreated struct {
	Msg source.Message
}

// MessageEdited announces a content or metadata edit
type MessageEdited struct {
	Msg source.Message
}

// MessageDeleted announces a single message removal
type MessageDeleted struct {
	ID        int64
	ChannelID int64
}

// BulkMessagesDeleted announces a moderation sweep
type BulkMessagesDeleted struct {
	IDs       []int64
	ChannelID int64
}

// ChannelCreated announces a new channel
type ChannelCreated struct {
	Channel source.Channel
}

// ChannelUpdated announces channel metadata changes
type ChannelUpdated struct {
	Channel source.Channel
}

// ChannelDeleted announces a channel removal
type ChannelDeleted struct {
	Channel source.Channel
}

// CategoryCreated announces a new category
type CategoryCreated struct {
	Category source.Category
}

// CategoryUpdated announces category metadata changes
type CategoryUpdated struct {
	Category source.Category
}

// CategoryDeleted announces a category removal
type CategoryDeleted struct {
	Category source.Category
}

// RoleCreated announces a new role
type RoleCreated struct {
	Role source.Role
}

// RoleUpdated announces role metadata changes
type RoleUpdated struct {
	Role source.Role
}

// RoleDeleted announces a role removal
type RoleDeleted struct {
	Role source.Role
}

// MemberJoined announces a member joining a tenant
type MemberJoined struct {
	Member source.Member
}

// MemberUpdated carries both sides of a member change so the dispatcher can
// drop presence-only noise
type MemberUpdated struct {
	Old source.Member
	New source.Member
}

// MemberLeft announces a member leaving a tenant
type MemberLeft struct {
	ID       int64
	TenantID int64
}

// TenantJoined announces this daemon gaining access to a tenant
type TenantJoined struct {
	Tenant source.Tenant
}

// TenantUpdated announces tenant metadata changes
type TenantUpdated struct {
	Tenant source.Tenant
}

func (MessageCreated) isEvent()      {}
func (MessageEdited) isEvent()       {}
func (MessageDeleted) isEvent()      {}
func (BulkMessagesDeleted) isEvent() {}
func (ChannelCreated) isEvent()      {}
func (ChannelUpdated) isEvent()      {}
func (ChannelDeleted) isEvent()      {}
func (CategoryCreated) isEvent()     {}
func (CategoryUpdated) isEvent()     {}
func (CategoryDeleted) isEvent()     {}
func (RoleCreated) isEvent()         {}
func (RoleUpdated) isEvent()         {}
func (RoleDeleted) isEvent()         {}
func (MemberJoined) isEvent()        {}
func (MemberUpdated) isEvent()       {}
func (MemberLeft) isEvent()          {}
func (TenantJoined) isEvent()        {}
func (TenantUpdated) isEvent()       {}
