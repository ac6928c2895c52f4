package domain

import (
	"encoding/json"
	"strconv"

	"chatmirror/internal/adapters/source"
	perr "chatmirror/internal/platform/errors"
)

// Wire type tags for the events ingest surface
const (
	TypeMessageCreated      = "message_created"
	TypeMessageEdited       = "message_edited"
	TypeMessageDeleted      = "message_deleted"
	TypeBulkMessagesDeleted = "bulk_messages_deleted"
	TypeChannelCreated      = "channel_created"
	TypeChannelUpdated      = "channel_updated"
	TypeChannelDeleted      = "channel_deleted"
	TypeCategoryCreated     = "category_created"
	TypeCategoryUpdated     = "category_updated"
	TypeCategoryDeleted     = "category_deleted"
	TypeRoleCreated         = "role_created"
	TypeRoleUpdated         = "role_updated"
	TypeRoleDeleted         = "role_deleted"
	TypeMemberJoined        = "member_joined"
	TypeMemberUpdated       = "member_updated"
	TypeMemberLeft          = "member_left"
	TypeTenantJoined        = "tenant_joined"
	TypeTenantUpdated       = "tenant_updated"
)

// Envelope is the transport frame for one live event. Snowflake ids ride as
// decimal strings, matching the source wire convention
type Envelope struct {
	Type     string          `json:"type"`
	TenantID int64           `json:"tenant_id,string"`
	Payload  json.RawMessage `json:"payload"`
}

// idList decodes a JSON array of decimal-string snowflakes
type idList []int64

func (l *idList) UnmarshalJSON(b []byte) error {
	var strs []string
	if err := json.Unmarshal(b, &strs); err != nil {
		return err
	}
	out := make([]int64, 0, len(strs))
	for _, s := range strs {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		out = append(out, v)
	}
	*l = out
	return nil
}

// DecodeEvent maps one envelope to its typed variant. The envelope tenant id
// backfills documents whose payload omitted it
func DecodeEvent(env Envelope) (Event, error) {
	switch env.Type {
	case TypeMessageCreated:
		m, err := decodeMessage(env)
		if err != nil {
			return nil, err
		}
		return MessageCreated{Msg: m}, nil
	case TypeMessageEdited:
		m, err := decodeMessage(env)
		if err != nil {
			return nil, err
		}
		return MessageEdited{Msg: m}, nil

	case TypeMessageDeleted:
		var p struct {
			ID        int64 `json:"id,string"`
			ChannelID int64 `json:"channel_id,string"`
		}
		if err := unmarshal(env, &p); err != nil {
			return nil, err
		}
		return MessageDeleted{ID: p.ID, ChannelID: p.ChannelID}, nil

	case TypeBulkMessagesDeleted:
		var p struct {
			IDs       idList `json:"ids"`
			ChannelID int64  `json:"channel_id,string"`
		}
		if err := unmarshal(env, &p); err != nil {
			return nil, err
		}
		return BulkMessagesDeleted{IDs: p.IDs, ChannelID: p.ChannelID}, nil

	case TypeChannelCreated:
		c, err := decodeChannel(env)
		if err != nil {
			return nil, err
		}
		return ChannelCreated{Channel: c}, nil
	case TypeChannelUpdated:
		c, err := decodeChannel(env)
		if err != nil {
			return nil, err
		}
		return ChannelUpdated{Channel: c}, nil
	case TypeChannelDeleted:
		c, err := decodeChannel(env)
		if err != nil {
			return nil, err
		}
		return ChannelDeleted{Channel: c}, nil

	case TypeCategoryCreated:
		c, err := decodeCategory(env)
		if err != nil {
			return nil, err
		}
		return CategoryCreated{Category: c}, nil
	case TypeCategoryUpdated:
		c, err := decodeCategory(env)
		if err != nil {
			return nil, err
		}
		return CategoryUpdated{Category: c}, nil
	case TypeCategoryDeleted:
		c, err := decodeCategory(env)
		if err != nil {
			return nil, err
		}
		return CategoryDeleted{Category: c}, nil

	case TypeRoleCreated:
		r, err := decodeRole(env)
		if err != nil {
			return nil, err
		}
		return RoleCreated{Role: r}, nil
	case TypeRoleUpdated:
		r, err := decodeRole(env)
		if err != nil {
			return nil, err
		}
		return RoleUpdated{Role: r}, nil
	case TypeRoleDeleted:
		r, err := decodeRole(env)
		if err != nil {
			return nil, err
		}
		return RoleDeleted{Role: r}, nil

	case TypeMemberJoined:
		var m source.Member
		if err := unmarshal(env, &m); err != nil {
			return nil, err
		}
		stamp(&m.TenantID, env.TenantID)
		return MemberJoined{Member: m}, nil

	case TypeMemberUpdated:
		var p struct {
			Old source.Member `json:"old"`
			New source.Member `json:"new"`
		}
		if err := unmarshal(env, &p); err != nil {
			return nil, err
		}
		stamp(&p.Old.TenantID, env.TenantID)
		stamp(&p.New.TenantID, env.TenantID)
		return MemberUpdated{Old: p.Old, New: p.New}, nil

	case TypeMemberLeft:
		var p struct {
			ID       int64 `json:"id,string"`
			TenantID int64 `json:"tenant_id,string"`
		}
		if err := unmarshal(env, &p); err != nil {
			return nil, err
		}
		stamp(&p.TenantID, env.TenantID)
		return MemberLeft{ID: p.ID, TenantID: p.TenantID}, nil

	case TypeTenantJoined:
		var t source.Tenant
		if err := unmarshal(env, &t); err != nil {
			return nil, err
		}
		return TenantJoined{Tenant: t}, nil
	case TypeTenantUpdated:
		var t source.Tenant
		if err := unmarshal(env, &t); err != nil {
			return nil, err
		}
		return TenantUpdated{Tenant: t}, nil
	}
	return nil, perr.InvalidArgf("livesync: unknown event type %q", env.Type)
}

func decodeMessage(env Envelope) (source.Message, error) {
	var m source.Message
	if err := unmarshal(env, &m); err != nil {
		return source.Message{}, err
	}
	stamp(&m.TenantID, env.TenantID)
	return m, nil
}

func decodeChannel(env Envelope) (source.Channel, error) {
	var c source.Channel
	if err := unmarshal(env, &c); err != nil {
		return source.Channel{}, err
	}
	stamp(&c.TenantID, env.TenantID)
	return c, nil
}

func decodeCategory(env Envelope) (source.Category, error) {
	var c source.Category
	if err := unmarshal(env, &c); err != nil {
		return source.Category{}, err
	}
	stamp(&c.TenantID, env.TenantID)
	return c, nil
}

func decodeRole(env Envelope) (source.Role, error) {
	var r source.Role
	if err := unmarshal(env, &r); err != nil {
		return source.Role{}, err
	}
	stamp(&r.TenantID, env.TenantID)
	return r, nil
}

func unmarshal(env Envelope, v any) error {
	if len(env.Payload) == 0 {
		return perr.InvalidArgf("livesync: event %q has no payload", env.Type)
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return perr.JSONErrf("livesync: bad %s payload: %v", env.Type, err)
	}
	return nil
}

func stamp(id *int64, tenantID int64) {
	if *id == 0 {
		*id = tenantID
	}
}
