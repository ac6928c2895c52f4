package domain

import (
	"encoding/json"
	"testing"

	perr "chatmirror/internal/platform/errors"
)

func decode(t *testing.T, raw string) Event {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("envelope: %v", err)
	}
	ev, err := DecodeEvent(env)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return ev
}

func TestDecodeEvent_MessageCreatedStampsTenant(t *testing.T) {
	t.Parallel()

	ev := decode(t, `{
		"type": "message_created",
		"tenant_id": "5",
		"payload": {
			"id": "101",
			"channel_id": "7",
			"author": {"id": "9", "username": "sam"},
			"content": "hi",
			"posted_at": "2025-06-01T10:00:00Z"
		}
	}`)
	mc, ok := ev.(MessageCreated)
	if !ok {
		t.Fatalf("variant = %T, want MessageCreated", ev)
	}
	if mc.Msg.ID != 101 || mc.Msg.ChannelID != 7 || mc.Msg.Author.ID != 9 {
		t.Fatalf("ids lost in decode: %+v", mc.Msg)
	}
	// the payload omitted tenant_id; the envelope fills it
	if mc.Msg.TenantID != 5 {
		t.Fatalf("tenant = %d, want envelope fallback 5", mc.Msg.TenantID)
	}
}

func TestDecodeEvent_PayloadTenantWins(t *testing.T) {
	t.Parallel()

	ev := decode(t, `{
		"type": "channel_updated",
		"tenant_id": "5",
		"payload": {"id": "10", "tenant_id": "77", "name": "general"}
	}`)
	cu := ev.(ChannelUpdated)
	if cu.Channel.TenantID != 77 {
		t.Fatalf("tenant = %d, want the payload's own 77", cu.Channel.TenantID)
	}
}

func TestDecodeEvent_BulkDeleteIDList(t *testing.T) {
	t.Parallel()

	ev := decode(t, `{
		"type": "bulk_messages_deleted",
		"tenant_id": "5",
		"payload": {"ids": ["1", "2", "3"], "channel_id": "7"}
	}`)
	bd := ev.(BulkMessagesDeleted)
	if len(bd.IDs) != 3 || bd.IDs[0] != 1 || bd.IDs[2] != 3 {
		t.Fatalf("ids = %v, want 1 2 3", bd.IDs)
	}
	if bd.ChannelID != 7 {
		t.Fatalf("channel = %d, want 7", bd.ChannelID)
	}
}

func TestDecodeEvent_MemberUpdatedCarriesBothSides(t *testing.T) {
	t.Parallel()

	ev := decode(t, `{
		"type": "member_updated",
		"tenant_id": "5",
		"payload": {
			"old": {"id": "8", "username": "sam", "nick": "sammy"},
			"new": {"id": "8", "username": "sam", "nick": "sammy2"}
		}
	}`)
	mu := ev.(MemberUpdated)
	if mu.Old.Nick != "sammy" || mu.New.Nick != "sammy2" {
		t.Fatalf("sides lost: old=%+v new=%+v", mu.Old, mu.New)
	}
	if mu.Old.TenantID != 5 || mu.New.TenantID != 5 {
		t.Fatalf("tenant stamp missing on member sides")
	}
}

func TestDecodeEvent_UnknownType(t *testing.T) {
	t.Parallel()

	_, err := DecodeEvent(Envelope{Type: "typing_started"})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v, want InvalidArgument", err)
	}
}

func TestDecodeEvent_MissingPayload(t *testing.T) {
	t.Parallel()

	_, err := DecodeEvent(Envelope{Type: TypeMessageCreated})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v, want InvalidArgument", err)
	}
}
