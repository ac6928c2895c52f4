package service

import (
	"context"
	"testing"
	"time"

	"chatmirror/internal/adapters/source"
	"chatmirror/internal/services/archive/domain"
)

type rowRecorder struct {
	calls [][]domain.Row
}

func (r *rowRecorder) InsertRows(_ context.Context, rows []domain.Row) error {
	cp := make([]domain.Row, len(rows))
	copy(cp, rows)
	r.calls = append(r.calls, cp)
	return nil
}

func TestDerive_CompactsMessageShape(t *testing.T) {
	t.Parallel()

	posted := time.Date(2024, 3, 9, 22, 45, 11, 0, time.UTC)
	rows := Derive(42, source.Message{
		ID:        900,
		ChannelID: 77,
		TenantID:  42,
		Author:    source.Member{ID: 5},
		Content:   "héllo wörld",
		PostedAt:  posted,
		Attachments: []source.Attachment{
			{URL: "https://cdn.example/a.png", Filename: "a.png"},
		},
	})
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	r := rows[0]
	if r.MessageID != 900 || r.ChannelID != 77 || r.TenantID != 42 || r.AuthorID != 5 {
		t.Fatalf("ids = %+v", r)
	}
	if want := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC); !r.PostedDay.Equal(want) {
		t.Fatalf("posted day = %v, want %v", r.PostedDay, want)
	}
	if r.ContentLen != 11 {
		t.Fatalf("content len = %d, want 11 runes", r.ContentLen)
	}
	if !r.HasAttachments {
		t.Fatalf("has attachments = false")
	}
}

func TestDerive_FallsBackToWindowTenant(t *testing.T) {
	t.Parallel()

	rows := Derive(42, source.Message{ID: 1, ChannelID: 2, PostedAt: time.Now()})
	if len(rows) != 1 || rows[0].TenantID != 42 {
		t.Fatalf("rows = %+v, want tenant 42", rows)
	}
	if rows[0].HasAttachments {
		t.Fatalf("bare message reported attachments")
	}
}

func TestDerive_DropsMalformedMessages(t *testing.T) {
	t.Parallel()

	if rows := Derive(1, source.Message{ChannelID: 2}); rows != nil {
		t.Fatalf("message without id yielded %+v", rows)
	}
	if rows := Derive(1, source.Message{ID: 3}); rows != nil {
		t.Fatalf("message without channel yielded %+v", rows)
	}
}

func TestFactory_CollectsAndFlushesInChunks(t *testing.T) {
	t.Parallel()

	rec := &rowRecorder{}
	cs := NewFactory(rec, 2)(42)
	if len(cs) != 1 {
		t.Fatalf("collectors = %d, want 1", len(cs))
	}
	c := cs[0]
	if c.Name() != "archive.messages" {
		t.Fatalf("name = %q", c.Name())
	}

	for i := range 5 {
		c.Add(source.Message{ID: int64(i + 1), ChannelID: 7, PostedAt: time.Now()})
	}
	c.Add(source.Message{ChannelID: 7}) // malformed, no row

	if err := c.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("len after flush = %d", c.Len())
	}
	if len(rec.calls) != 3 {
		t.Fatalf("chunks = %d, want 3", len(rec.calls))
	}
	var got []int64
	for _, call := range rec.calls {
		for _, r := range call {
			got = append(got, r.MessageID)
		}
	}
	for i, id := range got {
		if id != int64(i+1) {
			t.Fatalf("flush order = %v", got)
		}
	}
}
