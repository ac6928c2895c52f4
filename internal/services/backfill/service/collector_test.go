package service

import (
	"context"
	"errors"
	"testing"

	"chatmirror/internal/adapters/source"
	"chatmirror/internal/services/backfill/domain"
)

type chunkRecorder struct {
	calls [][]int64
	fail  map[int]error
}

func (r *chunkRecorder) sink(_ context.Context, rows []int64) error {
	n := len(r.calls)
	r.calls = append(r.calls, append([]int64(nil), rows...))
	if err := r.fail[n]; err != nil {
		return err
	}
	return nil
}

func idExtract(m domain.Message) []int64 { return []int64{m.ID} }

func TestCollector_FlushChunksInOrder(t *testing.T) {
	t.Parallel()

	rec := &chunkRecorder{}
	c := NewCollector("messages", 3, idExtract, rec.sink)

	for i := int64(1); i <= 8; i++ {
		c.Add(domain.Message{ID: i})
	}
	if c.Len() != 8 {
		t.Fatalf("Len = %d, want 8", c.Len())
	}
	if err := c.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	want := [][]int64{{1, 2, 3}, {4, 5, 6}, {7, 8}}
	if len(rec.calls) != len(want) {
		t.Fatalf("sink calls = %d, want %d", len(rec.calls), len(want))
	}
	for i := range want {
		if len(rec.calls[i]) != len(want[i]) {
			t.Fatalf("chunk %d = %v, want %v", i, rec.calls[i], want[i])
		}
		for j := range want[i] {
			if rec.calls[i][j] != want[i][j] {
				t.Fatalf("chunk %d = %v, want %v", i, rec.calls[i], want[i])
			}
		}
	}
	if c.Len() != 0 {
		t.Fatalf("batch not cleared after a clean flush")
	}
}

func TestCollector_KeepsBatchWhenAChunkFails(t *testing.T) {
	t.Parallel()

	boom := errors.New("sink down")
	rec := &chunkRecorder{fail: map[int]error{1: boom}}
	c := NewCollector("messages", 2, idExtract, rec.sink)

	for i := int64(1); i <= 5; i++ {
		c.Add(domain.Message{ID: i})
	}
	if err := c.Flush(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("flush err = %v, want %v", err, boom)
	}
	// the first chunk landed but the batch stays whole for the retry
	if c.Len() != 5 {
		t.Fatalf("Len after failed flush = %d, want 5", c.Len())
	}

	rec.fail = nil
	if err := c.Flush(context.Background()); err != nil {
		t.Fatalf("retry flush: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("batch not cleared after the retry")
	}
	// 2 calls from the failed attempt, 3 from the retry rewriting everything
	if len(rec.calls) != 5 {
		t.Fatalf("total sink calls = %d, want 5", len(rec.calls))
	}
}

func TestCollector_EmptyFlushSkipsSink(t *testing.T) {
	t.Parallel()

	rec := &chunkRecorder{}
	c := NewCollector("messages", 3, idExtract, rec.sink)
	if err := c.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(rec.calls) != 0 {
		t.Fatalf("sink called on an empty batch")
	}
}

func TestCollector_DefaultChunkSize(t *testing.T) {
	t.Parallel()

	rec := &chunkRecorder{}
	c := NewCollector("messages", 0, idExtract, rec.sink)
	for i := range DefaultChunkSize + 1 {
		c.Add(domain.Message{ID: int64(i)})
	}
	if err := c.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(rec.calls) != 2 || len(rec.calls[0]) != DefaultChunkSize || len(rec.calls[1]) != 1 {
		t.Fatalf("chunk sizes = %d/%d calls, want %d then 1",
			len(rec.calls), len(rec.calls[0]), DefaultChunkSize)
	}
}

func TestCollector_ExtractFansOut(t *testing.T) {
	t.Parallel()

	urls := func(m domain.Message) []string {
		out := make([]string, 0, len(m.Attachments))
		for _, a := range m.Attachments {
			out = append(out, a.URL)
		}
		return out
	}
	var got []string
	c := NewCollector("attachments", 10, urls, func(_ context.Context, rows []string) error {
		got = append(got, rows...)
		return nil
	})

	c.Add(domain.Message{ID: 1, Attachments: []source.Attachment{{URL: "a"}, {URL: "b"}}})
	c.Add(domain.Message{ID: 2})
	c.Add(domain.Message{ID: 3, Attachments: []source.Attachment{{URL: "c"}}})
	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}
	if err := c.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Fatalf("rows = %v, want a b c", got)
	}
}
