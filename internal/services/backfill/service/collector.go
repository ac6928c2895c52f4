// Package service contains the backfill scheduler, window processor and
// collector machinery
package service

import (
	"context"

	"chatmirror/internal/services/backfill/domain"
)

// DefaultChunkSize bounds rows per sink call; one multi-VALUES statement
// stays under the storage parameter-count limit at this size
const DefaultChunkSize = 550

// collector accumulates rows of one entity kind for one window. Add applies
// the extraction to every raw message offered by the fan-out; extraction is
// total (bad input yields zero rows). Flush writes the batch in chunk-sized
// slices, in order, one sink call per slice, sequentially. The batch clears
// only after every chunk lands, so a mid-flush failure leaves the whole batch
// for the retry; chunks that already landed rewrite idempotently
type collector[T any] struct {
	name    string
	chunk   int
	extract func(domain.Message) []T
	sink    func(ctx context.Context, rows []T) error
	rows    []T
}

// NewCollector builds a collector for one entity kind
func NewCollector[T any](
	name string,
	chunk int,
	extract func(domain.Message) []T,
	sink func(ctx context.Context, rows []T) error,
) domain.Collector {
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	if extract == nil {
		panic("backfill.NewCollector: nil extract")
	}
	if sink == nil {
		panic("backfill.NewCollector: nil sink")
	}
	return &collector[T]{name: name, chunk: chunk, extract: extract, sink: sink}
}

// Name implements domain.Collector
func (c *collector[T]) Name() string { return c.name }

// Add implements domain.Collector
func (c *collector[T]) Add(m domain.Message) {
	c.rows = append(c.rows, c.extract(m)...)
}

// Len implements domain.Collector
func (c *collector[T]) Len() int { return len(c.rows) }

// Flush implements domain.Collector
func (c *collector[T]) Flush(ctx context.Context) error {
	for off := 0; off < len(c.rows); off += c.chunk {
		end := min(off+c.chunk, len(c.rows))
		if err := c.sink(ctx, c.rows[off:end]); err != nil {
			return err
		}
	}
	c.rows = c.rows[:0]
	return nil
}
