// Package service contains the buffered queue registry, the budgeted
// flusher and the event dispatcher
package service

import (
	"context"
	"slices"
	"sync"

	"chatmirror/internal/platform/metrics"
)

// Group orders the three flush phases of one tick
type Group int

// Flush groups, drained in declaration order
const (
	GroupInsert Group = iota
	GroupUpdate
	GroupDelete
)

// String returns the group label used in logs
func (g Group) String() string {
	switch g {
	case GroupInsert:
		return "insert"
	case GroupUpdate:
		return "update"
	case GroupDelete:
		return "delete"
	}
	return "unknown"
}

// kindQueue is the untyped surface the flusher drives. Registration order
// within a group is drain order
type kindQueue interface {
	Name() string
	Len() int
	drain(ctx context.Context, budget int) (int, error)
}

// Registry owns the named queues. All registration happens during wiring,
// before any producer or the flusher runs
type Registry struct {
	mu     sync.Mutex
	groups map[Group][]kindQueue
	names  map[string]struct{}
	met    *metrics.Metrics
}

// NewRegistry constructs an empty registry; met may be nil in tests
func NewRegistry(met *metrics.Metrics) *Registry {
	return &Registry{
		groups: make(map[Group][]kindQueue),
		names:  make(map[string]struct{}),
		met:    met,
	}
}

// kinds returns the group's queues in registration order
func (r *Registry) kinds(g Group) []kindQueue {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.groups[g])
}

// Depths snapshots every queue's current length keyed by kind name
func (r *Registry) Depths() map[string]int {
	r.mu.Lock()
	qs := make([]kindQueue, 0, len(r.names))
	for _, g := range []Group{GroupInsert, GroupUpdate, GroupDelete} {
		qs = append(qs, r.groups[g]...)
	}
	r.mu.Unlock()

	out := make(map[string]int, len(qs))
	for _, q := range qs {
		out[q.Name()] = q.Len()
	}
	return out
}

func (r *Registry) add(g Group, q kindQueue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.names[q.Name()]; dup {
		panic("livesync: duplicate queue kind " + q.Name())
	}
	r.names[q.Name()] = struct{}{}
	r.groups[g] = append(r.groups[g], q)
}

// Queue buffers prepared rows of one kind until a flush tick drains them.
// Enqueue never blocks and never fails; depth is unbounded and exported as
// a gauge so growth is at least visible
type Queue[T any] struct {
	name string
	sink func(ctx context.Context, rows []T) error
	met  *metrics.Metrics

	mu    sync.Mutex
	items []T
}

// Register creates a queue for one kind, appends it to the group's drain
// order and returns the typed producer handle
func Register[T any](r *Registry, g Group, name string, sink func(ctx context.Context, rows []T) error) *Queue[T] {
	if sink == nil {
		panic("livesync: nil sink for queue kind " + name)
	}
	q := &Queue[T]{name: name, sink: sink, met: r.met}
	r.add(g, q)
	return q
}

// Name returns the unique kind name
func (q *Queue[T]) Name() string { return q.name }

// Len returns the current depth
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Enqueue appends rows in arrival order
func (q *Queue[T]) Enqueue(rows ...T) {
	if len(rows) == 0 {
		return
	}
	q.mu.Lock()
	q.items = append(q.items, rows...)
	depth := len(q.items)
	q.mu.Unlock()
	if q.met != nil {
		q.met.SetQueueDepth(q.name, depth)
	}
}

// drain sends up to budget rows to the sink. The snapshot is taken under the
// lock, the sink call runs outside it, and the pop happens only on success,
// so a failed sink leaves the queue exactly as it was and rows enqueued
// during the sink call keep their FIFO position
func (q *Queue[T]) drain(ctx context.Context, budget int) (int, error) {
	q.mu.Lock()
	n := min(budget, len(q.items))
	if n == 0 {
		q.mu.Unlock()
		return 0, nil
	}
	batch := slices.Clone(q.items[:n])
	q.mu.Unlock()

	if err := q.sink(ctx, batch); err != nil {
		return 0, err
	}

	q.mu.Lock()
	q.items = slices.Delete(q.items, 0, n)
	depth := len(q.items)
	q.mu.Unlock()
	if q.met != nil {
		q.met.SetQueueDepth(q.name, depth)
	}
	return n, nil
}
