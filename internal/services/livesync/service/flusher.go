package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	perr "chatmirror/internal/platform/errors"
	"chatmirror/internal/platform/logger"
	"chatmirror/internal/platform/metrics"
)

// FlushConfig carries the tick cadence and per-group row budgets
type FlushConfig struct {
	Interval     time.Duration
	InsertBudget int
	UpdateBudget int
	DeleteBudget int
}

// Flusher drains the registry on a fixed cadence. One tick walks the groups
// insert, update, delete; within a group the kinds share the group budget in
// registration order. At most one tick runs at a time; a timer firing during
// a tick is dropped, and a manual flush during a tick answers Conflict
type Flusher struct {
	Reg *Registry
	Cfg FlushConfig
	Met *metrics.Metrics

	inFlight atomic.Bool
}

// NewFlusher constructs a flusher with defaulted config
func NewFlusher(reg *Registry, cfg FlushConfig, met *metrics.Metrics) *Flusher {
	if reg == nil {
		panic("livesync.NewFlusher: nil registry")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.InsertBudget <= 0 {
		cfg.InsertBudget = 1000
	}
	if cfg.UpdateBudget <= 0 {
		cfg.UpdateBudget = 2000
	}
	if cfg.DeleteBudget <= 0 {
		cfg.DeleteBudget = 1000
	}
	return &Flusher{Reg: reg, Cfg: cfg, Met: met}
}

// Flush runs one tick immediately, sharing the exclusivity guard with the
// scheduled loop
func (f *Flusher) Flush(ctx context.Context) error {
	if !f.inFlight.CompareAndSwap(false, true) {
		return perr.Conflictf("livesync: flush tick already running")
	}
	defer f.inFlight.Store(false)
	return f.tick(ctx)
}

// Loop drives scheduled ticks until the context ends. Stopping cancels the
// timer only; buffered rows stay queued for the next start
func (f *Flusher) Loop(ctx context.Context) error {
	l := logger.C(ctx).With().Str("mod", "livesync").Logger()
	t := time.NewTicker(f.Cfg.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if !f.inFlight.CompareAndSwap(false, true) {
				l.Debug().Msg("livesync: tick skipped, previous still running")
				continue
			}
			err := f.tick(ctx)
			f.inFlight.Store(false)
			switch {
			case err == nil:
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return err
			default:
				// unpopped rows are still queued; the next tick retries
				l.Error().Err(err).Msg("livesync: flush tick failed")
			}
		}
	}
}

// tick walks the groups in order, each kind taking at most the remaining
// group budget. An empty kind is skipped without ending its group; the first
// sink error ends the whole tick
func (f *Flusher) tick(ctx context.Context) (retErr error) {
	l := logger.C(ctx).With().Str("mod", "livesync").Logger()
	start := time.Now()
	var flushed int

	defer func() {
		took := time.Since(start)
		if f.Met != nil {
			f.Met.ObserveFlushTick(map[bool]string{true: "error", false: "ok"}[retErr != nil], took)
		}
		ev := l.Debug()
		if flushed > 0 || retErr != nil {
			ev = l.Info()
		}
		ev.Int("rows", flushed).Dur("took", took).Err(retErr).Msg("livesync: flush tick")
	}()

	for _, g := range []Group{GroupInsert, GroupUpdate, GroupDelete} {
		budget := f.budget(g)
		for _, q := range f.Reg.kinds(g) {
			if budget <= 0 {
				break
			}
			n, err := q.drain(ctx, budget)
			if err != nil {
				return perr.WithOp(err, "livesync.flush."+q.Name())
			}
			if n == 0 {
				continue
			}
			budget -= n
			flushed += n
			if f.Met != nil {
				f.Met.AddFlushed(q.Name(), n)
			}
		}
	}
	return nil
}

func (f *Flusher) budget(g Group) int {
	switch g {
	case GroupInsert:
		return f.Cfg.InsertBudget
	case GroupUpdate:
		return f.Cfg.UpdateBudget
	case GroupDelete:
		return f.Cfg.DeleteBudget
	}
	return 0
}
