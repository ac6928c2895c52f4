package service

import (
	"context"
	"time"

	perr "chatmirror/internal/platform/errors"
	"chatmirror/internal/platform/logger"
	"chatmirror/internal/platform/metrics"
	"chatmirror/internal/services/backfill/domain"
)

// SchedulerConfig carries the per-tenant state machine knobs
type SchedulerConfig struct {
	// RetryDelay sleeps between failed-window passes
	RetryDelay time.Duration

	// WindowDelay sleeps between consecutive new windows
	WindowDelay time.Duration

	// MaxRetryPasses bounds the retry loop; windows still unfinished after
	// that many passes wait for the next scheduled run
	MaxRetryPasses int
}

// Scheduler runs the per-tenant backfill state machine to completion:
// retry every unfinished window first, then open and process new windows
// until the tenant is caught up to within one week of now. Per-tenant runs
// are sequential; distinct tenants may run concurrently behind the lease
type Scheduler struct {
	Checkpoints domain.CheckpointPort
	Tenants     domain.TenantsPort
	Processor   domain.ProcessorPort
	Cfg         SchedulerConfig
	Met         *metrics.Metrics

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewScheduler constructs a scheduler. Nil deps are programmer error
func NewScheduler(
	checkpoints domain.CheckpointPort,
	tenants domain.TenantsPort,
	processor domain.ProcessorPort,
	cfg SchedulerConfig,
	met *metrics.Metrics,
) *Scheduler {
	if checkpoints == nil {
		panic("backfill.NewScheduler: nil checkpoints")
	}
	if tenants == nil {
		panic("backfill.NewScheduler: nil tenants")
	}
	if processor == nil {
		panic("backfill.NewScheduler: nil processor")
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 3 * time.Second
	}
	if cfg.WindowDelay <= 0 {
		cfg.WindowDelay = 2 * time.Second
	}
	if cfg.MaxRetryPasses <= 0 {
		cfg.MaxRetryPasses = 10
	}
	return &Scheduler{
		Checkpoints: checkpoints,
		Tenants:     tenants,
		Processor:   processor,
		Cfg:         cfg,
		Met:         met,
		now:         time.Now,
		sleep:       sleepCtx,
	}
}

// Run executes one full invocation for one tenant. Failed-window retry
// always precedes new-window advancement
func (s *Scheduler) Run(ctx context.Context, tenantID int64) (domain.RunReport, error) {
	var rep domain.RunReport
	if err := s.retryFailed(ctx, tenantID, &rep); err != nil {
		return rep, err
	}
	if err := s.advance(ctx, tenantID, &rep); err != nil {
		return rep, err
	}
	return rep, nil
}

// retryFailed re-runs unfinished windows until none remain. Every pass
// re-reads the failed set from storage, so a crash mid-retry resumes without
// re-deriving window bounds. Retried windows always record is_first=false
func (s *Scheduler) retryFailed(ctx context.Context, tenantID int64, rep *domain.RunReport) error {
	l := logger.C(ctx).With().Str("mod", "backfill").Int64("tenant_id", tenantID).Logger()

	var lastErr error
	for pass := 0; ; pass++ {
		ws, err := s.Checkpoints.Select(ctx, tenantID)
		if err != nil {
			return err
		}

		var unfinished []domain.SyncWindow
		for _, w := range ws {
			if !w.Finished() {
				unfinished = append(unfinished, w)
			}
		}
		if len(unfinished) == 0 {
			return nil
		}
		if pass >= s.Cfg.MaxRetryPasses {
			return perr.Wrapf(lastErr, perr.ErrorCodeUnavailable,
				"backfill: %d windows still unfinished after %d retry passes", len(unfinished), pass)
		}

		rep.RetryPasses++
		for _, w := range unfinished {
			start := time.Now()
			err := s.Processor.Process(ctx, w, false)
			s.observe("retry", err, time.Since(start))
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				// leave it unfinished; the next pass picks it up
				l.Warn().Time("from", w.From).Time("to", w.To).Err(err).
					Msg("backfill: window retry failed")
				lastErr = err
				continue
			}
			rep.Retried++
		}

		if err := s.sleep(ctx, s.Cfg.RetryDelay); err != nil {
			return err
		}
	}
}

// advance opens and processes new windows until the tenant is caught up
func (s *Scheduler) advance(ctx context.Context, tenantID int64, rep *domain.RunReport) error {
	for {
		w, isFirst, err := s.nextWindow(ctx, tenantID)
		if err != nil {
			return err
		}
		if err := s.Checkpoints.StartWindow(ctx, tenantID, w.From, w.To); err != nil {
			return err
		}

		start := time.Now()
		err = s.Processor.Process(ctx, w, isFirst)
		s.observe("new", err, time.Since(start))
		if err != nil {
			// the window stays unfinished and is retried on the next run
			return err
		}
		rep.Advanced++

		if !s.stillBehind(w.To) {
			return nil
		}
		if err := s.sleep(ctx, s.Cfg.WindowDelay); err != nil {
			return err
		}
	}
}

// nextWindow derives the next week slice from the most recently finished
// window, falling back to the tenant's creation time for a fresh tenant
func (s *Scheduler) nextWindow(ctx context.Context, tenantID int64) (domain.SyncWindow, bool, error) {
	ws, err := s.Checkpoints.Select(ctx, tenantID)
	if err != nil {
		return domain.SyncWindow{}, false, err
	}

	var last *domain.SyncWindow
	for i := range ws {
		w := &ws[i]
		if !w.Finished() {
			continue
		}
		if last == nil || w.FinishedAt.After(*last.FinishedAt) ||
			(w.FinishedAt.Equal(*last.FinishedAt) && w.To.After(last.To)) {
			last = w
		}
	}

	var from time.Time
	isFirst := false
	if last == nil {
		t, err := s.Tenants.Tenant(ctx, tenantID)
		if err != nil {
			return domain.SyncWindow{}, false, err
		}
		from = t.CreatedAt
		isFirst = true
	} else {
		from = last.To
	}
	to := from.Add(domain.Week)

	// clock skew or a tenant created moments ago: fall back to the trailing
	// week. The clamp fires on a future from only; a to past now is harmless
	// (the stream just ends early) and moving it would break tiling
	if now := s.now(); from.After(now) {
		from = now.Add(-domain.Week)
		to = now
	}

	return domain.SyncWindow{TenantID: tenantID, From: from, To: to}, isFirst, nil
}

// stillBehind reports whether another whole week fits before now
func (s *Scheduler) stillBehind(to time.Time) bool {
	return to.Add(domain.Week).Before(s.now())
}

func (s *Scheduler) observe(state string, err error, took time.Duration) {
	if s.Met == nil {
		return
	}
	outcome := map[bool]string{true: "error", false: "ok"}[err != nil]
	s.Met.ObserveWindow(state, outcome, took)
}

// sleepCtx sleeps for d or returns early with the context error
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
