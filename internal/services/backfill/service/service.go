package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adhocore/gronx"

	perr "chatmirror/internal/platform/errors"
	"chatmirror/internal/platform/logger"
	"chatmirror/internal/services/backfill/domain"
	"chatmirror/internal/services/backfill/guardrails"
)

// Service is the backup trigger surface exposed to the ops API, the event
// dispatcher and the cron loop
type Service interface {
	domain.BackupPort
	domain.StatusPort
	domain.TriggerPort

	// Loop blocks, running a full backup of every known tenant on the
	// configured cron schedule until ctx is canceled
	Loop(ctx context.Context) error
}

// Config carries the orchestrator knobs
type Config struct {
	// Workers bounds concurrent tenants in a backup-all pass
	Workers int

	// Cron is the recurring full-backup schedule
	Cron string
}

// Svc implements Service. A full backup pass per tenant is: structural
// catalog resync first, then the window state machine
type Svc struct {
	Sched       *Scheduler
	Resync      domain.ResyncPort
	Tenants     domain.TenantsPort
	Checkpoints domain.CheckpointPort
	Leases      *guardrails.Leases
	Cfg         Config
}

// New constructs the orchestrator. Nil deps are programmer error
func New(
	sched *Scheduler,
	resync domain.ResyncPort,
	tenants domain.TenantsPort,
	checkpoints domain.CheckpointPort,
	leases *guardrails.Leases,
	cfg Config,
) *Svc {
	if sched == nil {
		panic("backfill.New: nil scheduler")
	}
	if resync == nil {
		panic("backfill.New: nil resync")
	}
	if tenants == nil {
		panic("backfill.New: nil tenants")
	}
	if checkpoints == nil {
		panic("backfill.New: nil checkpoints")
	}
	if leases == nil {
		leases = guardrails.NewLeases()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Svc{
		Sched:       sched,
		Resync:      resync,
		Tenants:     tenants,
		Checkpoints: checkpoints,
		Leases:      leases,
		Cfg:         cfg,
	}
}

// allTenantsLease guards full-fleet passes; tenant ids are nonzero
// snowflakes so the zero key never collides
const allTenantsLease int64 = 0

// BackupTenant runs one full backup pass for one tenant. A pass already in
// flight for the same tenant yields Conflict and does nothing
func (s *Svc) BackupTenant(ctx context.Context, tenantID int64) error {
	release, err := s.Leases.Acquire(tenantID)
	if err != nil {
		return perr.Conflictf("backfill: backup already running for tenant %d", tenantID)
	}
	defer release()

	return s.runPass(ctx, tenantID)
}

// StartBackup claims the tenant lease, then runs the pass detached from the
// caller's request context. The Conflict answer is synchronous; the work
// is not
func (s *Svc) StartBackup(ctx context.Context, tenantID int64) error {
	release, err := s.Leases.Acquire(tenantID)
	if err != nil {
		return perr.Conflictf("backfill: backup already running for tenant %d", tenantID)
	}

	run := context.WithoutCancel(ctx)
	go func() {
		defer release()
		if err := s.runPass(run, tenantID); err != nil {
			logger.C(run).Error().Int64("tenant_id", tenantID).Err(err).Msg("backfill: triggered backup failed")
		}
	}()
	return nil
}

// StartBackupAll is StartBackup for the whole fleet, guarded by its own
// lease so repeated triggers answer Conflict instead of stacking passes
func (s *Svc) StartBackupAll(ctx context.Context) error {
	release, err := s.Leases.Acquire(allTenantsLease)
	if err != nil {
		return perr.Conflictf("backfill: fleet backup already running")
	}

	run := context.WithoutCancel(ctx)
	go func() {
		defer release()
		if err := s.BackupAll(run); err != nil {
			logger.C(run).Error().Err(err).Msg("backfill: triggered fleet backup failed")
		}
	}()
	return nil
}

// runPass is the lease-held body shared by the synchronous and detached
// entrypoints: structural resync, then the window state machine
func (s *Svc) runPass(ctx context.Context, tenantID int64) (retErr error) {
	ctx = logger.WithTenant(ctx, strconv.FormatInt(tenantID, 10))
	l := logger.C(ctx).With().Str("mod", "backfill").Int64("tenant_id", tenantID).Logger()
	start := time.Now()

	defer func() {
		l.Info().
			Str("status", map[bool]string{true: "error", false: "ok"}[retErr != nil]).
			Dur("took", time.Since(start)).
			Msg("backfill: backup pass finished")
	}()

	if err := s.Resync.Resync(ctx, tenantID); err != nil {
		return err
	}

	rep, err := s.Sched.Run(ctx, tenantID)
	if err != nil {
		return err
	}
	l.Info().
		Int("retry_passes", rep.RetryPasses).
		Int("retried", rep.Retried).
		Int("advanced", rep.Advanced).
		Msg("backfill: scheduler caught up")
	return nil
}

// BackupAll runs a full backup pass for every known tenant behind a bounded
// worker pool. A tenant whose lease is held is skipped cleanly; other
// failures are counted and reported once at the end
func (s *Svc) BackupAll(ctx context.Context) error {
	tenants, err := s.Tenants.Tenants(ctx)
	if err != nil {
		return err
	}
	if len(tenants) == 0 {
		return nil
	}

	w := min(max(s.Cfg.Workers, 1), len(tenants))
	feed := make(chan int64)
	var fails int64
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for id := range feed {
			err := s.BackupTenant(ctx, id)
			switch {
			case err == nil:
			case perr.IsCode(err, perr.ErrorCodeConflict):
				logger.C(ctx).Debug().Int64("tenant_id", id).Msg("backfill: pass in flight; clean skip")
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				atomic.AddInt64(&fails, 1)
				return
			default:
				logger.C(ctx).Error().Int64("tenant_id", id).Err(err).Msg("backfill: tenant backup failed")
				atomic.AddInt64(&fails, 1)
			}
		}
	}

	wg.Add(w)
	for range w {
		go worker()
	}

feedLoop:
	for _, t := range tenants {
		select {
		case <-ctx.Done():
			break feedLoop
		case feed <- t.ID:
		}
	}
	close(feed)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	if n := atomic.LoadInt64(&fails); n > 0 {
		return perr.Unavailablef("backfill: %d of %d tenant backups failed", n, len(tenants))
	}
	return nil
}

// Loop implements the recurring schedule. The expression is validated at
// module construction, so NextTickAfter errors here are treated as fatal
func (s *Svc) Loop(ctx context.Context) error {
	l := logger.Get().With().Str("mod", "backfill").Logger()

	for {
		next, err := gronx.NextTickAfter(s.Cfg.Cron, time.Now().UTC(), false)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "backfill: bad cron %q", s.Cfg.Cron)
		}
		l.Info().Time("next", next).Msg("backfill: next scheduled backup")

		if err := sleepCtx(ctx, time.Until(next)); err != nil {
			return err
		}
		if err := s.BackupAll(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			l.Error().Err(err).Msg("backfill: scheduled backup failed")
		}
	}
}

// WindowStatus implements domain.StatusPort. CaughtUp means no unfinished
// windows remain and the newest finished window reaches within one week of
// now
func (s *Svc) WindowStatus(ctx context.Context, tenantID int64) (domain.WindowStatus, error) {
	ws, err := s.Checkpoints.Select(ctx, tenantID)
	if err != nil {
		return domain.WindowStatus{}, err
	}

	st := domain.WindowStatus{TenantID: tenantID}
	var maxTo time.Time
	for _, w := range ws {
		if !w.Finished() {
			st.Unfinished++
			continue
		}
		st.Finished++
		if st.LastFinishedAt == nil || w.FinishedAt.After(*st.LastFinishedAt) {
			at := *w.FinishedAt
			st.LastFinishedAt = &at
		}
		if w.To.After(maxTo) {
			maxTo = w.To
		}
	}
	st.CaughtUp = st.Unfinished == 0 && st.Finished > 0 && !maxTo.Add(domain.Week).Before(time.Now())
	return st, nil
}
