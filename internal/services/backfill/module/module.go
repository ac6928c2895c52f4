// Package module provides the backfill module implementation
package module

import (
	"github.com/adhocore/gronx"

	"chatmirror/internal/modkit"
	"chatmirror/internal/modkit/httpkit"

	"chatmirror/internal/services/backfill/domain"
	"chatmirror/internal/services/backfill/guardrails"
	"chatmirror/internal/services/backfill/repo"
	"chatmirror/internal/services/backfill/service"
	catalogdom "chatmirror/internal/services/catalog/domain"
)

// In carries the injected cross-module dependencies: the shared source
// client, the catalog ports, and optional extra collector factories
// (the archive mirror registers one when ClickHouse is enabled)
type In struct {
	History domain.HistoryPort
	Store   catalogdom.StoragePort
	Resync  catalogdom.ResyncPort
	Extra   []domain.CollectorFactory
}

// Ports exposed by the backfill module
type Ports struct {
	Backup  domain.BackupPort
	Trigger domain.TriggerPort
	Status  domain.StatusPort
	Runner  service.Service
}

// Module implements the backfill module (headless; no routes)
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the backfill module, wiring the checkpoint repo, the
// window processor with its collector set, the scheduler and the
// orchestrator from config
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("backfill"),
	}, opts...)...)

	in, ok := b.Ports.(In)
	if !ok {
		panic("backfill module requires injected ports (history, catalog)")
	}
	if in.History == nil {
		panic("backfill module requires a history port")
	}
	if in.Store == nil {
		panic("backfill module requires the catalog store")
	}
	if in.Resync == nil {
		panic("backfill module requires the catalog resync port")
	}

	cfg := FromConfig(deps.Cfg)
	if !gronx.IsValid(cfg.Cron) {
		panic("backfill module: invalid CORE_BACKFILL_CRON expression " + cfg.Cron)
	}

	checkpoints := repo.NewPG().Bind(deps.PG)
	channels := channelsAdapter{store: in.Store}
	tenants := tenantsAdapter{store: in.Store}

	factory := newCollectorFactory(in.Store, cfg.ChunkSize, in.Extra)
	processor := service.NewProcessor(in.History, channels, checkpoints, factory, guardrails.Timeouts{
		Window:  cfg.WindowTimeout,
		Channel: cfg.ChannelTimeout,
		Flush:   cfg.FlushTimeout,
	})

	sched := service.NewScheduler(checkpoints, tenants, processor, service.SchedulerConfig{
		RetryDelay:     cfg.RetryDelay,
		WindowDelay:    cfg.WindowDelay,
		MaxRetryPasses: cfg.MaxRetryPasses,
	}, deps.Met)

	svc := service.New(sched, in.Resync, tenants, checkpoints, guardrails.NewLeases(), service.Config{
		Workers: cfg.Workers,
		Cron:    cfg.Cron,
	})

	m := &Module{deps: deps}
	m.ports = Ports{
		Backup:  svc,
		Trigger: svc,
		Status:  svc,
		Runner:  svc,
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "backfill" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
