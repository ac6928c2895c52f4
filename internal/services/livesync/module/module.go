// Package module wires the livesync service into the registry
package module

import (
	"chatmirror/internal/modkit"
	"chatmirror/internal/modkit/httpkit"
	catalogdom "chatmirror/internal/services/catalog/domain"
	"chatmirror/internal/services/livesync/domain"
	"chatmirror/internal/services/livesync/service"
)

// In carries the injected cross-module dependencies
type In struct {
	Store  catalogdom.StoragePort
	Backup domain.BackupTrigger
}

// Ports exposed by the livesync module
type Ports struct {
	Dispatch domain.DispatchPort
	Flush    domain.FlushPort
	Status   domain.StatusPort
	Runner   service.Service
}

// Module implements the livesync module (headless; the ops module mounts
// the event and flush routes)
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the livesync module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("livesync"),
	}, opts...)...)

	in, ok := b.Ports.(In)
	if !ok || in.Store == nil {
		panic("livesync module requires the catalog store")
	}

	cfg := FromConfig(deps.Cfg)

	reg := service.NewRegistry(deps.Met)
	queues := service.NewQueues(reg, in.Store)
	disp := service.NewDispatcher(queues, in.Backup)
	fl := service.NewFlusher(reg, service.FlushConfig{
		Interval:     cfg.Interval,
		InsertBudget: cfg.InsertBudget,
		UpdateBudget: cfg.UpdateBudget,
		DeleteBudget: cfg.DeleteBudget,
	}, deps.Met)

	svc := service.New(reg, disp, fl)

	m := &Module{deps: deps}
	m.ports = Ports{
		Dispatch: svc,
		Flush:    svc,
		Status:   svc,
		Runner:   svc,
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "livesync" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
