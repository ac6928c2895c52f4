// Package module wires the catalog service into the registry
package module

import (
	"chatmirror/internal/modkit"
	"chatmirror/internal/modkit/httpkit"
	"chatmirror/internal/modkit/repokit"
	"chatmirror/internal/services/catalog/domain"
	"chatmirror/internal/services/catalog/repo"
	"chatmirror/internal/services/catalog/service"
)

// In carries the injected adapter; the source client is built once per
// process and shared with backfill so rate-limit state stays coherent
type In struct {
	Source service.Directory
}

// Ports exposed by the catalog module
type Ports struct {
	Resync domain.ResyncPort
	Status domain.StatusPort
	Store  domain.StoragePort
}

// Module implements the catalog service module (headless; no routes)
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the catalog module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("catalog"),
	}, opts...)...)

	in, ok := b.Ports.(In)
	if !ok || in.Source == nil {
		panic("catalog module requires a source directory port")
	}

	cfg := FromConfig(deps.Cfg)

	binder := repo.NewPG()
	svc := service.New(repokit.TxRunner(deps.PG), binder, in.Source, service.Config{
		ChunkSize: cfg.ChunkSize,
	})

	m := &Module{deps: deps}
	m.ports = Ports{
		Resync: svc,
		Status: svc,
		Store:  binder.Bind(deps.PG),
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "catalog" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
