// Package module provides the archive mirror module implementation
package module

import (
	"chatmirror/internal/modkit"
	"chatmirror/internal/modkit/httpkit"

	"chatmirror/internal/services/archive/repo"
	"chatmirror/internal/services/archive/service"
	bfdom "chatmirror/internal/services/backfill/domain"
)

// Ports exposed by the archive module. Factory is nil when the mirror
// is disabled or ClickHouse is not configured; callers register it as
// an extra backfill collector only when present
type Ports struct {
	Factory bfdom.CollectorFactory
}

// Module implements the archive module (headless; no routes)
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the archive module. The mirror is best-effort
// infrastructure: absent ClickHouse it degrades to a no-op rather than
// failing startup
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	modkit.Build(append([]modkit.Option{
		modkit.WithName("archive"),
	}, opts...)...)

	cfg := FromConfig(deps.Cfg)

	m := &Module{deps: deps}
	switch {
	case !cfg.Enabled:
		deps.Log.Info().Msg("archive mirror disabled by config")
	case deps.CH == nil:
		deps.Log.Warn().Msg("archive mirror enabled but clickhouse is not configured; skipping")
	default:
		st := repo.NewCH(deps.CH)
		m.ports.Factory = service.NewFactory(st, cfg.ChunkSize)
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "archive" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
