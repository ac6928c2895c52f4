// Package module wires the probe endpoints into the API using a tiny module
package module

import (
	"net/http"
	"time"

	modkit "chatmirror/internal/modkit"
	"chatmirror/internal/modkit/httpkit"
	str "chatmirror/internal/platform/strings"

	metahttp "chatmirror/internal/services/api/meta/http"
)

// Module implements the modkit.Module interface. Unlike the other API
// modules it mounts at the router root so orchestrators reach the probes
// without a version prefix
type Module struct {
	deps modkit.Deps
	name string
	mws  []func(http.Handler) http.Handler

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	startedAt time.Time
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
	}, opts...)...)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		startedAt: time.Now(),
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		metahttp.Register(r, metahttp.Deps{
			ServiceName: "chatmirror-syncd",
			StartedAt:   m.startedAt,
			PG:          deps.PG,
			CH:          deps.CH,
		})
		if external != nil {
			external(r)
		}
	}

	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Group(func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.name, "meta") }

// Prefix implements the modkit.Module interface
func (m *Module) Prefix() string { return "/" }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
