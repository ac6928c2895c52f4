// Package module wires the ops surface into the API using modkit
package module

import (
	"net/http"

	modkit "chatmirror/internal/modkit"
	"chatmirror/internal/modkit/httpkit"

	ophttp "chatmirror/internal/services/api/ops/http"
	bfdom "chatmirror/internal/services/backfill/domain"
	catdom "chatmirror/internal/services/catalog/domain"
	lsdom "chatmirror/internal/services/livesync/domain"
)

// In declares the injected service ports the ops handlers drive. All of
// them are required; the surface is useless with holes in it
type In struct {
	Trigger  bfdom.TriggerPort
	Windows  bfdom.StatusPort
	Catalog  catdom.StatusPort
	Dispatch lsdom.DispatchPort
	Flush    lsdom.FlushPort
	Queues   lsdom.StatusPort
}

// Module implements the ops API module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)
}

// New constructs the ops module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("ops"),
		modkit.WithPrefix("/ops"),
	}, opts...)...)

	in, ok := b.Ports.(In)
	if !ok {
		panic("ops module requires injected ports (backfill, catalog, livesync)")
	}
	if in.Trigger == nil || in.Windows == nil {
		panic("ops module requires the backfill trigger and status ports")
	}
	if in.Catalog == nil {
		panic("ops module requires the catalog status port")
	}
	if in.Dispatch == nil || in.Flush == nil || in.Queues == nil {
		panic("ops module requires the livesync ports")
	}

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		ophttp.Register(r, ophttp.Ports{
			Trigger:  in.Trigger,
			Windows:  in.Windows,
			Catalog:  in.Catalog,
			Dispatch: in.Dispatch,
			Flush:    in.Flush,
			Queues:   in.Queues,
		})
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
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

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return m.prefix }

// Ports returns nothing; ops only consumes other modules' ports
func (m *Module) Ports() any { return nil }
