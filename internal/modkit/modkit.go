package modkit

import (
	phttp "chatmirror/internal/platform/net/http"
)

// Module is the common surface for service modules that can mount ops
// routes and expose ports. Kept tiny so modules stay decoupled.
type Module interface {
	// MountRoutes attaches the module's HTTP routes to the router seam
	MountRoutes(r phttp.Router)

	// Ports returns a module specific port set for cross wiring
	Ports() any

	// Name returns the module name
	Name() string
}

// Builder constructs a Module from shared deps and options.
// Modules expose New(deps Deps, opts ...Option) and delegate to this shape.
type Builder func(Deps, ...Option) Module
