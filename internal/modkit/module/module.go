// Package module defines the minimal contract for a modkit module
package module

import (
	phttp "chatmirror/internal/platform/net/http"
)

// Module is the contract modkit needs from a service module.
// A sibling of modkit.Module so modules exporting their own port types
// avoid import knots.
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
