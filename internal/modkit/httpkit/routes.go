package httpkit

import "net/http"

// MountUnder routes a module under prefix and applies its middleware
// before the mount closure registers endpoints
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route(prefix, func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		mount(sub)
	})
}
