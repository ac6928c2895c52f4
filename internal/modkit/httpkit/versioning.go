package httpkit

import (
	"net/http"
	"strings"
)

// MountVersion routes a versioned API surface under /{version}, applies
// any per scope middleware, then invokes mount to register routes on the
// scoped router
//
// example:
//
//	httpkit.MountVersion(r, "v1", httpkit.CommonStack(), func(v1 httpkit.Router) {
//	  ops.MountRoutes(v1)
//	})
func MountVersion(r Router, version string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	ver := strings.TrimPrefix(version, "/")
	MountUnder(r, "/"+ver, mw, mount)
}

// MountV1 is a convenience for MountVersion with version v1
func MountV1(r Router, mw []func(http.Handler) http.Handler, mount func(Router)) {
	MountVersion(r, "v1", mw, mount)
}
