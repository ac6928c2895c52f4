package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	phttp "chatmirror/internal/platform/net/http"
	"chatmirror/internal/platform/net/middleware"
)

// CommonStack returns the baseline per module middleware slice.
// Compose with InternalKey for the protected ops surface in main.
func CommonStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// correlation
		middleware.RequestID(),
		middleware.RealIP(),

		// safety
		middleware.RecoverJSON,

		// cache / freshness
		middleware.NoCache(),

		// observability
		middleware.AccessLog(middleware.AccessLogOptions{Slow: time.Second}),

		// cross-origin (tweak in main if a dashboard needs it)
		middleware.CORS(middleware.CORSOptions{}),
		middleware.Compress(flate.BestSpeed),
		middleware.StripSlashes(),
		middleware.Timeout(30 * time.Second),
	}
}

// InternalKey guards a route group with the shared operator key and the
// platform JSON writer. An empty key disables the check for dev runs.
func InternalKey(key string) func(http.Handler) http.Handler {
	return middleware.InternalKey(key, phttp.JSON)
}
