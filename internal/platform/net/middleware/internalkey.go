package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	perr "chatmirror/internal/platform/errors"
	pnet "chatmirror/internal/platform/net"
)

// InternalKey guards the ops surface with a shared key. Callers present it
// via X-Internal-Key or an Authorization bearer token. An empty configured
// key disables the guard, which is how dev environments run.
// write is injected so this stays transport agnostic
func InternalKey(key string, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if subtle.ConstantTimeCompare([]byte(presentedKey(r)), []byte(key)) != 1 {
				status, body := pnet.Error(
					perr.Unauthorizedf("missing or invalid internal key"),
					pnet.RequestID(r.Context()),
				)
				write(w, status, body)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// presentedKey pulls the key from X-Internal-Key, falling back to a bearer token
func presentedKey(r *http.Request) string {
	if v := r.Header.Get("X-Internal-Key"); v != "" {
		return v
	}
	if rest, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return rest
	}
	return ""
}
