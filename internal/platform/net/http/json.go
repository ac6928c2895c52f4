package http

import (
	"net/http"

	"chatmirror/internal/platform/net/http/bind"
)

// JSONHandler binds the request body into T, validates it, and adapts a
// pure handler to a platform Handler
func JSONHandler[T any](fn func(*http.Request, T) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			return Error(err)
		}
		out, err := fn(r, in)
		if err != nil {
			return Error(err)
		}
		return OK(out)
	})
}

