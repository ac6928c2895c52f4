package net

import (
	"net/http"

	perr "chatmirror/internal/platform/errors"
)

// HTTPStatus maps an error to the status the ops surface should return.
// nil means 200
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return perr.HTTPStatus(err)
}
