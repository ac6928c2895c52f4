package net

import (
	"net/http"

	perr "chatmirror/internal/platform/errors"
)

// Wire is the envelope every transport writes, success or failure
type Wire struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

func success(status int, data any, reqID string) (int, Wire) {
	return status, Wire{
		StatusCode: status,
		Status:     http.StatusText(status),
		RequestID:  reqID,
		Data:       data,
	}
}

// OK builds a 200 envelope
func OK(data any, reqID string) (int, Wire) {
	return success(http.StatusOK, data, reqID)
}

// Created builds a 201 envelope
func Created(data any, reqID string) (int, Wire) {
	return success(http.StatusCreated, data, reqID)
}

// Accepted builds a 202 envelope for work kicked off in the background
func Accepted(data any, reqID string) (int, Wire) {
	return success(http.StatusAccepted, data, reqID)
}

// NoContent builds a 204 envelope
func NoContent(reqID string) (int, Wire) {
	return success(http.StatusNoContent, nil, reqID)
}

// Error builds an error envelope. A nil error degrades to OK
func Error(err error, reqID string) (int, Wire) {
	if err == nil {
		return OK(nil, reqID)
	}
	status := perr.HTTPStatus(err)
	w := perr.WireFrom(err)
	return status, Wire{
		StatusCode: status,
		Status:     http.StatusText(status),
		Code:       w.Code,
		Error:      w.Message,
		RequestID:  reqID,
	}
}
