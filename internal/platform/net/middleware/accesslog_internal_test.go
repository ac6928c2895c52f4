package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// exercises captureWriter.WriteHeader directly
func TestCaptureWriter_WriteHeader_SetsStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rr, status: http.StatusOK}

	cw.WriteHeader(409)

	if cw.status != 409 {
		t.Fatalf("expected status 409 got %d", cw.status)
	}
	if rr.Code != 409 {
		t.Fatalf("expected recorder code 409 got %d", rr.Code)
	}
}
