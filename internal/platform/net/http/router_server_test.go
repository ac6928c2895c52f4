package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"chatmirror/internal/platform/config"
	phttp "chatmirror/internal/platform/net/http"
)

func TestNewServer_DefaultsAndMux(t *testing.T) {
	srv := phttp.NewServer(config.New()) // no env, defaults to :4600
	if srv.Addr() == "" {
		t.Fatalf("expected non-empty addr")
	}
	r := srv.Router()
	if r == nil || r.Mux() == nil {
		t.Fatalf("router or mux is nil")
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/healthz", nil)
	r.Mux().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("bad response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestRouter_ReturnStyleThroughMux(t *testing.T) {
	srv := phttp.NewServer(config.New())
	r := srv.Router()

	r.Get("/depth", phttp.Handle(func(_ *http.Request) phttp.Response {
		return phttp.OK(map[string]any{"depth": 12})
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/depth", nil)
	r.Mux().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	m, ok := env.Data.(map[string]any)
	if !ok || m["depth"] != float64(12) {
		t.Fatalf("expected data map with depth=12, got %#v", env.Data)
	}
}
