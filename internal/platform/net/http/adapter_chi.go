package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// chiRouter adapts the top level *chi.Mux to Router
type chiRouter struct{ m *chi.Mux }

// chiScope adapts the chi.Router handed out by Group and Route
type chiScope struct{ r chi.Router }

// toStd converts a platform Handler to a stdlib HandlerFunc
func toStd(h Handler) http.HandlerFunc { return http.HandlerFunc(h) }

// AdaptChi wraps a *chi.Mux in the Router facade
func AdaptChi(m *chi.Mux) Router { return chiRouter{m: m} }

func (c chiRouter) Get(p string, h Handler)     { c.m.Method(http.MethodGet, p, toStd(h)) }
func (c chiRouter) Post(p string, h Handler)    { c.m.Method(http.MethodPost, p, toStd(h)) }
func (c chiRouter) Put(p string, h Handler)     { c.m.Method(http.MethodPut, p, toStd(h)) }
func (c chiRouter) Patch(p string, h Handler)   { c.m.Method(http.MethodPatch, p, toStd(h)) }
func (c chiRouter) Delete(p string, h Handler)  { c.m.Method(http.MethodDelete, p, toStd(h)) }
func (c chiRouter) Head(p string, h Handler)    { c.m.Method(http.MethodHead, p, toStd(h)) }
func (c chiRouter) Options(p string, h Handler) { c.m.Method(http.MethodOptions, p, toStd(h)) }

func (c chiRouter) Handle(p string, h http.Handler)           { c.m.Handle(p, h) }
func (c chiRouter) Use(mw ...func(http.Handler) http.Handler) { c.m.Use(mw...) }

func (c chiRouter) Group(fn func(Router)) {
	c.m.Group(func(sub chi.Router) { fn(chiScope{r: sub}) })
}

func (c chiRouter) Route(pattern string, fn func(Router)) {
	c.m.Route(pattern, func(sub chi.Router) { fn(chiScope{r: sub}) })
}

func (c chiRouter) Mux() http.Handler { return c.m }

func (c chiScope) Get(p string, h Handler)     { c.r.Method(http.MethodGet, p, toStd(h)) }
func (c chiScope) Post(p string, h Handler)    { c.r.Method(http.MethodPost, p, toStd(h)) }
func (c chiScope) Put(p string, h Handler)     { c.r.Method(http.MethodPut, p, toStd(h)) }
func (c chiScope) Patch(p string, h Handler)   { c.r.Method(http.MethodPatch, p, toStd(h)) }
func (c chiScope) Delete(p string, h Handler)  { c.r.Method(http.MethodDelete, p, toStd(h)) }
func (c chiScope) Head(p string, h Handler)    { c.r.Method(http.MethodHead, p, toStd(h)) }
func (c chiScope) Options(p string, h Handler) { c.r.Method(http.MethodOptions, p, toStd(h)) }

func (c chiScope) Handle(p string, h http.Handler)           { c.r.Handle(p, h) }
func (c chiScope) Use(mw ...func(http.Handler) http.Handler) { c.r.Use(mw...) }

func (c chiScope) Group(fn func(Router)) {
	c.r.Group(func(sub chi.Router) { fn(chiScope{r: sub}) })
}

func (c chiScope) Route(pattern string, fn func(Router)) {
	c.r.Route(pattern, func(sub chi.Router) { fn(chiScope{r: sub}) })
}

// chi.Router implements http.Handler, so scoped routers can be mounted too
func (c chiScope) Mux() http.Handler { return c.r }
