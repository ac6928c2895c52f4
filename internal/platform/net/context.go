// Package net carries request scoped identifiers between middleware and
// handlers without leaking transport types into services
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ctxKey is an unexported key type for context values
type ctxKey string

const keyTenantID ctxKey = "tenant_id"

// WithRequest stamps the request id and tenant id onto ctx.
// Empty values leave the context untouched
func WithRequest(ctx context.Context, reqID, tenantID string) context.Context {
	if reqID != "" {
		// stored under chi's key so chimw.GetReqID keeps working downstream
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	if tenantID != "" {
		ctx = context.WithValue(ctx, keyTenantID, tenantID)
	}
	return ctx
}

// RequestID returns the request id on the context, or ""
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// TenantID returns the tenant id on the context, or ""
func TenantID(ctx context.Context) string {
	if v, ok := ctx.Value(keyTenantID).(string); ok {
		return v
	}
	return ""
}
