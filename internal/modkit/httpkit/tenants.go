package httpkit

import (
	"net/http"
	"strings"

	perrs "chatmirror/internal/platform/errors"
	pnet "chatmirror/internal/platform/net"
)

// Tenant returns the tenant id carried on the request context.
// Handlers that bound a tenant earlier in the chain read it here.
func Tenant(r *http.Request) (string, error) {
	tid := pnet.TenantID(r.Context())
	if tid == "" {
		return "", perrs.InvalidArgf("missing tenant scope")
	}
	return tid, nil
}

// QueryTenant reads and checks the tenant_id query parameter.
// Snowflake ids are decimal strings up to 20 digits.
func QueryTenant(r *http.Request) (string, error) {
	tid := strings.TrimSpace(r.URL.Query().Get("tenant_id"))
	if tid == "" {
		return "", perrs.InvalidArgf("tenant_id query parameter is required")
	}
	if len(tid) > 20 {
		return "", perrs.InvalidArgf("tenant_id must be a numeric snowflake id")
	}
	for _, c := range tid {
		if c < '0' || c > '9' {
			return "", perrs.InvalidArgf("tenant_id must be a numeric snowflake id")
		}
	}
	return tid, nil
}
