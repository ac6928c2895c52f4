package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	perr "chatmirror/internal/platform/errors"
)

const memberPageSize = 1000

// getJSON fetches path and decodes the body into T
func getJSON[T any](ctx context.Context, c *Client, endpoint, path string) (T, error) {
	var out T
	resp, err := c.get(ctx, endpoint, path)
	if err != nil {
		return out, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("path", path).Msg("source close body failed")
		}
	}()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return out, perr.Wrapf(err, perr.ErrorCodeUnavailable, "source read body failed")
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, perr.Wrapf(err, perr.ErrorCodeJSON, "source decode %s failed", endpoint)
	}
	return out, nil
}

// Tenant fetches one tenant document by snowflake id
func (c *Client) Tenant(ctx context.Context, tenantID int64) (Tenant, error) {
	path := fmt.Sprintf("/v1/tenants/%d", tenantID)
	return getJSON[Tenant](ctx, c, "tenant", path)
}

// Categories fetches all channel categories of a tenant
func (c *Client) Categories(ctx context.Context, tenantID int64) ([]Category, error) {
	path := fmt.Sprintf("/v1/tenants/%d/categories", tenantID)
	return getJSON[[]Category](ctx, c, "categories", path)
}

// Channels fetches all text channels of a tenant
func (c *Client) Channels(ctx context.Context, tenantID int64) ([]Channel, error) {
	path := fmt.Sprintf("/v1/tenants/%d/channels", tenantID)
	return getJSON[[]Channel](ctx, c, "channels", path)
}

// Roles fetches all roles of a tenant
func (c *Client) Roles(ctx context.Context, tenantID int64) ([]Role, error) {
	path := fmt.Sprintf("/v1/tenants/%d/roles", tenantID)
	return getJSON[[]Role](ctx, c, "roles", path)
}

// Members fetches the full member list of a tenant, paging by last seen id
// until a short page signals the end
func (c *Client) Members(ctx context.Context, tenantID int64) ([]Member, error) {
	var all []Member
	after := int64(0)
	for {
		path := fmt.Sprintf("/v1/tenants/%d/members?limit=%d&after=%s",
			tenantID, memberPageSize, strconv.FormatInt(after, 10))
		page, err := getJSON[[]Member](ctx, c, "members", path)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < memberPageSize {
			return all, nil
		}
		after = page[len(page)-1].ID
	}
}
