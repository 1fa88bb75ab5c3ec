package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// permissionCheckTimeout bounds the upstream permission lookup. A slow or
// unreachable permission service must never hold up the request longer than
// this; the caller falls back to "not permitted".
const permissionCheckTimeout = 5 * time.Second

// PermissionChecker answers whether a user may perform a named operation.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userEmail, permission string) bool
}

// PermissionClient checks permissions against the upstream registers backend.
type PermissionClient struct {
	baseURL string
	client  *http.Client
}

// NewPermissionClient creates a client against the given upstream base URL.
func NewPermissionClient(baseURL string) *PermissionClient {
	return &PermissionClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: permissionCheckTimeout},
	}
}

// HasPermission asks the upstream whether the user holds the permission.
// Any transport error, non-200 status, or timeout degrades to false.
func (p *PermissionClient) HasPermission(ctx context.Context, userEmail, permission string) bool {
	ctx, cancel := context.WithTimeout(ctx, permissionCheckTimeout)
	defer cancel()

	u := fmt.Sprintf("%s/api/permissions?email=%s&permission=%s",
		p.baseURL, url.QueryEscape(userEmail), url.QueryEscape(permission))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var body struct {
		Allowed bool `json:"allowed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false
	}
	return body.Allowed
}
