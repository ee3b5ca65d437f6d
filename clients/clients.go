package clients

import (
	"slices"
	"strings"

	apperrors "github.com/jrsteele09/go-token-server/internal/errors"
)

type ClientType string

const (
	ClientTypeConfidential ClientType = "confidential" // Can keep secrets (server-side apps)
	ClientTypePublic       ClientType = "public"       // Cannot keep secrets (SPAs, mobile apps)
)

type Client struct {
	ID           string     `json:"id"`
	Type         ClientType `json:"type"` // public or confidential
	Description  string     `json:"description"`
	Secret       string     `json:"secret"`
	RedirectURIs []string   `json:"redirectURIs"`
	TenantID     string     `json:"tenantId"`
	Scopes       []string   `json:"scopes"`     // Allowed scopes for this client
	GrantTypes   []string   `json:"grantTypes"` // Allowed grant types, empty allows all enabled grants
}

// IsPublic returns true if the client is a public client
func (c *Client) IsPublic() bool {
	return c.Type == ClientTypePublic
}

// HasScope checks if the client has permission for a specific scope
func (c *Client) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// AllowsGrant reports whether the client may use grantType.
func (c *Client) AllowsGrant(grantType string) bool {
	return len(c.GrantTypes) == 0 || slices.Contains(c.GrantTypes, grantType)
}

// ValidateScopes checks if all requested scopes are allowed for this client
func (c *Client) ValidateScopes(requestedScopes string) error {
	for _, scope := range strings.Fields(requestedScopes) {
		if !c.HasScope(scope) {
			return apperrors.ErrInvalidScope
		}
	}
	return nil
}

// GetID, GetSecret, GetDomain, IsPublic and GetUserID satisfy oauth2.ClientInfo.
func (c *Client) GetID() string     { return c.ID }
func (c *Client) GetSecret() string { return c.Secret }
func (c *Client) GetUserID() string { return "" }

func (c *Client) GetDomain() string {
	if len(c.RedirectURIs) == 0 {
		return ""
	}
	return c.RedirectURIs[0]
}
