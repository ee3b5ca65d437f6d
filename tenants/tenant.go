package tenants

import "time"

// Tenant is an isolated token namespace. Clients, refresh tokens and the
// refresh token lifetime are all scoped to a tenant.
type Tenant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Issuer string `json:"issuer"` // Issuer used for JWT access tokens (e.g., "https://acme.auth.example.com")

	// RefreshTokenExpiry overrides the global refresh token TTL when positive.
	RefreshTokenExpiry time.Duration `json:"refresh_token_expiry,omitempty"`
}

// RefreshTTL returns the tenant override, or fallback when the tenant has none.
func (t *Tenant) RefreshTTL(fallback time.Duration) time.Duration {
	if t == nil || t.RefreshTokenExpiry <= 0 {
		return fallback
	}
	return t.RefreshTokenExpiry
}
