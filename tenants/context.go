package tenants

import "context"

type tenantKey struct{}

// WithTenantID returns a child context carrying the tenant ID.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenantID)
}

// IDFromContext returns the tenant ID stored by WithTenantID, or "".
func IDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(tenantKey{}).(string)
	return id
}
