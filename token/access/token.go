package access

import (
	"context"
	"time"
)

// Token is the stored record of an issued access token. Token holds the
// digest of the bearer value, never the value itself.
type Token struct {
	ID        string
	Token     string
	ClientID  string
	UserID    string
	TenantID  string
	Scope     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the access token is past its expiry at now.
func (t *Token) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

// Repo stores access token records keyed by digest.
type Repo interface {
	Upsert(ctx context.Context, t *Token) error
	Delete(ctx context.Context, hash string) error
	GetByHash(ctx context.Context, hash string) (*Token, error)
}
