package refresh

import (
	"context"
	"time"

	apperrors "github.com/jrsteele09/go-token-server/internal/errors"
)

// ErrNotFound is returned by GetByHash when no record has the digest.
var ErrNotFound = apperrors.ErrNotFound

// Token represents the server-side record of a refresh token.
// The client only ever receives the raw value; Token and AccessToken hold
// digests, and every lookup goes through the digest.
type Token struct {
	Token       string    // Digest of the refresh token (unique key)
	AccessToken string    // Digest of the access token issued alongside
	ClientID    string    // Client the token was issued to
	UserID      string    // Resource owner, empty for client-only grants
	TenantID    string    // Tenant context, selects the tenant TTL override
	Scope       string    // Scope granted with the original access token
	CreatedAt   time.Time // Start of the expiry window
}

// Repo manages server-side storage of refresh token records keyed by digest.
type Repo interface {
	Upsert(ctx context.Context, t *Token) error
	Delete(ctx context.Context, hash string) error
	GetByHash(ctx context.Context, hash string) (*Token, error)
}
