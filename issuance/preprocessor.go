package issuance

import (
	"context"
	"net/http"
	"time"

	apperrors "github.com/jrsteele09/go-token-server/internal/errors"
	"github.com/jrsteele09/go-token-server/oauthmodel"
	"github.com/jrsteele09/go-token-server/token"
	"github.com/jrsteele09/go-token-server/token/refresh"
)

// TenantTTLFunc returns a tenant's refresh token TTL override, or 0 for none.
type TenantTTLFunc func(tenantID string) time.Duration

// Preprocessor rejects refresh grants for stored tokens that have expired,
// before the grant delegate ever sees them.
type Preprocessor struct {
	repo      refresh.Repo
	policy    refresh.Policy
	tenantTTL TenantTTLFunc
}

type PreprocessorOption func(*Preprocessor)

// WithTenantTTL lets a tenant's positive TTL replace the policy TTL.
func WithTenantTTL(f TenantTTLFunc) PreprocessorOption {
	return func(p *Preprocessor) {
		p.tenantTTL = f
	}
}

func NewPreprocessor(repo refresh.Repo, policy refresh.Policy, opts ...PreprocessorOption) *Preprocessor {
	p := &Preprocessor{
		repo:   repo,
		policy: policy,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Check returns a 403 response when req is a refresh grant for an expired
// stored token. It returns nil when the request should carry on, including
// when the token is unknown. Check never modifies req.
func (p *Preprocessor) Check(ctx context.Context, req GrantRequest) (*TokenResponse, error) {
	if req.GrantType() != oauthmodel.RefreshTokenGrant {
		return nil, nil
	}
	raw, ok := req.Param(oauthmodel.ParamRefreshToken)
	if !ok {
		return nil, nil
	}

	hash, err := token.Hash(raw)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Preprocessor Check] hash refresh token")
	}
	stored, err := p.repo.GetByHash(ctx, hash)
	if apperrors.Is(err, refresh.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Preprocessor Check] lookup refresh token")
	}

	if !p.policyFor(stored.TenantID).IsExpired(stored.CreatedAt) {
		return nil, nil
	}
	resp := errorResponse(req.URI, ExpiredRefreshTokenMessage, http.StatusForbidden)
	return &resp, nil
}

func (p *Preprocessor) policyFor(tenantID string) refresh.Policy {
	if p.tenantTTL == nil {
		return p.policy
	}
	if ttl := p.tenantTTL(tenantID); ttl > 0 {
		return p.policy.WithTTL(ttl)
	}
	return p.policy
}
