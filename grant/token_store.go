package grant

import (
	"context"
	"time"

	"github.com/go-oauth2/oauth2/v4"
	"github.com/go-oauth2/oauth2/v4/models"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-token-server/internal/errors"
	"github.com/jrsteele09/go-token-server/tenants"
	"github.com/jrsteele09/go-token-server/token"
	"github.com/jrsteele09/go-token-server/token/access"
	"github.com/jrsteele09/go-token-server/token/refresh"
)

var _ oauth2.TokenStore = (*TokenStore)(nil)

// TokenStore persists go-oauth2 token info as hashed access and refresh
// records. Every method accepts either a raw token or its digest.
type TokenStore struct {
	access  access.Repo
	refresh refresh.Repo
}

func NewTokenStore(accessRepo access.Repo, refreshRepo refresh.Repo) *TokenStore {
	return &TokenStore{
		access:  accessRepo,
		refresh: refreshRepo,
	}
}

// digest returns v unchanged when it is already a digest.
func digest(v string) (string, error) {
	if token.IsHashed(v) {
		return v, nil
	}
	return token.Hash(v)
}

// Create stores digests of the access and refresh values in info. info itself
// is left untouched; the manager returns its raw values to the client.
func (s *TokenStore) Create(ctx context.Context, info oauth2.TokenInfo) error {
	tenantID := tenants.IDFromContext(ctx)

	var accessHash string
	if raw := info.GetAccess(); raw != "" {
		h, err := digest(raw)
		if err != nil {
			return apperrors.Wrapf(err, "[TokenStore Create] hash access token")
		}
		accessHash = h
		rec := &access.Token{
			ID:       uuid.New().String(),
			Token:    h,
			ClientID: info.GetClientID(),
			UserID:   info.GetUserID(),
			TenantID: tenantID,
			Scope:    info.GetScope(),
			IssuedAt: info.GetAccessCreateAt(),
		}
		if exp := info.GetAccessExpiresIn(); exp > 0 {
			rec.ExpiresAt = rec.IssuedAt.Add(exp)
		}
		if err := s.access.Upsert(ctx, rec); err != nil {
			return apperrors.Wrapf(err, "[TokenStore Create] store access token")
		}
	}

	if raw := info.GetRefresh(); raw != "" {
		h, err := digest(raw)
		if err != nil {
			return apperrors.Wrapf(err, "[TokenStore Create] hash refresh token")
		}
		createdAt := info.GetRefreshCreateAt()
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		rec := &refresh.Token{
			Token:       h,
			AccessToken: accessHash,
			ClientID:    info.GetClientID(),
			UserID:      info.GetUserID(),
			TenantID:    tenantID,
			Scope:       info.GetScope(),
			CreatedAt:   createdAt,
		}
		if err := s.refresh.Upsert(ctx, rec); err != nil {
			return apperrors.Wrapf(err, "[TokenStore Create] store refresh token")
		}
	}
	return nil
}

// RemoveByCode is a no-op, authorization codes are not issued.
func (s *TokenStore) RemoveByCode(context.Context, string) error {
	return nil
}

func (s *TokenStore) RemoveByAccess(ctx context.Context, value string) error {
	h, err := digest(value)
	if err != nil {
		return nil
	}
	return s.access.Delete(ctx, h)
}

func (s *TokenStore) RemoveByRefresh(ctx context.Context, value string) error {
	h, err := digest(value)
	if err != nil {
		return nil
	}
	return s.refresh.Delete(ctx, h)
}

// GetByCode always reports no token.
func (s *TokenStore) GetByCode(context.Context, string) (oauth2.TokenInfo, error) {
	return nil, nil
}

// GetByAccess returns nil when the token is unknown or belongs to another
// tenant. The returned info reports value as its access token so the
// manager's equality check holds for raw and hashed lookups alike.
func (s *TokenStore) GetByAccess(ctx context.Context, value string) (oauth2.TokenInfo, error) {
	h, err := digest(value)
	if err != nil {
		return nil, nil
	}
	rec, err := s.access.GetByHash(ctx, h)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, "[TokenStore GetByAccess]")
	}
	if !sameTenant(ctx, rec.TenantID) {
		return nil, nil
	}

	ti := models.NewToken()
	ti.SetClientID(rec.ClientID)
	ti.SetUserID(rec.UserID)
	ti.SetScope(rec.Scope)
	ti.SetAccess(value)
	ti.SetAccessCreateAt(rec.IssuedAt)
	if !rec.ExpiresAt.IsZero() {
		ti.SetAccessExpiresIn(rec.ExpiresAt.Sub(rec.IssuedAt))
	}
	return ti, nil
}

// GetByRefresh returns nil when the token is unknown or belongs to another
// tenant. The refresh expiry is left at zero: expiry is enforced before the
// request reaches the manager.
func (s *TokenStore) GetByRefresh(ctx context.Context, value string) (oauth2.TokenInfo, error) {
	h, err := digest(value)
	if err != nil {
		return nil, nil
	}
	rec, err := s.refresh.GetByHash(ctx, h)
	if apperrors.Is(err, refresh.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, "[TokenStore GetByRefresh]")
	}
	if !sameTenant(ctx, rec.TenantID) {
		return nil, nil
	}

	ti := models.NewToken()
	ti.SetClientID(rec.ClientID)
	ti.SetUserID(rec.UserID)
	ti.SetScope(rec.Scope)
	ti.SetAccess(rec.AccessToken)
	ti.SetRefresh(value)
	ti.SetRefreshCreateAt(rec.CreatedAt)
	return ti, nil
}

func sameTenant(ctx context.Context, tenantID string) bool {
	want := tenants.IDFromContext(ctx)
	return want == "" || want == tenantID
}
