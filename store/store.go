// Package store opens the token repositories selected by STORE_DRIVER.
package store

import (
	"context"

	"github.com/jrsteele09/go-token-server/internal/config"
	apperrors "github.com/jrsteele09/go-token-server/internal/errors"
	"github.com/jrsteele09/go-token-server/store/redis"
	"github.com/jrsteele09/go-token-server/store/sqlite"
	"github.com/jrsteele09/go-token-server/token/access"
	accessrepofake "github.com/jrsteele09/go-token-server/token/access/repofake"
	"github.com/jrsteele09/go-token-server/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-token-server/token/refresh/repofake"
)

// TokenStores are the access and refresh repositories of one backend.
type TokenStores struct {
	Access  access.Repo
	Refresh refresh.Repo
	closer  func() error
}

// Close releases the backend connection, if any.
func (t *TokenStores) Close() error {
	if t == nil || t.closer == nil {
		return nil
	}
	return t.closer()
}

// Open returns the token stores for the configured driver.
func Open(ctx context.Context, cfg config.StorageConfig) (*TokenStores, error) {
	switch cfg.GetStoreDriver() {
	case config.StoreDriverMemory:
		return &TokenStores{
			Access:  accessrepofake.NewFakeAccessTokenRepo(),
			Refresh: refreshrepofake.NewFakeRefreshTokenRepo(),
		}, nil

	case config.StoreDriverSQLite:
		s, err := sqlite.Open(cfg.GetSQLitePath())
		if err != nil {
			return nil, apperrors.Wrapf(err, "[store Open] sqlite")
		}
		return &TokenStores{Access: s.AccessTokens(), Refresh: s.RefreshTokens(), closer: s.Close}, nil

	case config.StoreDriverRedis:
		s, err := redis.New(ctx, cfg.GetRedisAddr(), cfg.GetRedisDB())
		if err != nil {
			return nil, apperrors.Wrapf(err, "[store Open] redis")
		}
		return &TokenStores{Access: s.AccessTokens(), Refresh: s.RefreshTokens(), closer: s.Close}, nil
	}
	return nil, apperrors.Wrapf(apperrors.ErrUnsupportedStore, "[store Open] %q", cfg.GetStoreDriver())
}
