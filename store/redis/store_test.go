package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	apperrors "github.com/jrsteele09/go-token-server/internal/errors"
	"github.com/jrsteele09/go-token-server/store/redis"
	"github.com/jrsteele09/go-token-server/token/access"
	"github.com/jrsteele09/go-token-server/token/refresh"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := redis.New(context.Background(), mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRefreshTokens(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t)
	repo := s.RefreshTokens()

	_, err := repo.GetByHash(ctx, "$sha256$missing")
	require.ErrorIs(t, err, refresh.ErrNotFound)

	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	tok := &refresh.Token{Token: "$sha256$r1", ClientID: "web", TenantID: "acme", CreatedAt: created}
	require.NoError(t, repo.Upsert(ctx, tok))
	require.True(t, mr.Exists("oauth:refresh:$sha256$r1"))
	require.Zero(t, mr.TTL("oauth:refresh:$sha256$r1"))

	got, err := repo.GetByHash(ctx, tok.Token)
	require.NoError(t, err)
	require.True(t, created.Equal(got.CreatedAt))
	require.Equal(t, "acme", got.TenantID)

	require.NoError(t, repo.Delete(ctx, tok.Token))
	_, err = repo.GetByHash(ctx, tok.Token)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAccessTokenExpiresInRedis(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t)
	repo := s.AccessTokens()

	tok := &access.Token{
		ID:        "id-1",
		Token:     "$sha256$a1",
		ClientID:  "web",
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(time.Minute),
	}
	require.NoError(t, repo.Upsert(ctx, tok))
	_, err := repo.GetByHash(ctx, tok.Token)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = repo.GetByHash(ctx, tok.Token)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestNewFailsWithoutServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := redis.New(context.Background(), addr, 0)
	require.Error(t, err)
}
