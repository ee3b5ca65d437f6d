// Package redis persists access and refresh token records as JSON values in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-token-server/internal/errors"
	"github.com/jrsteele09/go-token-server/token/access"
	"github.com/jrsteele09/go-token-server/token/refresh"
	rdb "github.com/redis/go-redis/v9"
)

const (
	accessPrefix  = "oauth:access:"
	refreshPrefix = "oauth:refresh:"
)

type Store struct {
	c *rdb.Client
}

// New connects to addr/db and checks the connection.
func New(ctx context.Context, addr string, db int) (*Store, error) {
	c := rdb.NewClient(&rdb.Options{Addr: addr, DB: db})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return &Store{c: c}, nil
}

func (s *Store) Close() error {
	return s.c.Close()
}

func (s *Store) AccessTokens() access.Repo {
	return &accessRepo{c: s.c}
}

func (s *Store) RefreshTokens() refresh.Repo {
	return &refreshRepo{c: s.c}
}

func put(ctx context.Context, c *rdb.Client, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, b, ttl).Err()
}

func get(ctx context.Context, c *rdb.Client, key string, v any) error {
	b, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, rdb.Nil) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

type accessRepo struct {
	c *rdb.Client
}

// Upsert lets Redis drop the record once the access token has expired.
func (r *accessRepo) Upsert(ctx context.Context, t *access.Token) error {
	var ttl time.Duration
	if !t.ExpiresAt.IsZero() {
		ttl = time.Until(t.ExpiresAt)
		if ttl <= 0 {
			ttl = time.Millisecond
		}
	}
	if err := put(ctx, r.c, accessPrefix+t.Token, t, ttl); err != nil {
		return fmt.Errorf("[redis access Upsert] %w", err)
	}
	return nil
}

func (r *accessRepo) Delete(ctx context.Context, hash string) error {
	if err := r.c.Del(ctx, accessPrefix+hash).Err(); err != nil {
		return fmt.Errorf("[redis access Delete] %w", err)
	}
	return nil
}

func (r *accessRepo) GetByHash(ctx context.Context, hash string) (*access.Token, error) {
	var t access.Token
	if err := get(ctx, r.c, accessPrefix+hash, &t); err != nil {
		return nil, apperrors.Wrapf(err, "[redis access GetByHash]")
	}
	return &t, nil
}

type refreshRepo struct {
	c *rdb.Client
}

// Upsert stores the record without a Redis TTL; the refresh policy decides
// expiry and the record must stay readable to report it.
func (r *refreshRepo) Upsert(ctx context.Context, t *refresh.Token) error {
	if err := put(ctx, r.c, refreshPrefix+t.Token, t, 0); err != nil {
		return fmt.Errorf("[redis refresh Upsert] %w", err)
	}
	return nil
}

func (r *refreshRepo) Delete(ctx context.Context, hash string) error {
	if err := r.c.Del(ctx, refreshPrefix+hash).Err(); err != nil {
		return fmt.Errorf("[redis refresh Delete] %w", err)
	}
	return nil
}

func (r *refreshRepo) GetByHash(ctx context.Context, hash string) (*refresh.Token, error) {
	var t refresh.Token
	if err := get(ctx, r.c, refreshPrefix+hash, &t); err != nil {
		return nil, apperrors.Wrapf(err, "[redis refresh GetByHash]")
	}
	return &t, nil
}
