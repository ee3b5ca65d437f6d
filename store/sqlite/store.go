// Package sqlite persists access and refresh token records in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-token-server/internal/errors"
	"github.com/jrsteele09/go-token-server/token/access"
	"github.com/jrsteele09/go-token-server/token/refresh"
	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS access_tokens (
	hash       TEXT PRIMARY KEY,
	id         TEXT NOT NULL,
	client_id  TEXT NOT NULL,
	user_id    TEXT NOT NULL DEFAULT '',
	tenant_id  TEXT NOT NULL DEFAULT '',
	scope      TEXT NOT NULL DEFAULT '',
	issued_at  INTEGER NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS refresh_tokens (
	hash        TEXT PRIMARY KEY,
	access_hash TEXT NOT NULL DEFAULT '',
	client_id   TEXT NOT NULL,
	user_id     TEXT NOT NULL DEFAULT '',
	tenant_id   TEXT NOT NULL DEFAULT '',
	scope       TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL
);
`

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

// Store holds both token tables in a single SQLite database.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the database at path, or an in-memory database for ":memory:",
// and creates the token tables.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := memoryPath
	if path != memoryPath {
		dsn = "file:" + filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == memoryPath {
		// Each connection to :memory: is a separate database.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AccessTokens returns the access token repository.
func (s *Store) AccessTokens() access.Repo {
	return &accessRepo{db: s.sqlDB}
}

// RefreshTokens returns the refresh token repository.
func (s *Store) RefreshTokens() refresh.Repo {
	return &refreshRepo{db: s.sqlDB}
}

type accessRepo struct {
	db *sql.DB
}

func (r *accessRepo) Upsert(ctx context.Context, t *access.Token) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO access_tokens (hash, id, client_id, user_id, tenant_id, scope, issued_at, expires_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(hash) DO UPDATE SET
	id = excluded.id,
	client_id = excluded.client_id,
	user_id = excluded.user_id,
	tenant_id = excluded.tenant_id,
	scope = excluded.scope,
	issued_at = excluded.issued_at,
	expires_at = excluded.expires_at`,
		t.Token, t.ID, t.ClientID, t.UserID, t.TenantID, t.Scope, toMillis(t.IssuedAt), toMillis(t.ExpiresAt))
	if err != nil {
		return fmt.Errorf("[sqlite access Upsert] %w", err)
	}
	return nil
}

func (r *accessRepo) Delete(ctx context.Context, hash string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM access_tokens WHERE hash = ?`, hash); err != nil {
		return fmt.Errorf("[sqlite access Delete] %w", err)
	}
	return nil
}

func (r *accessRepo) GetByHash(ctx context.Context, hash string) (*access.Token, error) {
	var (
		t                   access.Token
		issuedAt, expiresAt int64
	)
	err := r.db.QueryRowContext(ctx, `
SELECT hash, id, client_id, user_id, tenant_id, scope, issued_at, expires_at
FROM access_tokens WHERE hash = ?`, hash).
		Scan(&t.Token, &t.ID, &t.ClientID, &t.UserID, &t.TenantID, &t.Scope, &issuedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[sqlite access GetByHash] %w", err)
	}
	t.IssuedAt = fromMillis(issuedAt)
	t.ExpiresAt = fromMillis(expiresAt)
	return &t, nil
}

type refreshRepo struct {
	db *sql.DB
}

func (r *refreshRepo) Upsert(ctx context.Context, t *refresh.Token) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO refresh_tokens (hash, access_hash, client_id, user_id, tenant_id, scope, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(hash) DO UPDATE SET
	access_hash = excluded.access_hash,
	client_id = excluded.client_id,
	user_id = excluded.user_id,
	tenant_id = excluded.tenant_id,
	scope = excluded.scope,
	created_at = excluded.created_at`,
		t.Token, t.AccessToken, t.ClientID, t.UserID, t.TenantID, t.Scope, toMillis(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("[sqlite refresh Upsert] %w", err)
	}
	return nil
}

func (r *refreshRepo) Delete(ctx context.Context, hash string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE hash = ?`, hash); err != nil {
		return fmt.Errorf("[sqlite refresh Delete] %w", err)
	}
	return nil
}

func (r *refreshRepo) GetByHash(ctx context.Context, hash string) (*refresh.Token, error) {
	var (
		t         refresh.Token
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, `
SELECT hash, access_hash, client_id, user_id, tenant_id, scope, created_at
FROM refresh_tokens WHERE hash = ?`, hash).
		Scan(&t.Token, &t.AccessToken, &t.ClientID, &t.UserID, &t.TenantID, &t.Scope, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, refresh.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[sqlite refresh GetByHash] %w", err)
	}
	t.CreatedAt = fromMillis(createdAt)
	return &t, nil
}
