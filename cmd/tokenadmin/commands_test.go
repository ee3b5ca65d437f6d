package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-token-server/store/sqlite"
	"github.com/jrsteele09/go-token-server/token"
	"github.com/jrsteele09/go-token-server/token/refresh"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, d defaults, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(d)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestHash(t *testing.T) {
	want, err := token.Hash("abc")
	require.NoError(t, err)

	out, err := execute(t, defaults{}, "hash", "abc")
	require.NoError(t, err)
	require.Equal(t, want+"\n", out)
}

func TestHashRequiresArgument(t *testing.T) {
	_, err := execute(t, defaults{}, "hash")
	require.Error(t, err)
}

func TestInspectRefresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.db")
	db, err := sqlite.Open(path)
	require.NoError(t, err)

	hash, err := token.Hash("refresh-raw")
	require.NoError(t, err)
	require.NoError(t, db.RefreshTokens().Upsert(context.Background(), &refresh.Token{
		Token:     hash,
		ClientID:  "app",
		TenantID:  "acme",
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}))
	require.NoError(t, db.Close())

	d := defaults{sqlitePath: path, ttl: time.Hour}
	out, err := execute(t, d, "inspect-refresh", "refresh-raw")
	require.NoError(t, err)
	require.Contains(t, out, "tenant:     acme")
	require.Contains(t, out, "expired:    true")

	out, err = execute(t, d, "inspect-refresh", "refresh-raw", "--ttl-seconds", "86400")
	require.NoError(t, err)
	require.Contains(t, out, "expired:    false")

	_, err = execute(t, d, "inspect-refresh", "unknown")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "not found"))
}

func TestIntrospectRequiresKey(t *testing.T) {
	_, err := execute(t, defaults{}, "introspect", "a.b.c")
	require.Error(t, err)
}
