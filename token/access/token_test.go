package access_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-token-server/token/access"
	"github.com/stretchr/testify/require"
)

func TestIsExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	require.False(t, (&access.Token{}).IsExpired(now))
	require.False(t, (&access.Token{ExpiresAt: now}).IsExpired(now))
	require.False(t, (&access.Token{ExpiresAt: now.Add(time.Second)}).IsExpired(now))
	require.True(t, (&access.Token{ExpiresAt: now.Add(-time.Second)}).IsExpired(now))
}
