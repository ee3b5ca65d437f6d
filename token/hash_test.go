package token_test

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	apperrors "github.com/jrsteele09/go-token-server/internal/errors"
	"github.com/jrsteele09/go-token-server/token"
	"github.com/stretchr/testify/require"
)

func TestHashDeterministic(t *testing.T) {
	first, err := token.Hash("tGzv3JOkF0XG5Qx2TlKWIA")
	require.NoError(t, err)
	second, err := token.Hash("tGzv3JOkF0XG5Qx2TlKWIA")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestHashDistinctInputs(t *testing.T) {
	seen := make(map[string]string)
	for _, raw := range []string{"a", "b", "refresh-1", "refresh-2", "refresh-1 ", "REFRESH-1"} {
		h, err := token.Hash(raw)
		require.NoError(t, err)
		prev, dup := seen[h]
		require.False(t, dup, "%q and %q hashed to the same digest", raw, prev)
		seen[h] = raw
	}
}

func TestHashFormat(t *testing.T) {
	h, err := token.Hash("abc")
	require.NoError(t, err)

	sum := sha256.Sum256([]byte("abc"))
	require.Equal(t, "$sha256$"+hex.EncodeToString(sum[:]), h)
	require.True(t, token.IsHashed(h))
	require.False(t, token.IsHashed("abc"))
	require.False(t, token.IsHashed("$sha256$abc"))
}

func TestHashEmpty(t *testing.T) {
	_, err := token.Hash("")
	require.ErrorIs(t, err, apperrors.ErrEmptyToken)
}
