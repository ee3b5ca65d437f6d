package token

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	apperrors "github.com/jrsteele09/go-token-server/internal/errors"
)

const hashPrefix = "$sha256$"

// ErrEmptyToken is returned when an empty value is hashed.
var ErrEmptyToken = apperrors.ErrEmptyToken

// Hash returns the digest stored in place of a raw access or refresh token:
// "$sha256$" followed by the hex SHA-256 of the token bytes. Raw tokens are
// only ever seen by the client; storage and lookups use this value.
func Hash(raw string) (string, error) {
	if raw == "" {
		return "", ErrEmptyToken
	}
	sum := sha256.Sum256([]byte(raw))
	return hashPrefix + hex.EncodeToString(sum[:]), nil
}

// IsHashed reports whether value is already a digest produced by Hash.
func IsHashed(value string) bool {
	return strings.HasPrefix(value, hashPrefix) && len(value) == len(hashPrefix)+sha256.Size*2
}
