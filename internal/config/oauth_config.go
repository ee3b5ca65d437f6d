package config

import (
	"strings"
	"time"
)

type OAuthConfig interface {
	GetRefreshTokenExpiry() time.Duration
	GetAccessTokenExpiry() time.Duration
	GetAccessTokenFormat() string
	GetAccessTokenSigningKey() []byte
}

const (
	AccessTokenFormatOpaque = "opaque"
	AccessTokenFormatJWT    = "jwt"
)

type OAuth struct {
	s *settings
}

var _ OAuthConfig = OAuth{}

// GetRefreshTokenExpiry is REFRESH_TOKEN_EXPIRE_SECONDS. Zero is a real TTL
// (refresh tokens expire immediately), not "never expire".
func (o OAuth) GetRefreshTokenExpiry() time.Duration {
	return seconds(o.s.RefreshTokenExpireSeconds)
}

func (o OAuth) GetAccessTokenExpiry() time.Duration {
	if o.s.AccessTokenExpireSeconds <= 0 {
		return time.Hour
	}
	return seconds(o.s.AccessTokenExpireSeconds)
}

// GetAccessTokenFormat is ACCESS_TOKEN_FORMAT, lower-cased. Unknown values are
// passed through so the grant delegate can reject them.
func (o OAuth) GetAccessTokenFormat() string {
	format := strings.ToLower(strings.TrimSpace(o.s.AccessTokenFormat))
	if format == "" {
		return AccessTokenFormatOpaque
	}
	return format
}

func (o OAuth) GetAccessTokenSigningKey() []byte {
	return []byte(o.s.AccessTokenSigningKey)
}
