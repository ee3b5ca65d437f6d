package jwt

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-oauth2/oauth2/v4"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-token-server/tenants"
)

var _ oauth2.AccessGenerate = (*AccessGenerate)(nil)

// IssuerFunc returns the issuer claim for a tenant.
type IssuerFunc func(tenantID string) string

// AccessGenerate mints signed JWT access tokens and opaque refresh tokens for
// the go-oauth2 manager.
type AccessGenerate struct {
	signer Signer
	issuer IssuerFunc
}

// NewAccessGenerate creates a generator signing with signer. issuer may be nil.
func NewAccessGenerate(signer Signer, issuer IssuerFunc) *AccessGenerate {
	return &AccessGenerate{
		signer: signer,
		issuer: issuer,
	}
}

// Token creates an access token and, when isGenRefresh is set, a refresh token.
func (g *AccessGenerate) Token(ctx context.Context, data *oauth2.GenerateBasic, isGenRefresh bool) (string, string, error) {
	tenantID := tenants.IDFromContext(ctx)
	createdAt := data.CreateAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	clientID := data.Client.GetID()

	claims := jwtlib.MapClaims{
		"aud":       clientID,           // The client the token was issued to
		"client_id": clientID,           // The OAuth2 client that requested the token
		"tenant":    tenantID,           // Explicit tenant ID for multi-tenant context
		"iat":       createdAt.Unix(),   // Issued At: the time at which the token was issued
		"jti":       uuid.New().String(), // Unique token ID
	}
	if g.issuer != nil {
		claims["iss"] = g.issuer(tenantID)
	}
	if ti := data.TokenInfo; ti != nil {
		claims["scope"] = ti.GetScope()
		if exp := ti.GetAccessExpiresIn(); exp > 0 {
			claims["exp"] = createdAt.Add(exp).Unix()
		}
	}
	if data.UserID != "" {
		// User-delegated access token (password and refresh grants)
		claims["sub"] = data.UserID
		claims["token_type"] = "user"
	} else {
		// Client credentials token (machine-to-machine)
		claims["sub"] = clientID
		claims["token_type"] = "client"
	}

	access, err := g.signer.Sign(claims)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign JWT token: %w", err)
	}

	var refresh string
	if isGenRefresh {
		refresh = opaqueToken(clientID, data.UserID, createdAt, access)
	}
	return access, refresh, nil
}

// opaqueToken mirrors the format of the default go-oauth2 generator so
// refresh tokens look the same whichever access format is configured.
func opaqueToken(clientID, userID string, createdAt time.Time, seed string) string {
	buf := bytes.NewBufferString(clientID)
	buf.WriteString(userID)
	buf.WriteString(strconv.FormatInt(createdAt.UnixNano(), 10))
	buf.WriteString(seed)
	v := base64.URLEncoding.EncodeToString([]byte(uuid.NewSHA1(uuid.Must(uuid.NewRandom()), buf.Bytes()).String()))
	return strings.ToUpper(strings.TrimRight(v, "="))
}
