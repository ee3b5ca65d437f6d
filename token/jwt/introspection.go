package jwt

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// TokenIntrospection represents the metadata information of an OAuth 2.0 token.
// The 'active' field indicates the state of the token - if it's false, other fields may not be populated.
type TokenIntrospection struct {
	Active    bool   `json:"active"`               // True or false - Is the token valid
	Aud       string `json:"aud,omitempty"`        // Audience - the client ID that requested the token
	Exp       int64  `json:"exp,omitempty"`        // Expiration, 0 when the token has none
	Iat       int64  `json:"iat,omitempty"`        // Issued at time
	Iss       string `json:"iss,omitempty"`        // Issuer of the token
	Scope     string `json:"scope,omitempty"`      // Granted scope
	Tenant    string `json:"tenant,omitempty"`     // Tenant
	Sub       string `json:"sub,omitempty"`        // User ID, or client ID for client tokens
	TokenType string `json:"token_type,omitempty"` // "user" or "client"
}

// Inspector verifies JWT access tokens minted by AccessGenerate.
type Inspector struct {
	signer Signer
}

func NewInspector(signer Signer) *Inspector {
	return &Inspector{signer: signer}
}

// Introspect validates rawToken and extracts its claims. A token with a bad
// signature is inactive and the error says why; an expired token is inactive
// with a nil error.
func (i *Inspector) Introspect(rawToken string) (*TokenIntrospection, error) {
	if strings.TrimSpace(rawToken) == "" {
		return &TokenIntrospection{Active: false}, nil
	}

	// exp is checked below against NowTimeFunc so tests can move the clock.
	token, err := jwtlib.ParseWithClaims(rawToken, jwtlib.MapClaims{}, i.signer.GetVerificationKey,
		jwtlib.WithoutClaimsValidation(),
		jwtlib.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
	)
	if err != nil || !token.Valid {
		return &TokenIntrospection{Active: false}, err
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return &TokenIntrospection{Active: false}, errors.New("error extracting claims from token")
	}

	out := &TokenIntrospection{Active: true}
	out.Iss, _ = claims["iss"].(string)
	out.Sub, _ = claims["sub"].(string)
	out.Aud, _ = claims["aud"].(string)
	out.Scope, _ = claims["scope"].(string)
	out.Tenant, _ = claims["tenant"].(string)
	out.TokenType, _ = claims["token_type"].(string)
	if iat, ok := claims["iat"].(float64); ok {
		out.Iat = int64(iat)
	}
	if exp, ok := claims["exp"].(float64); ok {
		out.Exp = int64(exp)
		if NowTimeFunc().Unix() > out.Exp {
			out.Active = false
		}
	}
	return out, nil
}
