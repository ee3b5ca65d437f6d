package jwt

import (
	"fmt"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Signer signs access token claims and hands out the key to verify them.
type Signer interface {
	Sign(claims jwtlib.MapClaims) (string, error)
	GetVerificationKey(token *jwtlib.Token) (any, error)
	GetSigningMethod() jwtlib.SigningMethod
}

// HMACSigner implements Signer using symmetric HMAC-SHA256
type HMACSigner struct {
	keyID  string
	secret []byte
}

// NewHMACSigner creates a new HMAC signer with the given secret. A non-empty
// keyID is written to the kid header.
func NewHMACSigner(keyID string, secret []byte) *HMACSigner {
	return &HMACSigner{
		keyID:  keyID,
		secret: secret,
	}
}

func (h *HMACSigner) Sign(claims jwtlib.MapClaims) (string, error) {
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	if h.keyID != "" {
		token.Header["kid"] = h.keyID
	}
	signedToken, err := token.SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token with HMAC: %w", err)
	}
	return signedToken, nil
}

func (h *HMACSigner) GetVerificationKey(token *jwtlib.Token) (any, error) {
	if _, ok := token.Method.(*jwtlib.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return h.secret, nil
}

func (h *HMACSigner) GetSigningMethod() jwtlib.SigningMethod {
	return jwtlib.SigningMethodHS256
}
