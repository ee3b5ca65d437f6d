package oauthmodel

// TokenResponse represents the response from an OAuth2 token request.
// This is the standard OAuth2 token endpoint response format as defined in RFC 6749.
type TokenResponse struct {
	// AccessToken is the token used to access protected resources.
	// Opaque by default, a signed JWT when ACCESS_TOKEN_FORMAT=jwt.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	AccessToken string `json:"access_token,omitempty"`

	// TokenType indicates how to use the access token (always "Bearer" in this implementation).
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token.
	ExpiresIn int64 `json:"expires_in,omitempty"`

	// RefreshToken is an opaque token used to obtain new access tokens.
	// Only the digest is kept server side; the raw value exists only in this response.
	// Security: Should be stored securely, rotates on each use
	RefreshToken string `json:"refresh_token,omitempty"`

	// Scope indicates the access token's granted permissions.
	Scope string `json:"scope,omitempty"`
}

// ErrorResponse is the RFC 6749 section 5.2 error body.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}
