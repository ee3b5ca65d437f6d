package oauthmodel

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
// Determines what credentials are required to obtain tokens.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Not enabled on this server, listed so requests naming it fail with unsupported_grant_type.
	AuthorizationCodeGrant GrantType = "authorization_code"

	// PasswordGrant exchanges resource owner credentials for tokens.
	// Token request includes: username, password, client_id, client_secret, scope
	// Returns: access_token and refresh_token
	PasswordGrant GrantType = "password"

	// ClientCredentialsGrant allows machine-to-machine authentication.
	// Token request includes: client_id, client_secret, scope
	// Returns: access_token (no refresh_token)
	ClientCredentialsGrant GrantType = "client_credentials"

	// RefreshTokenGrant exchanges a refresh token for new tokens.
	// Token request includes: refresh_token, client_id, client_secret
	// Returns: new access_token and a rotated refresh_token
	// The stored refresh token must be inside its TTL, otherwise the request is denied.
	RefreshTokenGrant GrantType = "refresh_token"
)

func (g GrantType) String() string { return string(g) }

// Form parameter names accepted by the token endpoint.
const (
	ParamGrantType    = "grant_type"
	ParamRefreshToken = "refresh_token"
	ParamClientID     = "client_id"
	ParamClientSecret = "client_secret"
	ParamUsername     = "username"
	ParamPassword     = "password"
	ParamScope        = "scope"
)
