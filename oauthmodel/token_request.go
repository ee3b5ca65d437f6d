package oauthmodel

import "net/url"

// TokenRequest holds parameters for the OAuth2 token request.
// This represents the request body sent to the /token endpoint.
// Supports the password, client_credentials and refresh_token grant types.
type TokenRequest struct {
	GrantType GrantType

	// ClientID identifies the OAuth2 client making the request.
	// Required: Yes (for all grant types), in the body or via HTTP Basic auth
	// Example: "web-app-client"
	ClientID string

	// ClientSecret is the secret credential for confidential clients.
	// Required: Yes for confidential clients
	// Security: Never log or expose this value
	ClientSecret string

	// Username and Password are the resource owner credentials.
	// Required: Yes (only for password grant)
	Username string
	Password string

	// Scope is a space separated list of requested scopes.
	// Validated against: clients.Client.Scopes
	Scope string

	// RefreshToken is used to obtain new access tokens without re-authentication.
	// Required: Yes (only for refresh_token grant)
	// Behavior: Rotated, the old refresh token is invalidated and a new one issued
	RefreshToken string
}

// ParseTokenRequest reads the token request parameters from form values.
func ParseTokenRequest(form url.Values) TokenRequest {
	return TokenRequest{
		GrantType:    GrantType(form.Get(ParamGrantType)),
		ClientID:     form.Get(ParamClientID),
		ClientSecret: form.Get(ParamClientSecret),
		Username:     form.Get(ParamUsername),
		Password:     form.Get(ParamPassword),
		Scope:        form.Get(ParamScope),
		RefreshToken: form.Get(ParamRefreshToken),
	}
}

// Values encodes the request back into form values, omitting empty fields.
func (r TokenRequest) Values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set(ParamGrantType, string(r.GrantType))
	set(ParamClientID, r.ClientID)
	set(ParamClientSecret, r.ClientSecret)
	set(ParamUsername, r.Username)
	set(ParamPassword, r.Password)
	set(ParamScope, r.Scope)
	set(ParamRefreshToken, r.RefreshToken)
	return v
}
