package oauthmodel_test

import (
	"net/url"
	"testing"

	"github.com/jrsteele09/go-token-server/oauthmodel"
	"github.com/stretchr/testify/require"
)

func TestParseTokenRequest(t *testing.T) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {"abc"},
		"client_id":     {"web"},
		"scope":         {"read write"},
	}
	req := oauthmodel.ParseTokenRequest(form)
	require.Equal(t, oauthmodel.RefreshTokenGrant, req.GrantType)
	require.Equal(t, "abc", req.RefreshToken)
	require.Equal(t, "web", req.ClientID)
	require.Empty(t, req.ClientSecret)

	require.Equal(t, form, req.Values())
}
