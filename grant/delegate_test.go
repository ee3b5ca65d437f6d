package grant_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/jrsteele09/go-token-server/clients"
	clientrepofake "github.com/jrsteele09/go-token-server/clients/repofake"
	"github.com/jrsteele09/go-token-server/grant"
	"github.com/jrsteele09/go-token-server/internal/config"
	"github.com/jrsteele09/go-token-server/issuance"
	"github.com/jrsteele09/go-token-server/oauthmodel"
	"github.com/jrsteele09/go-token-server/tenants"
	"github.com/jrsteele09/go-token-server/token"
	accessrepofake "github.com/jrsteele09/go-token-server/token/access/repofake"
	"github.com/jrsteele09/go-token-server/token/jwt"
	refreshrepofake "github.com/jrsteele09/go-token-server/token/refresh/repofake"
	"github.com/jrsteele09/go-token-server/users"
	fakeuserrepo "github.com/jrsteele09/go-token-server/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	tenantID     = "acme"
	tokenURI     = "https://acme.auth.example.com/oauth2/token"
	userPassword = "Passw0rd!"
)

type fixture struct {
	delegate *grant.Delegate
	access   *accessrepofake.FakeAccessTokenRepo
	refresh  *refreshrepofake.FakeRefreshTokenRepo
	users    users.UserRepo
	clients  clients.Repo
	ctx      context.Context
}

func newFixture(t *testing.T, cfg grant.Config) *fixture {
	t.Helper()
	clientRepo := clientrepofake.NewFakeClientRepo()
	require.NoError(t, clientRepo.Upsert(tenantID, &clients.Client{
		ID:     "web",
		Secret: "web-secret",
		Type:   clients.ClientTypeConfidential,
		Scopes: []string{"read", "write"},
	}))
	require.NoError(t, clientRepo.Upsert(tenantID, &clients.Client{
		ID:         "machine",
		Secret:     "machine-secret",
		Scopes:     []string{"read"},
		GrantTypes: []string{"client_credentials"},
	}))

	hash, err := users.HashPassword(userPassword)
	require.NoError(t, err)
	userRepo := fakeuserrepo.NewFakeUserRepo()
	require.NoError(t, userRepo.Upsert(&users.User{
		ID:           "user-1",
		Email:        "jane@example.com",
		Username:     "jane",
		PasswordHash: hash,
		Verified:     true,
		TenantIDs:    []string{tenantID},
	}))

	f := &fixture{
		access:  accessrepofake.NewFakeAccessTokenRepo(),
		refresh: refreshrepofake.NewFakeRefreshTokenRepo(),
		users:   userRepo,
		clients: clientRepo,
		ctx:     tenants.WithTenantID(context.Background(), tenantID),
	}
	f.delegate, err = grant.New(grant.Repos{
		AccessTokens:  f.access,
		RefreshTokens: f.refresh,
		Clients:       clientRepo,
		Users:         userRepo,
	}, cfg)
	require.NoError(t, err)
	return f
}

func (f *fixture) call(t *testing.T, method string, form url.Values) (http.Header, oauthmodel.TokenResponse, int, error) {
	t.Helper()
	headers, body, status, err := f.delegate.CreateTokenResponse(f.ctx, issuance.DelegateRequest{
		URI:    tokenURI,
		Method: method,
		Body:   form,
	})
	var resp oauthmodel.TokenResponse
	if err == nil {
		require.NoError(t, json.Unmarshal([]byte(body), &resp))
	}
	return headers, resp, status, err
}

func passwordForm() url.Values {
	return url.Values{
		"grant_type":    {"password"},
		"username":      {"jane@example.com"},
		"password":      {userPassword},
		"client_id":     {"web"},
		"client_secret": {"web-secret"},
		"scope":         {"read"},
	}
}

func hashOf(t *testing.T, raw string) string {
	h, err := token.Hash(raw)
	require.NoError(t, err)
	return h
}

func requireProtocolError(t *testing.T, err error, code string, status int) {
	t.Helper()
	var pe *issuance.ProtocolError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, code, pe.Code)
	require.Equal(t, status, pe.StatusCode)
}

func TestPasswordGrantStoresOnlyDigests(t *testing.T) {
	f := newFixture(t, grant.Config{AccessTokenExpiry: time.Hour})

	headers, resp, status, err := f.call(t, http.MethodPost, passwordForm())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "no-store", headers.Get("Cache-Control"))
	require.Equal(t, "Bearer", resp.TokenType)
	require.Equal(t, int64(3600), resp.ExpiresIn)
	require.Equal(t, "read", resp.Scope)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)

	require.False(t, token.IsHashed(resp.AccessToken))
	rec, err := f.refresh.GetByHash(f.ctx, hashOf(t, resp.RefreshToken))
	require.NoError(t, err)
	require.Equal(t, "web", rec.ClientID)
	require.Equal(t, "user-1", rec.UserID)
	require.Equal(t, tenantID, rec.TenantID)
	require.Equal(t, hashOf(t, resp.AccessToken), rec.AccessToken)

	_, err = f.access.GetByHash(f.ctx, hashOf(t, resp.AccessToken))
	require.NoError(t, err)
}

func TestRefreshGrantRotates(t *testing.T) {
	f := newFixture(t, grant.Config{AccessTokenExpiry: time.Hour})
	_, first, _, err := f.call(t, http.MethodPost, passwordForm())
	require.NoError(t, err)

	// The orchestrator hands the delegate the digest, never the raw token.
	_, second, status, err := f.call(t, http.MethodPost, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {hashOf(t, first.RefreshToken)},
		"client_id":     {"web"},
		"client_secret": {"web-secret"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
	require.NotEqual(t, first.AccessToken, second.AccessToken)

	_, err = f.refresh.GetByHash(f.ctx, hashOf(t, first.RefreshToken))
	require.Error(t, err)
	_, err = f.access.GetByHash(f.ctx, hashOf(t, first.AccessToken))
	require.Error(t, err)
	_, err = f.refresh.GetByHash(f.ctx, hashOf(t, second.RefreshToken))
	require.NoError(t, err)
	require.Equal(t, 1, f.refresh.Len())
	require.Equal(t, 1, f.access.Len())

	// A rotated token cannot be replayed.
	_, _, _, err = f.call(t, http.MethodPost, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {hashOf(t, first.RefreshToken)},
		"client_id":     {"web"},
		"client_secret": {"web-secret"},
	})
	requireProtocolError(t, err, "invalid_grant", http.StatusBadRequest)
}

func TestRefreshGrantRejectsOtherTenant(t *testing.T) {
	f := newFixture(t, grant.Config{})
	_, first, _, err := f.call(t, http.MethodPost, passwordForm())
	require.NoError(t, err)

	store := grant.NewTokenStore(f.access, f.refresh)
	other := tenants.WithTenantID(context.Background(), "beta")
	ti, err := store.GetByRefresh(other, first.RefreshToken)
	require.NoError(t, err)
	require.Nil(t, ti)

	ti, err = store.GetByRefresh(f.ctx, first.RefreshToken)
	require.NoError(t, err)
	require.NotNil(t, ti)
	require.Equal(t, first.RefreshToken, ti.GetRefresh())
}

func TestClientCredentialsHasNoRefreshToken(t *testing.T) {
	f := newFixture(t, grant.Config{})
	_, resp, _, err := f.call(t, http.MethodPost, url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {"machine"},
		"client_secret": {"machine-secret"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.Empty(t, resp.RefreshToken)
	require.Zero(t, f.refresh.Len())
}

func TestClientGrantRestriction(t *testing.T) {
	f := newFixture(t, grant.Config{})
	form := passwordForm()
	form.Set("client_id", "machine")
	form.Set("client_secret", "machine-secret")

	_, _, _, err := f.call(t, http.MethodPost, form)
	requireProtocolError(t, err, "unauthorized_client", http.StatusBadRequest)
}

func TestProtocolErrors(t *testing.T) {
	f := newFixture(t, grant.Config{})

	tests := []struct {
		name   string
		mutate func(url.Values)
		code   string
		status int
	}{
		{"wrong client secret", func(v url.Values) { v.Set("client_secret", "nope") }, "invalid_client", http.StatusUnauthorized},
		{"unknown client", func(v url.Values) { v.Set("client_id", "ghost") }, "invalid_client", http.StatusUnauthorized},
		{"wrong password", func(v url.Values) { v.Set("password", "nope") }, "invalid_grant", http.StatusBadRequest},
		{"unknown user", func(v url.Values) { v.Set("username", "ghost@example.com") }, "invalid_grant", http.StatusBadRequest},
		{"scope not allowed", func(v url.Values) { v.Set("scope", "admin") }, "invalid_scope", http.StatusBadRequest},
		{"unknown refresh token", func(v url.Values) {
			v.Set("grant_type", "refresh_token")
			v.Set("refresh_token", "$sha256$0000000000000000000000000000000000000000000000000000000000000000")
		}, "invalid_grant", http.StatusBadRequest},
		{"missing refresh token", func(v url.Values) {
			v.Set("grant_type", "refresh_token")
			v.Del("refresh_token")
		}, "invalid_request", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := passwordForm()
			tt.mutate(form)
			_, _, _, err := f.call(t, http.MethodPost, form)
			requireProtocolError(t, err, tt.code, tt.status)
		})
	}
}

func TestUnsupportedGrantAndMethod(t *testing.T) {
	f := newFixture(t, grant.Config{})

	form := passwordForm()
	form.Set("grant_type", "authorization_code")
	form.Set("code", "abc")
	form.Set("redirect_uri", "https://client.example.com/cb")
	_, _, _, err := f.call(t, http.MethodPost, form)
	var pe *issuance.ProtocolError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, http.StatusBadRequest, pe.StatusCode)

	_, _, _, err = f.call(t, http.MethodGet, passwordForm())
	requireProtocolError(t, err, "invalid_request", http.StatusBadRequest)
}

func TestGetRequestWhenAllowed(t *testing.T) {
	f := newFixture(t, grant.Config{AllowGetTokenRequest: true})
	_, resp, status, err := f.call(t, http.MethodGet, passwordForm())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, resp.AccessToken)
}

func TestBlockedUserIsAccessDenied(t *testing.T) {
	f := newFixture(t, grant.Config{})
	require.NoError(t, f.users.SetBlocked("jane@example.com", true))

	_, _, _, err := f.call(t, http.MethodPost, passwordForm())
	var denied *issuance.AccessDeniedError
	require.ErrorAs(t, err, &denied)
	require.Equal(t, http.StatusForbidden, denied.StatusCode)
}

func TestUserOutsideTenantIsAccessDenied(t *testing.T) {
	f := newFixture(t, grant.Config{})
	u, err := f.users.GetByEmail("jane@example.com")
	require.NoError(t, err)
	u.TenantIDs = []string{"beta"}

	_, _, _, err = f.call(t, http.MethodPost, passwordForm())
	var denied *issuance.AccessDeniedError
	require.ErrorAs(t, err, &denied)
}

func TestBasicAuthAndExtraCredentials(t *testing.T) {
	f := newFixture(t, grant.Config{})
	form := passwordForm()
	form.Del("client_id")
	form.Del("client_secret")

	req, err := http.NewRequest(http.MethodPost, tokenURI, nil)
	require.NoError(t, err)
	req.SetBasicAuth("web", "web-secret")
	_, _, status, err := f.delegate.CreateTokenResponse(f.ctx, issuance.DelegateRequest{
		URI: tokenURI, Method: http.MethodPost, Body: form, Headers: req.Header,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	_, _, status, err = f.delegate.CreateTokenResponse(f.ctx, issuance.DelegateRequest{
		URI: tokenURI, Method: http.MethodPost, Body: form,
		ExtraCredentials: map[string]string{"client_id": "web", "client_secret": "web-secret"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	_, _, _, err = f.delegate.CreateTokenResponse(f.ctx, issuance.DelegateRequest{
		URI: tokenURI, Method: http.MethodPost, Body: form,
	})
	requireProtocolError(t, err, "invalid_client", http.StatusUnauthorized)
}

func TestJWTAccessTokens(t *testing.T) {
	key := []byte("signing-key")
	f := newFixture(t, grant.Config{
		AccessTokenFormat: config.AccessTokenFormatJWT,
		SigningKey:        key,
		Issuer:            func(id string) string { return "https://" + id + ".auth.example.com" },
	})
	_, resp, _, err := f.call(t, http.MethodPost, passwordForm())
	require.NoError(t, err)

	info, err := jwt.NewInspector(jwt.NewHMACSigner("", key)).Introspect(resp.AccessToken)
	require.NoError(t, err)
	require.True(t, info.Active)
	require.Equal(t, "user-1", info.Sub)
	require.Equal(t, tenantID, info.Tenant)
	require.Equal(t, "https://acme.auth.example.com", info.Iss)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := grant.New(grant.Repos{}, grant.Config{AccessTokenFormat: config.AccessTokenFormatJWT})
	require.Error(t, err)
	_, err = grant.New(grant.Repos{}, grant.Config{AccessTokenFormat: "paseto"})
	require.Error(t, err)
}

func refreshFormFor(t *testing.T, raw, clientID, secret string) url.Values {
	return url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {hashOf(t, raw)},
		"client_id":     {clientID},
		"client_secret": {secret},
	}
}

func TestRefreshGrantAuthenticatesClient(t *testing.T) {
	f := newFixture(t, grant.Config{})
	_, first, _, err := f.call(t, http.MethodPost, passwordForm())
	require.NoError(t, err)

	_, _, _, err = f.call(t, http.MethodPost, refreshFormFor(t, first.RefreshToken, "web", "WRONG"))
	requireProtocolError(t, err, "invalid_client", http.StatusUnauthorized)

	_, _, _, err = f.call(t, http.MethodPost, refreshFormFor(t, first.RefreshToken, "ghost", "web-secret"))
	requireProtocolError(t, err, "invalid_client", http.StatusUnauthorized)

	// Nothing was rotated by the failed attempts.
	_, err = f.refresh.GetByHash(f.ctx, hashOf(t, first.RefreshToken))
	require.NoError(t, err)
}

func TestRefreshGrantCannotWidenScope(t *testing.T) {
	f := newFixture(t, grant.Config{})
	_, first, _, err := f.call(t, http.MethodPost, passwordForm())
	require.NoError(t, err)
	require.Equal(t, "read", first.Scope)

	form := refreshFormFor(t, first.RefreshToken, "web", "web-secret")
	form.Set("scope", "read write")
	_, _, _, err = f.call(t, http.MethodPost, form)
	requireProtocolError(t, err, "invalid_scope", http.StatusBadRequest)

	form.Set("scope", "read")
	_, second, status, err := f.call(t, http.MethodPost, form)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "read", second.Scope)
}

func TestRefreshGrantRejectsOtherClientToken(t *testing.T) {
	f := newFixture(t, grant.Config{})
	_, first, _, err := f.call(t, http.MethodPost, passwordForm())
	require.NoError(t, err)

	require.NoError(t, f.clients.Upsert(tenantID, &clients.Client{
		ID:     "evil",
		Secret: "evil-secret",
		Type:   clients.ClientTypeConfidential,
		Scopes: []string{"read", "write"},
	}))
	_, _, _, err = f.call(t, http.MethodPost, refreshFormFor(t, first.RefreshToken, "evil", "evil-secret"))
	requireProtocolError(t, err, "invalid_grant", http.StatusBadRequest)
}
