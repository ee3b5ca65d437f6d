// Package grant implements the token grant delegate on top of go-oauth2. It
// owns grant validation, client authentication, password checks and token
// minting; storage goes through hashed token repositories.
package grant

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/go-oauth2/oauth2/v4"
	oauthErrors "github.com/go-oauth2/oauth2/v4/errors"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	"github.com/jrsteele09/go-token-server/clients"
	"github.com/jrsteele09/go-token-server/internal/config"
	apperrors "github.com/jrsteele09/go-token-server/internal/errors"
	"github.com/jrsteele09/go-token-server/issuance"
	"github.com/jrsteele09/go-token-server/oauthmodel"
	"github.com/jrsteele09/go-token-server/tenants"
	"github.com/jrsteele09/go-token-server/token/access"
	"github.com/jrsteele09/go-token-server/token/jwt"
	"github.com/jrsteele09/go-token-server/token/refresh"
	"github.com/jrsteele09/go-token-server/users"
	"github.com/rs/zerolog/log"
)

var _ issuance.GrantDelegate = (*Delegate)(nil)

// Repos are the stores the delegate reads and writes.
type Repos struct {
	AccessTokens  access.Repo
	RefreshTokens refresh.Repo
	Clients       clients.Repo
	Users         users.UserRepo
}

// Config controls token minting.
type Config struct {
	AccessTokenExpiry    time.Duration
	AccessTokenFormat    string // config.AccessTokenFormatOpaque or config.AccessTokenFormatJWT
	SigningKey           []byte // HMAC key for JWT access tokens
	SigningKeyID         string
	Issuer               jwt.IssuerFunc
	AllowGetTokenRequest bool
}

// Delegate mints tokens for the password, client_credentials and
// refresh_token grants. Refresh tokens rotate on every use.
type Delegate struct {
	manager  *manage.Manager
	allowGet bool
	clients  *ClientStore
	users    users.UserRepo
}

func New(repos Repos, cfg Config) (*Delegate, error) {
	if cfg.AccessTokenExpiry <= 0 {
		cfg.AccessTokenExpiry = time.Hour
	}

	d := &Delegate{
		allowGet: cfg.AllowGetTokenRequest,
		clients:  NewClientStore(repos.Clients),
		users:    repos.Users,
	}

	manager := manage.NewDefaultManager()
	manager.MapTokenStorage(NewTokenStore(repos.AccessTokens, repos.RefreshTokens))
	manager.MapClientStorage(d.clients)

	switch cfg.AccessTokenFormat {
	case "", config.AccessTokenFormatOpaque:
	case config.AccessTokenFormatJWT:
		if len(cfg.SigningKey) == 0 {
			return nil, apperrors.Wrapf(apperrors.ErrSigningKeyRequired, "[grant New]")
		}
		manager.MapAccessGenerate(jwt.NewAccessGenerate(jwt.NewHMACSigner(cfg.SigningKeyID, cfg.SigningKey), cfg.Issuer))
	default:
		return nil, apperrors.Wrapf(apperrors.ErrUnknownTokenFormat, "[grant New] %q", cfg.AccessTokenFormat)
	}

	// Refresh token lifetimes are left unset here; expiry is checked before
	// a request reaches the manager.
	manager.SetPasswordTokenCfg(&manage.Config{
		AccessTokenExp:    cfg.AccessTokenExpiry,
		IsGenerateRefresh: true,
	})
	manager.SetClientTokenCfg(&manage.Config{
		AccessTokenExp: cfg.AccessTokenExpiry,
	})
	manager.SetRefreshTokenCfg(&manage.RefreshingConfig{
		AccessTokenExp:     cfg.AccessTokenExpiry,
		IsGenerateRefresh:  true,
		IsResetRefreshTime: true,
		IsRemoveAccess:     true,
		IsRemoveRefreshing: true,
	})
	d.manager = manager

	return d, nil
}

// newServer returns a go-oauth2 server for one request. Handlers that need
// the request's client credentials are installed once the request has been
// validated.
func (d *Delegate) newServer() *server.Server {
	srv := server.NewDefaultServer(d.manager)
	srv.SetAllowGetAccessRequest(d.allowGet)
	srv.SetAllowedGrantType(oauth2.PasswordCredentials, oauth2.ClientCredentials, oauth2.Refreshing)
	srv.SetClientInfoHandler(d.clientInfo)
	srv.SetPasswordAuthorizationHandler(d.authorizePassword)
	srv.SetClientScopeHandler(d.checkScope)
	srv.SetRefreshingScopeHandler(d.checkRefreshScope)
	return srv
}

type extraCredentialsKey struct{}

// CreateTokenResponse validates the grant in req and returns the JSON token
// response. Errors are *issuance.AccessDeniedError, *issuance.ProtocolError,
// or unexpected failures.
func (d *Delegate) CreateTokenResponse(ctx context.Context, req issuance.DelegateRequest) (http.Header, string, int, error) {
	if len(req.ExtraCredentials) > 0 {
		ctx = context.WithValue(ctx, extraCredentialsKey{}, req.ExtraCredentials)
	}
	r, err := newHTTPRequest(ctx, req)
	if err != nil {
		return nil, "", 0, apperrors.Wrapf(err, "[Delegate CreateTokenResponse] build request")
	}

	srv := d.newServer()
	gt, tgr, err := srv.ValidationTokenRequest(r)
	if err != nil {
		return nil, "", 0, classify(err)
	}
	srv.SetClientAuthorizedHandler(func(_ string, gt oauth2.GrantType) (bool, error) {
		return d.authorizeClient(ctx, tgr, gt)
	})
	srv.SetRefreshingValidationHandler(func(ti oauth2.TokenInfo) (bool, error) {
		return checkRefreshOwner(tgr, ti)
	})

	ti, err := srv.GetAccessToken(ctx, gt, tgr)
	if err != nil {
		return nil, "", 0, classify(err)
	}

	body, err := json.Marshal(srv.GetTokenData(ti))
	if err != nil {
		return nil, "", 0, apperrors.Wrapf(err, "[Delegate CreateTokenResponse] encode token")
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json;charset=UTF-8")
	headers.Set("Cache-Control", "no-store")
	headers.Set("Pragma", "no-cache")
	return headers, string(body), http.StatusOK, nil
}

func newHTTPRequest(ctx context.Context, req issuance.DelegateRequest) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodPost
	}
	target := req.URI
	if target == "" {
		target = "/"
	}

	var r *http.Request
	var err error
	if method == http.MethodGet {
		u, perr := url.Parse(target)
		if perr != nil {
			return nil, perr
		}
		u.RawQuery = req.Body.Encode()
		r, err = http.NewRequestWithContext(ctx, method, u.String(), nil)
	} else {
		r, err = http.NewRequestWithContext(ctx, method, target, strings.NewReader(req.Body.Encode()))
	}
	if err != nil {
		return nil, err
	}

	if req.Headers != nil {
		r.Header = req.Headers.Clone()
	}
	if method != http.MethodGet {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return r, nil
}

// clientInfo prefers credentials resolved upstream, then the form body,
// then HTTP Basic auth.
func (d *Delegate) clientInfo(r *http.Request) (string, string, error) {
	if creds, ok := r.Context().Value(extraCredentialsKey{}).(map[string]string); ok && creds[oauthmodel.ParamClientID] != "" {
		return creds[oauthmodel.ParamClientID], creds[oauthmodel.ParamClientSecret], nil
	}
	if r.FormValue(oauthmodel.ParamClientID) != "" {
		return server.ClientFormHandler(r)
	}
	return server.ClientBasicHandler(r)
}

// authorizePassword returns "" for unknown users and bad passwords, which the
// server reports as invalid_grant.
func (d *Delegate) authorizePassword(ctx context.Context, clientID, username, password string) (string, error) {
	user, err := d.findUser(username)
	if apperrors.Is(err, apperrors.ErrUserNotFound) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.Wrapf(err, "[Delegate authorizePassword]")
	}
	if !users.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil
	}

	tenantID := tenants.IDFromContext(ctx)
	if err := user.CanLogin(tenantID); err != nil {
		log.Info().Err(err).Str("tenant", tenantID).Str("client", clientID).Str("user", user.ID).Msg("password grant refused")
		return "", oauthErrors.ErrAccessDenied
	}
	return user.ID, nil
}

func (d *Delegate) findUser(username string) (*users.User, error) {
	if d.users == nil {
		return nil, apperrors.ErrUserNotFound
	}
	if strings.Contains(username, "@") {
		return d.users.GetByEmail(username)
	}
	return d.users.GetByUsername(username)
}

func (d *Delegate) checkScope(tgr *oauth2.TokenGenerateRequest) (bool, error) {
	ctx := context.Background()
	if tgr.Request != nil {
		ctx = tgr.Request.Context()
	}
	c, err := d.clients.lookup(ctx, tgr.ClientID)
	if err != nil {
		return false, err
	}
	if c == nil {
		// Unknown clients are rejected as invalid_client by authorizeClient.
		return true, nil
	}
	return c.ValidateScopes(tgr.Scope) == nil, nil
}

// authorizeClient runs for every grant before any token is touched. The
// manager only checks client secrets when it mints from a client ID in the
// request, so refresh grants are authenticated here.
func (d *Delegate) authorizeClient(ctx context.Context, tgr *oauth2.TokenGenerateRequest, gt oauth2.GrantType) (bool, error) {
	c, err := d.clients.lookup(ctx, tgr.ClientID)
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, oauthErrors.ErrInvalidClient
	}
	if gt == oauth2.Refreshing && !secretMatches(c, tgr.ClientSecret) {
		return false, oauthErrors.ErrInvalidClient
	}
	return c.AllowsGrant(gt.String()), nil
}

func secretMatches(c *clients.Client, secret string) bool {
	if c.Secret == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(c.Secret), []byte(secret)) == 1
}

// checkRefreshOwner rejects refresh tokens issued to another client.
func checkRefreshOwner(tgr *oauth2.TokenGenerateRequest, ti oauth2.TokenInfo) (bool, error) {
	if ti.GetClientID() != tgr.ClientID {
		return false, oauthErrors.ErrInvalidGrant
	}
	return true, nil
}

// checkRefreshScope allows a refresh to narrow the original scope, never to
// widen it past the old grant or the client's own scopes.
func (d *Delegate) checkRefreshScope(tgr *oauth2.TokenGenerateRequest, oldScope string) (bool, error) {
	granted := strings.Fields(oldScope)
	for _, scope := range strings.Fields(tgr.Scope) {
		if !slices.Contains(granted, scope) {
			return false, nil
		}
	}
	return d.checkScope(tgr)
}
