package issuance

import (
	"context"
	"net/http"

	apperrors "github.com/jrsteele09/go-token-server/internal/errors"
	"github.com/jrsteele09/go-token-server/oauthmodel"
	"github.com/jrsteele09/go-token-server/tenants"
	"github.com/jrsteele09/go-token-server/token"
)

// GrantDelegate validates a grant and mints tokens. Errors it returns are
// expected to be *AccessDeniedError or *ProtocolError; anything else is
// treated as unexpected.
type GrantDelegate interface {
	CreateTokenResponse(ctx context.Context, req DelegateRequest) (http.Header, string, int, error)
}

// Observer receives the outcome of each request. Either field may be nil.
type Observer struct {
	TokenResponse       func(grantType string, status int)
	ExpiredRefreshToken func(tenantID string)
}

// Orchestrator runs a grant request through the expiry check and the
// delegate, producing a TokenResponse for every protocol-level outcome.
type Orchestrator struct {
	pre      *Preprocessor
	delegate GrantDelegate
	observer Observer
}

type OrchestratorOption func(*Orchestrator)

func WithObserver(o Observer) OrchestratorOption {
	return func(orch *Orchestrator) {
		orch.observer = o
	}
}

func NewOrchestrator(pre *Preprocessor, delegate GrantDelegate, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		pre:      pre,
		delegate: delegate,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CreateTokenResponse handles one token request. The returned error is
// non-nil only for failures that are not OAuth2 protocol errors.
func (o *Orchestrator) CreateTokenResponse(ctx context.Context, req GrantRequest) (TokenResponse, error) {
	resp, err := o.createTokenResponse(ctx, req)
	if err == nil {
		o.observe(req, resp.Status)
	}
	return resp, err
}

func (o *Orchestrator) createTokenResponse(ctx context.Context, req GrantRequest) (TokenResponse, error) {
	if o.pre != nil {
		expired, err := o.pre.Check(ctx, req)
		if err != nil {
			return TokenResponse{}, err
		}
		if expired != nil {
			if o.observer.ExpiredRefreshToken != nil {
				o.observer.ExpiredRefreshToken(tenants.IDFromContext(ctx))
			}
			return *expired, nil
		}
	}

	delegateReq, err := hashedRequest(req)
	if err != nil {
		return TokenResponse{}, err
	}

	headers, body, status, err := o.delegate.CreateTokenResponse(ctx, newDelegateRequest(delegateReq))
	if err != nil {
		return TranslateError(req.URI, err)
	}

	if headers == nil {
		headers = http.Header{}
	}
	if req.Method == http.MethodPost && status == http.StatusOK {
		status = http.StatusCreated
	}
	return TokenResponse{
		URI:     headers.Get("Location"),
		Headers: headers,
		Body:    body,
		Status:  status,
	}, nil
}

// hashedRequest swaps a plaintext refresh_token for its digest, which is how
// the delegate's storage keys refresh tokens.
func hashedRequest(req GrantRequest) (GrantRequest, error) {
	raw, ok := req.Param(oauthmodel.ParamRefreshToken)
	if !ok {
		return req, nil
	}
	hash, err := token.Hash(raw)
	if err != nil {
		return req, apperrors.Wrapf(err, "[Orchestrator CreateTokenResponse] hash refresh token")
	}
	return req.WithParam(oauthmodel.ParamRefreshToken, hash), nil
}

func (o *Orchestrator) observe(req GrantRequest, status int) {
	if o.observer.TokenResponse != nil {
		o.observer.TokenResponse(string(req.GrantType()), status)
	}
}
