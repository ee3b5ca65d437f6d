package issuance

import (
	"maps"
	"net/http"
	"net/url"
	"slices"

	"github.com/jrsteele09/go-token-server/oauthmodel"
)

// GrantRequest is a single token endpoint request. It is treated as a value:
// nothing in this package mutates Params in place.
type GrantRequest struct {
	URI     string // Absolute request URI
	Method  string
	Headers http.Header
	Params  url.Values // Form parameters, may carry a plaintext refresh_token

	// ExtraCredentials holds client authentication resolved before the
	// request reached the orchestrator (e.g. client_id from an upstream
	// gateway). Passed through to the delegate untouched.
	ExtraCredentials map[string]string
}

// GrantType returns the grant_type parameter.
func (r GrantRequest) GrantType() oauthmodel.GrantType {
	return oauthmodel.GrantType(r.Params.Get(oauthmodel.ParamGrantType))
}

// Param returns the first value of key and whether it was present and non-empty.
func (r GrantRequest) Param(key string) (string, bool) {
	v := r.Params.Get(key)
	return v, v != ""
}

// WithParam returns a copy of the request with key set to value. The
// receiver's parameters are never modified.
func (r GrantRequest) WithParam(key, value string) GrantRequest {
	params := cloneValues(r.Params)
	params.Set(key, value)
	r.Params = params
	return r
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+1)
	for k, vs := range v {
		out[k] = slices.Clone(vs)
	}
	return out
}

// DelegateRequest is everything the grant delegate needs to mint a token.
type DelegateRequest struct {
	URI              string
	Method           string
	Body             url.Values
	Headers          http.Header
	ExtraCredentials map[string]string
}

func newDelegateRequest(r GrantRequest) DelegateRequest {
	return DelegateRequest{
		URI:              r.URI,
		Method:           r.Method,
		Body:             cloneValues(r.Params),
		Headers:          r.Headers.Clone(),
		ExtraCredentials: maps.Clone(r.ExtraCredentials),
	}
}
