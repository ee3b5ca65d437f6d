package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-token-server/internal/errors"
	"github.com/jrsteele09/go-token-server/issuance"
	"github.com/jrsteele09/go-token-server/oauthmodel"
	"github.com/jrsteele09/go-token-server/tenants"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeText = "text/plain; charset=utf-8"
)

// Token serves the OAuth2 token endpoint for the tenant addressed by the host.
func (s *Server) Token() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		tenant, err := s.tenantFromHost(r.Host)
		if err != nil {
			writeJSONError(w, "invalid_request", "unknown tenant", http.StatusBadRequest)
			return
		}
		if err := r.ParseForm(); err != nil {
			writeJSONError(w, "invalid_request", "malformed form body", http.StatusBadRequest)
			return
		}

		params := r.PostForm
		if r.Method == http.MethodGet {
			params = r.URL.Query()
		}
		req := issuance.GrantRequest{
			URI:     requestURI(r),
			Method:  r.Method,
			Headers: r.Header.Clone(),
			Params:  params,
		}

		ctx := tenants.WithTenantID(r.Context(), tenant.ID)
		resp, err := s.orchestrator.CreateTokenResponse(ctx, req)
		if err != nil {
			log.Err(err).
				Str("tenant", tenant.ID).
				Str("grant_type", string(req.GrantType())).
				Str("client", params.Get(oauthmodel.ParamClientID)).
				Msg("token request failed")
			writeJSONError(w, "server_error", "internal server error", http.StatusInternalServerError)
			s.metrics.ObserveTokenResponse(string(req.GrantType()), http.StatusInternalServerError)
			return
		}
		writeTokenResponse(w, resp)
	}
}

// writeTokenResponse writes resp as is. Bodies without a content type are
// the plain string error bodies legacy clients expect. Location is only
// sent for created tokens.
func writeTokenResponse(w http.ResponseWriter, resp issuance.TokenResponse) {
	for k, vs := range resp.Headers {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	if resp.Status == http.StatusCreated && resp.URI != "" && w.Header().Get("Location") == "" {
		w.Header().Set("Location", resp.URI)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", contentTypeText)
	}
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(resp.Status)
	_, _ = w.Write([]byte(resp.Body))
}

func writeJSONError(w http.ResponseWriter, code, description string, status int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(oauthmodel.ErrorResponse{Error: code, ErrorDescription: description})
}

// requestURI rebuilds the absolute URI of r.
func requestURI(r *http.Request) string {
	return fmt.Sprintf("%s://%s%s", getScheme(r), r.Host, r.URL.RequestURI())
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}

// tenantFromHost maps a sub-domain of the base URL host to a tenant ID. The
// bare base host is the system tenant.
func (s *Server) tenantFromHost(host string) (*tenants.Tenant, error) {
	host = strings.SplitN(host, ":", 2)[0]

	baseHostName := hostOf(s.config.GetBaseURL())

	tenantID := strings.TrimSuffix(host, baseHostName)
	tenantID = strings.Trim(tenantID, ".")
	if tenantID == "" {
		tenantID = s.config.GetSystemTenantID()
	}

	t, err := s.repos.Tenants.Get(tenantID) // verify tenant exists
	if errors.Is(err, apperrors.ErrTenantNotFound) {
		if t, err = s.repos.Tenants.GetByDomain(host); err == nil {
			return t, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("[Server tenantFromHost] tenant %q: %w", tenantID, err)
	}
	return t, nil
}
