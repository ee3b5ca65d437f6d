package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-token-server/clients"
	"github.com/jrsteele09/go-token-server/grant"
	"github.com/jrsteele09/go-token-server/internal/config"
	"github.com/jrsteele09/go-token-server/internal/metrics"
	"github.com/jrsteele09/go-token-server/issuance"
	"github.com/jrsteele09/go-token-server/tenants"
	"github.com/jrsteele09/go-token-server/token/access"
	"github.com/jrsteele09/go-token-server/token/refresh"
	"github.com/jrsteele09/go-token-server/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

// Repos are the stores behind the token endpoint.
type Repos struct {
	Tenants       tenants.Repo
	Clients       clients.Repo
	Users         users.UserRepo
	AccessTokens  access.Repo
	RefreshTokens refresh.Repo
}

type Server struct {
	env          string // Environment (e.g., "DEV", "PROD")
	mux          *http.ServeMux
	routes       []string
	config       config.Config
	repos        Repos
	orchestrator *issuance.Orchestrator
	registry     *prometheus.Registry
	metrics      *metrics.Metrics
}

func New(config config.Config, repos Repos) (*Server, error) {
	s := &Server{
		env:      config.GetEnv(),
		mux:      http.NewServeMux(),
		config:   config,
		repos:    repos,
		registry: prometheus.NewRegistry(),
	}
	s.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m, err := metrics.New(s.registry)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to register metrics: %w", err)
	}
	s.metrics = m

	// Bootstrap: ensure the system tenant and any seed client/user exist
	if err := s.InitialiseSystem(context.Background()); err != nil {
		return nil, fmt.Errorf("[Server New] Failed to initialise the system: %w", err)
	}

	delegate, err := grant.New(grant.Repos{
		AccessTokens:  repos.AccessTokens,
		RefreshTokens: repos.RefreshTokens,
		Clients:       repos.Clients,
		Users:         repos.Users,
	}, grant.Config{
		AccessTokenExpiry:    config.GetAccessTokenExpiry(),
		AccessTokenFormat:    config.GetAccessTokenFormat(),
		SigningKey:           config.GetAccessTokenSigningKey(),
		SigningKeyID:         config.GetAppName(),
		Issuer:               s.issuerFor,
		AllowGetTokenRequest: config.GetAllowGetTokenRequest(),
	})
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create grant delegate: %w", err)
	}

	pre := issuance.NewPreprocessor(repos.RefreshTokens,
		refresh.NewPolicy(config.GetRefreshTokenExpiry()),
		issuance.WithTenantTTL(s.tenantRefreshTTL),
	)
	s.orchestrator = issuance.NewOrchestrator(pre, delegate, issuance.WithObserver(issuance.Observer{
		TokenResponse:       s.metrics.ObserveTokenResponse,
		ExpiredRefreshToken: s.metrics.ObserveExpiredRefreshToken,
	}))

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = gray
	}
	log.Info().Msgf("[%-19s] %s", color+paddedMethod+resetColor, path)
}

// tenantRefreshTTL returns the tenant's refresh token TTL override, 0 if none.
func (s *Server) tenantRefreshTTL(tenantID string) time.Duration {
	t, err := s.repos.Tenants.Get(tenantID)
	if err != nil {
		return 0
	}
	return t.RefreshTTL(0)
}

// issuerFor returns the JWT issuer for a tenant, falling back to the base URL.
func (s *Server) issuerFor(tenantID string) string {
	if t, err := s.repos.Tenants.Get(tenantID); err == nil && t.Issuer != "" {
		return t.Issuer
	}
	return s.config.GetBaseURL()
}
