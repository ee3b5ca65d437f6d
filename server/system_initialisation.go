package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-token-server/clients"
	apperrors "github.com/jrsteele09/go-token-server/internal/errors"
	"github.com/jrsteele09/go-token-server/oauthmodel"
	"github.com/jrsteele09/go-token-server/tenants"
	"github.com/jrsteele09/go-token-server/users"
	"github.com/rs/zerolog/log"
)

// InitialiseSystem creates the system tenant and the optional seed client
// and user. Existing records are left untouched.
func (s *Server) InitialiseSystem(ctx context.Context) error {
	systemTenant, err := s.initialiseSystemTenant()
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to bootstrap system tenant: %w", err)
	}

	if err := s.createSeedClient(ctx, systemTenant.ID); err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to bootstrap seed client: %w", err)
	}

	generatedPassword, err := s.createSeedUser(ctx, systemTenant.ID)
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to bootstrap seed user: %w", err)
	}

	if generatedPassword != "" {
		email, _ := s.config.GetSeedUser()
		log.Info().
			Str("tenant", systemTenant.ID).
			Str("issuer", systemTenant.Issuer).
			Str("email", email).
			Str("password", generatedPassword).
			Msg("seed user created with a generated password")
	}
	return nil
}

// initialiseSystemTenant creates the system tenant if it doesn't exist
func (s *Server) initialiseSystemTenant() (*tenants.Tenant, error) {
	systemTenantID := s.config.GetSystemTenantID()

	existing, err := s.repos.Tenants.Get(systemTenantID)
	if err == nil {
		log.Debug().Str("tenant", existing.ID).Msg("system tenant already exists")
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrTenantNotFound) {
		return nil, fmt.Errorf("[server initialiseSystemTenant] failed to get system tenant: %w", err)
	}

	baseURL := s.config.GetBaseURL()
	systemTenant := &tenants.Tenant{
		ID:     systemTenantID,
		Name:   "System",
		Domain: hostOf(baseURL),
		Issuer: baseURL,
	}
	if err := s.repos.Tenants.Upsert(systemTenant); err != nil {
		return nil, fmt.Errorf("[server initialiseSystemTenant] failed to create system tenant: %w", err)
	}
	return systemTenant, nil
}

func (s *Server) createSeedClient(_ context.Context, tenantID string) error {
	clientID, secret, scopes := s.config.GetSeedClient()
	if clientID == "" {
		return nil
	}
	if existing, err := s.repos.Clients.Get(tenantID, clientID); err == nil && existing != nil {
		return nil
	}

	clientType := clients.ClientTypeConfidential
	if secret == "" {
		clientType = clients.ClientTypePublic
	}
	seed := &clients.Client{
		ID:          clientID,
		Type:        clientType,
		Description: "Seed client",
		Secret:      secret,
		TenantID:    tenantID,
		Scopes:      scopes,
		GrantTypes: []string{
			string(oauthmodel.PasswordGrant),
			string(oauthmodel.ClientCredentialsGrant),
			string(oauthmodel.RefreshTokenGrant),
		},
	}
	if err := s.repos.Clients.Upsert(tenantID, seed); err != nil {
		return fmt.Errorf("[server createSeedClient] failed to create seed client: %w", err)
	}
	return nil
}

// createSeedUser returns the password it generated, empty if none was needed.
func (s *Server) createSeedUser(_ context.Context, tenantID string) (generatedPassword string, err error) {
	email, password := s.config.GetSeedUser()
	if email == "" {
		return "", nil
	}
	if existing, err := s.repos.Users.GetByEmail(email); err == nil && existing != nil {
		return "", nil
	}

	if password == "" {
		if password, err = generateRandomString(16); err != nil {
			return "", fmt.Errorf("[server createSeedUser] failed to generate password: %w", err)
		}
		generatedPassword = password
	} else if err := users.ValidatePasswordStrength(password); err != nil {
		return "", fmt.Errorf("[server createSeedUser] seed password rejected: %w", err)
	}

	passwordHash, err := users.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("[server createSeedUser] failed to hash password: %w", err)
	}

	seed := &users.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     strings.SplitN(email, "@", 2)[0],
		PasswordHash: passwordHash,
		DateJoined:   time.Now(),
		TenantIDs:    []string{tenantID},
		Verified:     true,
	}
	if err := s.repos.Users.Upsert(seed); err != nil {
		return "", fmt.Errorf("[server createSeedUser] failed to create seed user: %w", err)
	}
	return generatedPassword, nil
}

func generateRandomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// hostOf strips the scheme, port and path from a URL.
// Example: "https://auth.example.com:8443/path" -> "auth.example.com"
func hostOf(baseURL string) string {
	domain := strings.ReplaceAll(strings.ReplaceAll(baseURL, "https://", ""), "http://", "")
	domain = strings.SplitN(domain, "/", 2)[0]
	return strings.SplitN(domain, ":", 2)[0]
}
