package config

type SeedConfig interface {
	GetSeedClient() (clientID, secret string, scopes []string)
	GetSeedUser() (email, password string)
}

// Seed holds the optional client and user created at start-up.
type Seed struct {
	s *settings
}

var _ SeedConfig = Seed{}

func (s Seed) GetSeedClient() (string, string, []string) {
	return s.s.SeedClientID, s.s.SeedClientSecret, s.s.SeedClientScopes
}

func (s Seed) GetSeedUser() (string, string) {
	return s.s.SeedUserEmail, s.s.SeedUserPassword
}
