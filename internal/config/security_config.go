package config

type SecurityConfig interface {
	GetAllowGetTokenRequest() bool
}

type Security struct {
	s *settings
}

var _ SecurityConfig = Security{}

// GetAllowGetTokenRequest enables the token endpoint for GET requests (query string grants).
func (s Security) GetAllowGetTokenRequest() bool {
	return s.s.AllowGetTokenRequest
}
