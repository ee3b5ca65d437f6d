package config

import (
	"strings"
)

type EnvVars struct {
	s *settings
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.s.Port
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.s.AppName
}

func (e EnvVars) GetEnv() string {
	if e.s.Env == "" {
		return "DEV"
	}
	return strings.ToUpper(e.s.Env)
}

func (e EnvVars) GetLogLevel() string {
	return e.s.LogLevel
}

// GetBaseURL returns the base URL of the service (e.g., "https://auth.example.com").
// Tenants are addressed as sub-domains of its host.
func (e EnvVars) GetBaseURL() string {
	return e.s.BaseURL
}

func (e EnvVars) GetSystemTenantID() string {
	return e.s.SystemTenantID
}
