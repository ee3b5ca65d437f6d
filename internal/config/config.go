package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	SecurityConfig
	StorageConfig
	SeedConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetBaseURL() string
	GetSystemTenantID() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// settings holds the raw values parsed from the environment.
type settings struct {
	Port           string `env:"PORT"             envDefault:"8080"`
	AppName        string `env:"APP_NAME"         envDefault:"Go Token Server"`
	Env            string `env:"ENV"              envDefault:"DEV"`
	LogLevel       string `env:"LOG_LEVEL"        envDefault:"info"`
	BaseURL        string `env:"BASE_URL"         envDefault:"http://localhost:8080"`
	SystemTenantID string `env:"SYSTEM_TENANT_ID" envDefault:"system"`

	RefreshTokenExpireSeconds int    `env:"REFRESH_TOKEN_EXPIRE_SECONDS" envDefault:"0"`
	AccessTokenExpireSeconds  int    `env:"ACCESS_TOKEN_EXPIRE_SECONDS"  envDefault:"3600"`
	AccessTokenFormat         string `env:"ACCESS_TOKEN_FORMAT"          envDefault:"opaque"`
	AccessTokenSigningKey     string `env:"ACCESS_TOKEN_SIGNING_KEY"`

	AllowGetTokenRequest bool `env:"ALLOW_GET_TOKEN_REQUEST" envDefault:"false"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"memory"`
	SQLitePath  string `env:"SQLITE_PATH"  envDefault:"./data/tokens.db"`
	RedisAddr   string `env:"REDIS_ADDR"   envDefault:"localhost:6379"`
	RedisDB     int    `env:"REDIS_DB"     envDefault:"0"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	SeedClientID     string   `env:"SEED_CLIENT_ID"`
	SeedClientSecret string   `env:"SEED_CLIENT_SECRET"`
	SeedClientScopes []string `env:"SEED_CLIENT_SCOPES" envSeparator:"," envDefault:"read,write"`
	SeedUserEmail    string   `env:"SEED_USER_EMAIL"`
	SeedUserPassword string   `env:"SEED_USER_PASSWORD"`
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	Security
	Storage
	Seed
}

// New reads the configuration from the process environment.
func New() (Config, error) {
	var s settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("[config New] failed to parse environment: %w", err)
	}
	return newMainConfig(&s), nil
}

// NewWithEnvironment reads the configuration from the given variables instead of the process environment.
func NewWithEnvironment(environment map[string]string) (Config, error) {
	var s settings
	if err := env.ParseWithOptions(&s, env.Options{Environment: environment}); err != nil {
		return nil, fmt.Errorf("[config NewWithEnvironment] failed to parse environment: %w", err)
	}
	return newMainConfig(&s), nil
}

func newMainConfig(s *settings) mainConfig {
	return mainConfig{
		EnvVars:  EnvVars{s: s},
		Cors:     Cors{s: s},
		OAuth:    OAuth{s: s},
		Security: Security{s: s},
		Storage:  Storage{s: s},
		Seed:     Seed{s: s},
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
