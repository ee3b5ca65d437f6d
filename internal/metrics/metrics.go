package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records token endpoint outcomes.
type Metrics struct {
	TokenResponses       *prometheus.CounterVec
	ExpiredRefreshTokens *prometheus.CounterVec
}

// New creates the token metrics and registers them on reg (or the default registerer if nil).
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		TokenResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_token_responses_total",
			Help: "Token endpoint responses by grant type and HTTP status",
		}, []string{"grant_type", "status"}),
		ExpiredRefreshTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_expired_refresh_tokens_total",
			Help: "Refresh grants rejected because the stored refresh token had expired",
		}, []string{"tenant"}),
	}
	var err error
	if m.TokenResponses, err = register(reg, m.TokenResponses); err != nil {
		return nil, err
	}
	if m.ExpiredRefreshTokens, err = register(reg, m.ExpiredRefreshTokens); err != nil {
		return nil, err
	}
	return m, nil
}

// register returns the collector already registered under the same descriptor, if any.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing, nil
		}
	}
	var zero T
	return zero, err
}

func (m *Metrics) ObserveTokenResponse(grantType string, status int) {
	if grantType == "" {
		grantType = "none"
	}
	m.TokenResponses.WithLabelValues(grantType, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ObserveExpiredRefreshToken(tenantID string) {
	m.ExpiredRefreshTokens.WithLabelValues(tenantID).Inc()
}
