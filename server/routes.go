package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	tokenHandler := ChainMiddleware(s.Token(), s.APIMiddleware()...)
	s.RegisterRouteHandler("POST "+RouteOAuth2Token, tokenHandler)
	s.RegisterRouteHandler("OPTIONS "+RouteOAuth2Token, tokenHandler)
	if s.config.GetAllowGetTokenRequest() {
		s.RegisterRouteHandler("GET "+RouteOAuth2Token, tokenHandler)
	}

	s.RegisterRouteFunc("GET "+RouteHealth, s.Health())
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
}

// Health reports that the process is serving requests.
func (s *Server) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
