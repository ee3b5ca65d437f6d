package server

// Route path constants
const (
	RouteOAuth2Token = "/oauth2/token"
	RouteHealth      = "/healthz"
	RouteMetrics     = "/metrics"
)
