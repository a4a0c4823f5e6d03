package main

import (
	"net/http"

	"github.com/miro-workspace/aigateway/internal/auth"
	"github.com/miro-workspace/aigateway/internal/config"
	"github.com/miro-workspace/aigateway/internal/metrics"
	"github.com/miro-workspace/aigateway/internal/observability"
)

// applyMiddleware wraps the router. Order matters: CORS answers preflight
// before anything else runs, the request ID is assigned before metrics and
// identity so both can log it, and identity runs last so handlers see the
// caller's user ID in the request context.
func applyMiddleware(mux *http.ServeMux, cfg *config.Config) http.Handler {
	var handler http.Handler = mux

	handler = auth.IdentityMiddleware(cfg.Auth.SessionSecret)(handler)
	handler = metrics.Middleware(handler)
	handler = observability.RequestIDMiddleware(handler)
	handler = corsMiddleware(cfg.CORS, handler)

	return handler
}
