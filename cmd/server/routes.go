package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/miro-workspace/aigateway/internal/api"
	"github.com/miro-workspace/aigateway/internal/config"
)

func newRouter(handler *api.Handler, cfg *config.Config) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.HandleFunc("GET /ai/config", handler.AIConfig)

	// Legacy endpoints kept for older workspace clients.
	mux.HandleFunc("POST /ai/complete", handler.Complete)
	mux.HandleFunc("POST /ai/chat", handler.Chat)

	mux.HandleFunc("POST /v2/ai/complete", handler.CompleteV2)
	mux.HandleFunc("POST /v2/ai/chat", handler.ChatV2)
	mux.HandleFunc("POST /v2/ai/image", handler.ImageV2)
	mux.HandleFunc("POST /v2/ai/assistant", handler.AssistantV2)

	if cfg.Metrics.Enabled {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, promhttp.Handler())
	}

	return mux
}
