// Package api provides the HTTP handlers for the workspace AI gateway:
// completion, chat, image, and combined assistant endpoints.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/miro-workspace/aigateway/internal/config"
	"github.com/miro-workspace/aigateway/internal/dispatch"
	"github.com/miro-workspace/aigateway/internal/httputil"
	"github.com/miro-workspace/aigateway/internal/metrics"
	"github.com/miro-workspace/aigateway/internal/observability"
	"github.com/miro-workspace/aigateway/internal/ratelimit"
	gwerrors "github.com/miro-workspace/aigateway/pkg/errors"
	"github.com/miro-workspace/aigateway/pkg/provider"
	"github.com/miro-workspace/aigateway/pkg/types"
)

// Handler handles HTTP requests for the AI gateway.
type Handler struct {
	cfg      *config.Config
	runtime  config.RuntimeConfig
	limiter  ratelimit.Limiter
	selector *dispatch.ClientSelector
	logger   *observability.Logger

	maxBodyBytes int64
	now          func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(cfg *config.Config, limiter ratelimit.Limiter, selector *dispatch.ClientSelector, logger *observability.Logger) *Handler {
	maxBody := cfg.Server.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = httputil.DefaultMaxBodyBytes
	}
	return &Handler{
		cfg:          cfg,
		runtime:      config.BuildRuntime(cfg.AI),
		limiter:      limiter,
		selector:     selector,
		logger:       logger,
		maxBodyBytes: maxBody,
		now:          time.Now,
	}
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// gate applies the rate limiter. It returns false after writing the 429
// response when the caller is over quota. The gate runs before the body is
// read: parsing is work worth shedding, and a throttled caller learns
// nothing about validation. Store failures fail open with a warning.
func (h *Handler) gate(w http.ResponseWriter, r *http.Request) bool {
	key := ratelimit.CallerKey(r)
	limited, err := h.limiter.CheckAndConsume(r.Context(), key, h.now())
	if err != nil {
		h.logger.WithRequestID(r.Context()).RedactedWarn("rate limit store unavailable, allowing request", "error", err)
		return true
	}
	if limited {
		metrics.RateLimitedTotal.WithLabelValues(ratelimit.KeyClass(key)).Inc()
		h.writeError(w, gwerrors.NewRateLimitError("Rate limit exceeded"))
		return false
	}
	return true
}

// decodeBody reads the (size-limited) request body into dst. Malformed
// JSON and type-mismatched fields both produce a 400; unknown fields are
// ignored.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := httputil.ReadLimitedBody(r.Body, h.maxBodyBytes)
	defer func() { _ = r.Body.Close() }()
	if err != nil {
		h.writeError(w, gwerrors.NewInvalidRequestError("Invalid request body"))
		return false
	}

	if !json.Valid(body) {
		h.writeError(w, gwerrors.NewInvalidRequestError("Invalid JSON body"))
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		h.writeError(w, gwerrors.NewInvalidRequestError("Invalid request body"))
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	gwErr, ok := err.(*gwerrors.GatewayError)
	if !ok {
		gwErr = gwerrors.NewInternalError("Internal server error")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(gwErr.HTTPStatusCode())
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{
			Message: gwErr.Message,
			Type:    gwErr.Type,
		},
	})
}

// providerFailure logs the detailed upstream error and returns the generic
// client-facing provider error. Upstream detail never reaches callers.
func (h *Handler) providerFailure(ctx context.Context, providerName, operation string, err error) *gwerrors.GatewayError {
	h.logger.WithRequestID(ctx).RedactedError("provider call failed",
		"provider", providerName,
		"operation", operation,
		"error", err,
	)
	return gwerrors.NewProviderError(providerName, "AI provider error")
}

func (h *Handler) chatCompletion(ctx context.Context, client provider.ChatProvider, input *types.ChatCompletionInput) (*types.ChatCompletionResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, h.providerTimeout())
	defer cancel()

	start := time.Now()
	resp, err := client.CreateChatCompletion(callCtx, input)
	metrics.ObserveProviderCall(client.Name(), "chat_completion", start, err)
	return resp, err
}

func (h *Handler) generateCompletion(ctx context.Context, client provider.ChatProvider, model, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, h.providerTimeout())
	defer cancel()

	start := time.Now()
	text, err := provider.GenerateCompletion(callCtx, client, model, prompt)
	metrics.ObserveProviderCall(client.Name(), "completion", start, err)
	return text, err
}

func (h *Handler) generateImages(ctx context.Context, client provider.ImageProvider, params *types.ImageParams) ([]types.ImageResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, h.providerTimeout())
	defer cancel()

	start := time.Now()
	images, err := client.GenerateImages(callCtx, params)
	metrics.ObserveProviderCall(client.Name(), "image_generation", start, err)
	return images, err
}

func (h *Handler) providerTimeout() time.Duration {
	if h.cfg.AI.Timeout > 0 {
		return h.cfg.AI.Timeout
	}
	return 30 * time.Second
}
