// Package main is the entry point for the workspace AI gateway server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/miro-workspace/aigateway/internal/api"
	"github.com/miro-workspace/aigateway/internal/config"
	"github.com/miro-workspace/aigateway/internal/dispatch"
	"github.com/miro-workspace/aigateway/internal/observability"
	"github.com/miro-workspace/aigateway/internal/ratelimit"
	"github.com/miro-workspace/aigateway/pkg/provider"
	"github.com/miro-workspace/aigateway/providers/mock"
	"github.com/miro-workspace/aigateway/providers/openai"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LoggerConfig{
		Level:      observability.ParseLevel(cfg.Logging.Level),
		Output:     os.Stdout,
		JSONFormat: cfg.Logging.Format != "text",
	}, observability.NewRedactor())

	logger.Slog().Info("starting AI gateway", "provider", cfg.AI.Provider, "port", cfg.Server.Port)

	limiter := buildLimiter(cfg, logger)
	selector := buildSelector(cfg)
	handler := api.NewHandler(cfg, limiter, selector, logger)

	mux := newRouter(handler, cfg)
	httpHandler := applyMiddleware(mux, cfg)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Slog().Info("server listening", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Slog().Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Slog().Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Slog().Error("server shutdown error", "error", err)
	}

	logger.Slog().Info("server stopped")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.DefaultConfig()
		return cfg, cfg.Validate()
	}
	return config.LoadFromFile(path)
}

func buildLimiter(cfg *config.Config, logger *observability.Logger) ratelimit.Limiter {
	limiterCfg := ratelimit.Config{
		Window:      cfg.RateLimit.Window,
		MaxRequests: cfg.RateLimit.MaxRequests,
	}

	if cfg.RateLimit.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RateLimit.RedisAddr})
		logger.Slog().Info("rate limiter using redis", "addr", cfg.RateLimit.RedisAddr)
		return ratelimit.NewRedisLimiter(client, limiterCfg)
	}

	store := ratelimit.NewMemoryStore(cfg.RateLimit.Window)
	return ratelimit.NewFixedWindowLimiter(store, limiterCfg)
}

// buildSelector wires the base chat and image clients. Chat goes to the
// real backend only for the key-bearing kinds; the image path falls back
// to mock whenever no key is configured.
func buildSelector(cfg *config.Config) *dispatch.ClientSelector {
	kind := cfg.ProviderKind()

	var chat provider.ChatProvider
	if kind.SupportsKeySubstitution() && cfg.AI.APIKey != "" {
		chat = openai.New(
			openai.WithBaseURL(cfg.AI.BaseURL),
			openai.WithAPIKey(cfg.AI.APIKey),
			openai.WithTimeout(cfg.AI.Timeout),
		)
	} else {
		chat = mock.NewChatProvider()
	}

	var image provider.ImageProvider
	if cfg.AI.APIKey != "" {
		image = openai.New(
			openai.WithBaseURL(cfg.AI.BaseURL),
			openai.WithAPIKey(cfg.AI.APIKey),
			openai.WithTimeout(cfg.AI.Timeout),
		)
	} else {
		image = mock.NewImageProvider()
	}

	return dispatch.NewClientSelector(kind, cfg.AI.BaseURL, cfg.AI.Timeout, chat, image)
}
