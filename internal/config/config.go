// Package config loads the gateway configuration from YAML with
// environment variable expansion. Configuration is immutable after load.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/miro-workspace/aigateway/internal/dispatch"
	"github.com/miro-workspace/aigateway/internal/ratelimit"
	"github.com/miro-workspace/aigateway/pkg/provider"
)

// Config represents the complete gateway configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	AI        AIConfig        `yaml:"ai"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	CORS      CORSConfig      `yaml:"cors"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// ModelAliases is the caller-facing alias table.
type ModelAliases struct {
	Fast     string `yaml:"fast"`
	Balanced string `yaml:"balanced"`
	Creative string `yaml:"creative"`
}

// AIConfig selects and parameterizes the AI provider.
type AIConfig struct {
	Provider   string        `yaml:"provider"` // mock, openai, anthropic, google, local
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	Models     ModelAliases  `yaml:"models"`
	ImageModel string        `yaml:"image_model"`
	Timeout    time.Duration `yaml:"timeout"`

	// Catalog overrides the runtime provider catalog advertised on
	// GET /ai/config; unset fields keep built-in defaults.
	Catalog map[string]CatalogOverride `yaml:"catalog"`
}

// CatalogOverride customizes one runtime catalog entry.
type CatalogOverride struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	Fast       string `yaml:"fast"`
	Balanced   string `yaml:"balanced"`
	Creative   string `yaml:"creative"`
	ImageModel string `yaml:"image_model"`
}

// RateLimitConfig defines the fixed-window limiter parameters.
type RateLimitConfig struct {
	Window      time.Duration `yaml:"window"`
	MaxRequests int           `yaml:"max_requests"`
	RedisAddr   string        `yaml:"redis_addr"` // empty: in-memory store
}

// AuthConfig holds the session-token verification secret. Empty disables
// identity extraction; all callers are then keyed by address.
type AuthConfig struct {
	SessionSecret string `yaml:"session_secret"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// CORSConfig contains CORS settings for browser clients.
type CORSConfig struct {
	Enabled          bool     `yaml:"enabled"`
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAge           int      `yaml:"max_age"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8787,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
			MaxBodyBytes: 2 * 1024 * 1024,
		},
		AI: AIConfig{
			Provider: string(provider.KindMock),
			BaseURL:  "https://api.openai.com/v1",
			Models: ModelAliases{
				Fast:     "gpt-4o-mini",
				Balanced: "gpt-4o",
				Creative: "gpt-4.1-mini",
			},
			ImageModel: "gpt-image-1",
			Timeout:    30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Window:      ratelimit.DefaultWindow,
			MaxRequests: ratelimit.DefaultMaxRequests,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		CORS: CORSConfig{
			Enabled: false,
			MaxAge:  600,
		},
	}
}

// LoadFromFile reads and parses a YAML configuration file. Environment
// variables in the format ${VAR_NAME} are expanded before parsing.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	kind := provider.ParseKind(c.AI.Provider)
	if (kind == provider.KindOpenAI || kind == provider.KindLocal) && c.AI.APIKey == "" {
		return fmt.Errorf("ai.api_key is required when ai.provider is %q", c.AI.Provider)
	}

	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive")
	}
	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("rate_limit.max_requests must be positive")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	return nil
}

// ProviderKind returns the parsed provider kind.
func (c *Config) ProviderKind() provider.Kind {
	return provider.ParseKind(c.AI.Provider)
}

// Ready reports whether the configured provider can serve requests.
func (c *Config) Ready() bool {
	return c.ProviderKind() == provider.KindMock || c.AI.APIKey != ""
}

// AliasTable converts the configured aliases to the dispatcher's table.
func (c *Config) AliasTable() dispatch.AliasTable {
	return dispatch.AliasTable{
		Fast:     c.AI.Models.Fast,
		Balanced: c.AI.Models.Balanced,
		Creative: c.AI.Models.Creative,
	}
}
