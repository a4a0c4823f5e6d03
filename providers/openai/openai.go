// Package openai provides the OpenAI-compatible provider adapter. It covers
// both the hosted OpenAI API and any endpoint speaking the same protocol
// (the gateway's "local" kind), so it is the adapter BYOK requests are
// bound to.
package openai

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/miro-workspace/aigateway/internal/httputil"
	gwerrors "github.com/miro-workspace/aigateway/pkg/errors"
	"github.com/miro-workspace/aigateway/pkg/provider"
	"github.com/miro-workspace/aigateway/pkg/types"
)

const (
	// ProviderName is the identifier for this provider.
	ProviderName = "openai"

	// DefaultBaseURL is the default OpenAI API endpoint.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultTimeout bounds a single provider call.
	DefaultTimeout = 30 * time.Second
)

// Provider implements the OpenAI-compatible chat and image adapters.
type Provider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	headers    map[string]string
}

// New creates a new OpenAI provider with the given options.
func New(opts ...Option) *Provider {
	p := &Provider{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		headers:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewFromConfig creates a provider from a Config struct.
func NewFromConfig(cfg provider.Config) *Provider {
	opts := []Option{
		WithAPIKey(cfg.APIKey),
		WithBaseURL(cfg.BaseURL),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, WithTimeout(cfg.Timeout))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, WithHTTPClient(cfg.HTTPClient))
	}
	return New(opts...)
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return ProviderName
}

// BaseURL returns the configured endpoint base.
func (p *Provider) BaseURL() string {
	return p.baseURL
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireChatRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type wireChatResponse struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int         `json:"index"`
		Message wireMessage `json:"message"`
		Finish  string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// CreateChatCompletion sends a chat completion request to the upstream API.
func (p *Provider) CreateChatCompletion(ctx context.Context, input *types.ChatCompletionInput) (*types.ChatCompletionResponse, error) {
	req := wireChatRequest{
		Model:       input.Model,
		Messages:    toWireMessages(input.Messages),
		Temperature: input.Temperature,
		MaxTokens:   input.MaxTokens,
	}

	var resp wireChatResponse
	if err := p.post(ctx, "/chat/completions", req, &resp); err != nil {
		return nil, err
	}

	out := &types.ChatCompletionResponse{
		ID:        resp.ID,
		CreatedAt: resp.Created,
		Model:     resp.Model,
		Choices:   make([]types.ChatCompletionChoice, 0, len(resp.Choices)),
	}
	for _, c := range resp.Choices {
		out.Choices = append(out.Choices, types.ChatCompletionChoice{
			Index: c.Index,
			Message: types.ChatMessage{
				Role:    c.Message.Role,
				Content: c.Message.Content,
			},
			FinishReason: c.Finish,
		})
	}
	if resp.Usage != nil {
		out.Usage = &types.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return out, nil
}

type wireImageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size,omitempty"`
}

type wireImageResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// GenerateImages sends an image generation request to the upstream API.
// Entries without a URL (base64-only responses) are dropped.
func (p *Provider) GenerateImages(ctx context.Context, params *types.ImageParams) ([]types.ImageResult, error) {
	count := params.Count
	if count <= 0 || count > 8 {
		count = 1
	}
	req := wireImageRequest{
		Model:  params.Model,
		Prompt: params.Prompt,
		N:      count,
		Size:   params.Size,
	}

	var resp wireImageResponse
	if err := p.post(ctx, "/images/generations", req, &resp); err != nil {
		return nil, err
	}

	images := make([]types.ImageResult, 0, len(resp.Data))
	for _, item := range resp.Data {
		if item.URL != "" {
			images = append(images, types.ImageResult{URL: item.URL})
		}
	}
	return images, nil
}

func (p *Provider) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimSuffix(p.baseURL, "/") + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	for k, v := range p.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return gwerrors.NewProviderError(ProviderName, "upstream request failed: "+err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := httputil.ReadLimitedBody(resp.Body, httputil.DefaultMaxBodyBytes)
	if err != nil {
		return gwerrors.NewProviderError(ProviderName, "read upstream response: "+err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return p.mapError(resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return gwerrors.NewProviderError(ProviderName, "unmarshal upstream response: "+err.Error())
	}
	return nil
}

// mapError converts an OpenAI error response to a gateway error. Upstream
// detail is kept in the message for logging; handlers never forward it.
func (p *Provider) mapError(statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}

	message := fmt.Sprintf("upstream status %d", statusCode)
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = fmt.Sprintf("upstream status %d: %s", statusCode, errResp.Error.Message)
	}
	return gwerrors.NewProviderError(ProviderName, message)
}

func toWireMessages(messages []types.ChatMessage) []wireMessage {
	result := make([]wireMessage, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case types.RoleSystem, types.RoleUser, types.RoleAssistant:
			result = append(result, wireMessage{Role: m.Role, Content: m.Content})
		}
	}
	return result
}
