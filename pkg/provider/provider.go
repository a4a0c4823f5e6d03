// Package provider defines the interfaces AI provider adapters implement and
// the closed set of provider kinds the gateway can be configured with.
package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/miro-workspace/aigateway/pkg/types"
)

// Kind identifies a configured provider backend.
type Kind string

// Supported provider kinds.
const (
	KindMock      Kind = "mock"
	KindOpenAI    Kind = "openai"
	KindAnthropic Kind = "anthropic"
	KindGoogle    Kind = "google"
	KindLocal     Kind = "local"
)

// ParseKind maps a configured provider name to a Kind, defaulting to mock
// for anything unrecognized.
func ParseKind(raw string) Kind {
	switch Kind(raw) {
	case KindOpenAI, KindAnthropic, KindGoogle, KindLocal:
		return Kind(raw)
	default:
		return KindMock
	}
}

// SupportsKeySubstitution reports whether a caller-supplied key can replace
// the configured key for a single request. Only kinds speaking the
// bearer-key OpenAI-compatible protocol qualify.
func (k Kind) SupportsKeySubstitution() bool {
	return k == KindOpenAI || k == KindLocal
}

// ChatProvider produces chat completions.
type ChatProvider interface {
	Name() string
	CreateChatCompletion(ctx context.Context, input *types.ChatCompletionInput) (*types.ChatCompletionResponse, error)
}

// ImageProvider produces generated images.
type ImageProvider interface {
	Name() string
	GenerateImages(ctx context.Context, params *types.ImageParams) ([]types.ImageResult, error)
}

// Config carries the settings needed to construct a provider adapter.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// GenerateCompletion runs a single-prompt completion through a chat
// provider: a fixed system message plus the prompt as the user turn,
// returning the first choice's text.
func GenerateCompletion(ctx context.Context, p ChatProvider, model, prompt string) (string, error) {
	input := &types.ChatCompletionInput{
		Model: model,
		Messages: []types.ChatMessage{
			{Role: types.RoleSystem, Content: "You generate short textual responses."},
			{Role: types.RoleUser, Content: prompt},
		},
	}
	resp, err := p.CreateChatCompletion(ctx, input)
	if err != nil {
		return "", err
	}
	return resp.FirstChoiceText(), nil
}
