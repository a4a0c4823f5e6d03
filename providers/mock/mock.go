// Package mock provides deterministic in-process providers. The gateway
// falls back to them when no real provider is configured; tests use them to
// avoid network calls.
package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/miro-workspace/aigateway/pkg/types"
)

// ProviderName is the identifier for the mock adapters.
const ProviderName = "mock"

const previewLimit = 64

// ChatProvider echoes a preview of the latest user message.
type ChatProvider struct{}

// NewChatProvider creates a mock chat provider.
func NewChatProvider() *ChatProvider {
	return &ChatProvider{}
}

// Name returns the provider identifier.
func (p *ChatProvider) Name() string {
	return ProviderName
}

// CreateChatCompletion returns a single assistant choice built from the
// most recent user message.
func (p *ChatProvider) CreateChatCompletion(_ context.Context, input *types.ChatCompletionInput) (*types.ChatCompletionResponse, error) {
	model := input.Model
	if model == "" {
		model = "mock-model"
	}

	preview := truncatePreview(types.LatestUserContent(input.Messages))
	content := fmt.Sprintf("Mock response from %s: (no user content)", model)
	if preview != "" {
		content = fmt.Sprintf("Mock response from %s: %s", model, preview)
	}

	return &types.ChatCompletionResponse{
		Choices: []types.ChatCompletionChoice{
			{
				Index:   0,
				Message: types.ChatMessage{Role: types.RoleAssistant, Content: content},
			},
		},
	}, nil
}

// ImageProvider returns placeholder image URLs.
type ImageProvider struct{}

// NewImageProvider creates a mock image provider.
func NewImageProvider() *ImageProvider {
	return &ImageProvider{}
}

// Name returns the provider identifier.
func (p *ImageProvider) Name() string {
	return ProviderName
}

// GenerateImages returns count placeholder URLs, clamping count to [1, 8].
func (p *ImageProvider) GenerateImages(_ context.Context, params *types.ImageParams) ([]types.ImageResult, error) {
	count := params.Count
	if count <= 0 || count > 8 {
		count = 1
	}

	images := make([]types.ImageResult, 0, count)
	for i := 0; i < count; i++ {
		images = append(images, types.ImageResult{
			URL: fmt.Sprintf("https://placehold.co/512x512?text=Miro+Mock+Image+%d", i+1),
		})
	}
	return images, nil
}

func truncatePreview(content string) string {
	trimmed := []rune(strings.TrimSpace(content))
	if len(trimmed) > previewLimit {
		return string(trimmed[:previewLimit-3]) + "..."
	}
	return string(trimmed)
}
