package dispatch

import (
	"github.com/miro-workspace/aigateway/pkg/provider"
	"github.com/miro-workspace/aigateway/pkg/types"
)

// Image count bounds for a single request.
const (
	MinImageCount = 1
	MaxImageCount = 8
)

// ClampImageCount bounds a requested image count to [1, 8]; anything out
// of range falls back to 1.
func ClampImageCount(count int) int {
	if count >= MinImageCount && count <= MaxImageCount {
		return count
	}
	return MinImageCount
}

// AssistantInput carries the caller's assistant request fields that feed
// plan resolution.
type AssistantInput struct {
	ExplicitMode string
	TextModel    string
	ImageModel   string
	ImageSize    string
	ImageCount   int
	ByokKey      string
}

// Plan is the resolved dispatch for one assistant request. Computed once,
// consumed immediately, never persisted.
type Plan struct {
	Mode       Mode
	TextModel  string
	ImageModel string
	ImageSize  string
	ImageCount int
	Chat       provider.ChatProvider
	Image      provider.ImageProvider
}

// BuildPlan resolves an assistant request into a concrete dispatch plan:
// mode, both model ids, clamped image count, and per-request clients.
// messages must already be truncated; the same BYOK key is applied to the
// chat and image clients independently.
func BuildPlan(messages []types.ChatMessage, in AssistantInput, table AliasTable, defaultImageModel string, selector *ClientSelector) *Plan {
	return &Plan{
		Mode:       ResolveMode(messages, in.ExplicitMode),
		TextModel:  ResolveModel(in.TextModel, table),
		ImageModel: ResolveImageModel(in.ImageModel, defaultImageModel),
		ImageSize:  in.ImageSize,
		ImageCount: ClampImageCount(in.ImageCount),
		Chat:       selector.Chat(in.ByokKey),
		Image:      selector.Image(in.ByokKey),
	}
}
