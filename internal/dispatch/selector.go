package dispatch

import (
	"strings"
	"time"

	"github.com/miro-workspace/aigateway/pkg/provider"
	"github.com/miro-workspace/aigateway/providers/openai"
)

// ClientSelector decides, per request, between the process-wide base
// clients and an ephemeral client bound to a caller-supplied key (BYOK).
// BYOK clients are never cached; each keyed request gets its own instance.
type ClientSelector struct {
	kind      provider.Kind
	baseURL   string
	timeout   time.Duration
	baseChat  provider.ChatProvider
	baseImage provider.ImageProvider

	// Overridable in tests to observe construction.
	newChat  func(provider.Config) provider.ChatProvider
	newImage func(provider.Config) provider.ImageProvider
}

// NewClientSelector creates a selector for the configured provider kind.
func NewClientSelector(kind provider.Kind, baseURL string, timeout time.Duration, baseChat provider.ChatProvider, baseImage provider.ImageProvider) *ClientSelector {
	return &ClientSelector{
		kind:      kind,
		baseURL:   baseURL,
		timeout:   timeout,
		baseChat:  baseChat,
		baseImage: baseImage,
		newChat: func(cfg provider.Config) provider.ChatProvider {
			return openai.NewFromConfig(cfg)
		},
		newImage: func(cfg provider.Config) provider.ImageProvider {
			return openai.NewFromConfig(cfg)
		},
	}
}

// Chat returns the chat client for a request. A blank key, or a provider
// kind without key substitution, yields the base client; the key is then
// silently ignored.
func (s *ClientSelector) Chat(byokKey string) provider.ChatProvider {
	trimmed := strings.TrimSpace(byokKey)
	if trimmed == "" || !s.kind.SupportsKeySubstitution() {
		return s.baseChat
	}
	return s.newChat(provider.Config{
		BaseURL: s.baseURL,
		APIKey:  trimmed,
		Timeout: s.timeout,
	})
}

// Image returns the image client for a request, applying the same rules as
// Chat independently.
func (s *ClientSelector) Image(byokKey string) provider.ImageProvider {
	trimmed := strings.TrimSpace(byokKey)
	if trimmed == "" || !s.kind.SupportsKeySubstitution() {
		return s.baseImage
	}
	return s.newImage(provider.Config{
		BaseURL: s.baseURL,
		APIKey:  trimmed,
		Timeout: s.timeout,
	})
}

// Kind returns the configured provider kind.
func (s *ClientSelector) Kind() provider.Kind {
	return s.kind
}
