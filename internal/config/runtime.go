package config

import "github.com/miro-workspace/aigateway/pkg/provider"

// RuntimeModel describes one model advertised to workspace clients.
type RuntimeModel struct {
	ID    string   `json:"id"`
	Alias string   `json:"alias,omitempty"`
	Kind  string   `json:"kind"` // text, image
	Label string   `json:"label"`
	Tags  []string `json:"tags"`
}

// RuntimeProvider describes one provider entry in the client catalog.
type RuntimeProvider struct {
	ID           string         `json:"id"`
	Label        string         `json:"label"`
	BaseURL      string         `json:"baseUrl"`
	Models       []RuntimeModel `json:"models"`
	Ready        bool           `json:"ready"`
	SupportsByok bool           `json:"supportsByok"`
}

// RuntimeConfig is the provider catalog served on GET /ai/config. The web
// and mobile model switchers render from it.
type RuntimeConfig struct {
	DefaultProviderID string            `json:"defaultProviderId"`
	Providers         []RuntimeProvider `json:"providers"`
}

// BuildRuntime assembles the catalog from the loaded AI configuration.
// Built-in defaults fill anything the ai.catalog section leaves unset; the
// active provider's entry inherits the primary base URL, key, and aliases.
func BuildRuntime(ai AIConfig) RuntimeConfig {
	active := provider.ParseKind(ai.Provider)
	overrides := ai.Catalog

	providers := []RuntimeProvider{
		{
			ID:      string(provider.KindMock),
			Label:   "Mock",
			BaseURL: "",
			Models:  []RuntimeModel{},
			Ready:   true,
		},
		openaiEntry(ai, active, overrides[string(provider.KindOpenAI)]),
		anthropicEntry(active, ai, overrides[string(provider.KindAnthropic)]),
		googleEntry(overrides[string(provider.KindGoogle)]),
		localEntry(overrides[string(provider.KindLocal)]),
	}

	return RuntimeConfig{
		DefaultProviderID: string(active),
		Providers:         providers,
	}
}

func openaiEntry(ai AIConfig, active provider.Kind, o CatalogOverride) RuntimeProvider {
	baseURL := pick(o.BaseURL, whenActive(active, provider.KindOpenAI, ai.BaseURL), "https://api.openai.com/v1")
	apiKey := pick(o.APIKey, whenActive(active, provider.KindOpenAI, ai.APIKey), "")
	fast := pick(o.Fast, whenActive(active, provider.KindOpenAI, ai.Models.Fast), "gpt-4o-mini")
	balanced := pick(o.Balanced, whenActive(active, provider.KindOpenAI, ai.Models.Balanced), "gpt-4o")
	creative := pick(o.Creative, whenActive(active, provider.KindOpenAI, ai.Models.Creative), "gpt-4.1-mini")
	image := pick(o.ImageModel, ai.ImageModel, "gpt-image-1")

	return RuntimeProvider{
		ID:      string(provider.KindOpenAI),
		Label:   "OpenAI",
		BaseURL: baseURL,
		Models: []RuntimeModel{
			{ID: balanced, Alias: "balanced", Kind: "text", Label: "Balanced", Tags: []string{"text", "quality"}},
			{ID: fast, Alias: "fast", Kind: "text", Label: "Fast", Tags: []string{"text", "fast"}},
			{ID: creative, Alias: "creative", Kind: "text", Label: "Creative", Tags: []string{"text", "quality"}},
			{ID: image, Alias: "image-default", Kind: "image", Label: "Image", Tags: []string{"image", "quality"}},
		},
		Ready:        apiKey != "",
		SupportsByok: true,
	}
}

func anthropicEntry(active provider.Kind, ai AIConfig, o CatalogOverride) RuntimeProvider {
	baseURL := pick(o.BaseURL, whenActive(active, provider.KindAnthropic, ai.BaseURL), "https://api.anthropic.com/v1")
	apiKey := pick(o.APIKey, whenActive(active, provider.KindAnthropic, ai.APIKey), "")
	balanced := pick(o.Balanced, "claude-3.7-sonnet")
	fast := pick(o.Fast, "claude-3.7-haiku")

	return RuntimeProvider{
		ID:      string(provider.KindAnthropic),
		Label:   "Anthropic",
		BaseURL: baseURL,
		Models: []RuntimeModel{
			{ID: balanced, Alias: "balanced", Kind: "text", Label: "Claude Sonnet", Tags: []string{"text", "quality"}},
			{ID: fast, Alias: "fast", Kind: "text", Label: "Claude Haiku", Tags: []string{"text", "fast"}},
		},
		Ready:        apiKey != "",
		SupportsByok: true,
	}
}

func googleEntry(o CatalogOverride) RuntimeProvider {
	fast := pick(o.Fast, "gemini-2.0-flash")
	balanced := pick(o.Balanced, "gemini-2.0-pro")
	image := pick(o.ImageModel, "imagen-4")

	return RuntimeProvider{
		ID:      string(provider.KindGoogle),
		Label:   "Google",
		BaseURL: pick(o.BaseURL, "https://generativelanguage.googleapis.com/v1beta"),
		Models: []RuntimeModel{
			{ID: fast, Alias: "fast", Kind: "text", Label: "Gemini Flash", Tags: []string{"text", "fast"}},
			{ID: balanced, Alias: "balanced", Kind: "text", Label: "Gemini Pro", Tags: []string{"text", "quality"}},
			{ID: image, Alias: "image-default", Kind: "image", Label: "Imagen", Tags: []string{"image", "quality"}},
		},
		Ready:        o.APIKey != "",
		SupportsByok: true,
	}
}

func localEntry(o CatalogOverride) RuntimeProvider {
	text := pick(o.Balanced, "local-llama-3")
	image := pick(o.ImageModel, "local-sdxl")

	return RuntimeProvider{
		ID:      string(provider.KindLocal),
		Label:   "Local",
		BaseURL: pick(o.BaseURL, "http://localhost:8000/v1"),
		Models: []RuntimeModel{
			{ID: text, Kind: "text", Label: "Local text model", Tags: []string{"text", "local"}},
			{ID: image, Kind: "image", Label: "Local image model", Tags: []string{"image", "local"}},
		},
		Ready:        true,
		SupportsByok: true,
	}
}

func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func whenActive(active, kind provider.Kind, value string) string {
	if active == kind {
		return value
	}
	return ""
}
