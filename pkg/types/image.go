package types

// ImageParams is the unified request for image generation.
type ImageParams struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size,omitempty"`
	Count  int    `json:"count,omitempty"`
}

// ImageResult is a single generated image.
type ImageResult struct {
	URL string `json:"url"`
}
