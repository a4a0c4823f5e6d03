package api

import (
	"github.com/miro-workspace/aigateway/pkg/types"
)

// Request bodies for the AI endpoints. Fields use pointers where absent
// and present-but-zero must be told apart; unknown extra fields are
// ignored by decoding, and a present field with the wrong primitive type
// fails the whole body.

type completeRequest struct {
	Prompt  *string `json:"prompt"`
	Model   *string `json:"model"`
	ByokKey *string `json:"byokKey"`
}

func (r *completeRequest) validate() bool {
	return r.Prompt != nil
}

type chatRequest struct {
	Messages    []types.ChatMessage `json:"messages"`
	Model       *string             `json:"model"`
	Temperature *float64            `json:"temperature"`
	MaxTokens   *int                `json:"maxTokens"`
	ByokKey     *string             `json:"byokKey"`
}

func (r *chatRequest) validate() bool {
	return validMessages(r.Messages)
}

type imageRequest struct {
	Prompt  *string `json:"prompt"`
	Model   *string `json:"model"`
	Size    *string `json:"size"`
	Count   *int    `json:"count"`
	ByokKey *string `json:"byokKey"`
}

func (r *imageRequest) validate() bool {
	return r.Prompt != nil
}

type assistantRequest struct {
	Messages         []types.ChatMessage `json:"messages"`
	Mode             *string             `json:"mode"`
	TextModel        *string             `json:"textModel"`
	ImageModel       *string             `json:"imageModel"`
	ImageSize        *string             `json:"imageSize"`
	ImageCount       *int                `json:"imageCount"`
	WebSearchEnabled *bool               `json:"webSearchEnabled"`
	ByokKey          *string             `json:"byokKey"`
}

func (r *assistantRequest) validate() bool {
	return validMessages(r.Messages)
}

// validMessages requires a messages array whose every element carries a
// string role. A missing array (nil) fails; an empty array passes.
func validMessages(messages []types.ChatMessage) bool {
	if messages == nil {
		return false
	}
	for _, m := range messages {
		if m.Role == "" {
			return false
		}
	}
	return true
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intValue(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
