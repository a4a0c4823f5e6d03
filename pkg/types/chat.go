// Package types defines the wire types shared between the gateway API and
// provider adapters.
package types

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ChatMessage is a single message in a conversation.
type ChatMessage struct {
	ID         string     `json:"id,omitempty"`
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	CreatedAt  int64      `json:"createdAt,omitempty"`
	ToolCallID string     `json:"toolCallId,omitempty"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
}

// ToolCall records a tool invocation requested by the assistant.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments any    `json:"arguments,omitempty"`
}

// ChatCompletionInput is the unified request for a chat completion.
type ChatCompletionInput struct {
	Model       string         `json:"model,omitempty"`
	Messages    []ChatMessage  `json:"messages"`
	Temperature *float64       `json:"temperature,omitempty"`
	MaxTokens   *int           `json:"maxTokens,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ChatCompletionChoice is one candidate completion.
type ChatCompletionChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finishReason,omitempty"`
}

// Usage reports token accounting for a completion.
type Usage struct {
	PromptTokens     int `json:"promptTokens,omitempty"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens,omitempty"`
}

// ChatCompletionResponse is the unified chat completion result.
type ChatCompletionResponse struct {
	ID        string                 `json:"id,omitempty"`
	CreatedAt int64                  `json:"createdAt,omitempty"`
	Model     string                 `json:"model,omitempty"`
	Choices   []ChatCompletionChoice `json:"choices"`
	Usage     *Usage                 `json:"usage,omitempty"`
}

// FirstChoiceText returns the content of the first choice, or "" when the
// response carries no usable text.
func (r *ChatCompletionResponse) FirstChoiceText() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// LatestUserContent scans messages from the end and returns the content of
// the most recent user message, or "" when none exists.
func LatestUserContent(messages []ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
