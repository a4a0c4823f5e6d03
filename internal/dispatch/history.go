package dispatch

import "github.com/miro-workspace/aigateway/pkg/types"

// HistoryMessageLimit bounds the conversation sent to a provider.
const HistoryMessageLimit = 32

// TruncateHistory keeps the most recent HistoryMessageLimit messages,
// preserving order. Short histories are returned as-is; the input is never
// mutated.
func TruncateHistory(messages []types.ChatMessage) []types.ChatMessage {
	if len(messages) <= HistoryMessageLimit {
		return messages
	}
	return messages[len(messages)-HistoryMessageLimit:]
}
