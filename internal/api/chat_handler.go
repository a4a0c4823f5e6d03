package api

import (
	"net/http"

	"github.com/miro-workspace/aigateway/internal/dispatch"
	gwerrors "github.com/miro-workspace/aigateway/pkg/errors"
	"github.com/miro-workspace/aigateway/pkg/types"
)

type chatResponse struct {
	Completion *types.ChatCompletionResponse `json:"completion"`
}

// Chat handles POST /ai/chat, the legacy chat endpoint: no rate limiting,
// no truncation, no BYOK. The raw message list goes to the base client.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if !req.validate() {
		h.writeError(w, gwerrors.NewInvalidRequestError("Invalid request body"))
		return
	}

	client := h.selector.Chat("")
	input := &types.ChatCompletionInput{
		Model:    dispatch.ResolveModel(strValue(req.Model), h.cfg.AliasTable()),
		Messages: req.Messages,
	}

	completion, err := h.chatCompletion(r.Context(), client, input)
	if err != nil {
		h.writeError(w, h.providerFailure(r.Context(), client.Name(), "chat_completion", err))
		return
	}

	h.writeJSON(w, http.StatusOK, chatResponse{Completion: completion})
}

// ChatV2 handles POST /v2/ai/chat: rate-limit gate, validation, history
// truncation, model resolution, BYOK client selection, then the chat call.
func (h *Handler) ChatV2(w http.ResponseWriter, r *http.Request) {
	if !h.gate(w, r) {
		return
	}

	var req chatRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if !req.validate() {
		h.writeError(w, gwerrors.NewInvalidRequestError("Invalid request body"))
		return
	}

	client := h.selector.Chat(strValue(req.ByokKey))
	input := &types.ChatCompletionInput{
		Model:       dispatch.ResolveModel(strValue(req.Model), h.cfg.AliasTable()),
		Messages:    dispatch.TruncateHistory(req.Messages),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	completion, err := h.chatCompletion(r.Context(), client, input)
	if err != nil {
		h.writeError(w, h.providerFailure(r.Context(), client.Name(), "chat_completion", err))
		return
	}
	if completion.FirstChoiceText() == "" {
		h.writeError(w, gwerrors.NewEmptyResultError(client.Name(), "AI provider returned no content"))
		return
	}

	h.writeJSON(w, http.StatusOK, chatResponse{Completion: completion})
}
