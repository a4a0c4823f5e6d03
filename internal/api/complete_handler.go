package api

import (
	"net/http"

	"github.com/miro-workspace/aigateway/internal/dispatch"
	gwerrors "github.com/miro-workspace/aigateway/pkg/errors"
)

type completeResponse struct {
	Text string `json:"text"`
}

// Complete handles POST /ai/complete, the legacy single-prompt endpoint.
// No rate limiting and no BYOK; it always uses the configured base client.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if !req.validate() {
		h.writeError(w, gwerrors.NewInvalidRequestError("Invalid request body"))
		return
	}

	model := dispatch.ResolveModel(strValue(req.Model), h.cfg.AliasTable())
	client := h.selector.Chat("")

	text, err := h.generateCompletion(r.Context(), client, model, *req.Prompt)
	if err != nil {
		h.writeError(w, h.providerFailure(r.Context(), client.Name(), "completion", err))
		return
	}

	h.writeJSON(w, http.StatusOK, completeResponse{Text: text})
}

// CompleteV2 handles POST /v2/ai/complete: rate-limit gate, validation,
// model resolution, BYOK client selection, then the completion call.
func (h *Handler) CompleteV2(w http.ResponseWriter, r *http.Request) {
	if !h.gate(w, r) {
		return
	}

	var req completeRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if !req.validate() {
		h.writeError(w, gwerrors.NewInvalidRequestError("Invalid request body"))
		return
	}

	model := dispatch.ResolveModel(strValue(req.Model), h.cfg.AliasTable())
	client := h.selector.Chat(strValue(req.ByokKey))

	text, err := h.generateCompletion(r.Context(), client, model, *req.Prompt)
	if err != nil {
		h.writeError(w, h.providerFailure(r.Context(), client.Name(), "completion", err))
		return
	}
	if text == "" {
		h.writeError(w, gwerrors.NewEmptyResultError(client.Name(), "AI provider returned no content"))
		return
	}

	h.writeJSON(w, http.StatusOK, completeResponse{Text: text})
}
