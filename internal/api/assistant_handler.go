package api

import (
	"net/http"
	"sync"

	"github.com/miro-workspace/aigateway/internal/dispatch"
	gwerrors "github.com/miro-workspace/aigateway/pkg/errors"
	"github.com/miro-workspace/aigateway/pkg/types"
)

type assistantResponse struct {
	Completion *types.ChatCompletionResponse `json:"completion,omitempty"`
	Images     []types.ImageResult           `json:"images,omitempty"`
}

// AssistantV2 handles POST /v2/ai/assistant, the combined endpoint: one
// logical request fans out to a chat completion and/or an image generation
// depending on the resolved mode. In "both" mode the two provider calls
// run concurrently and the response is assembled after both settle; one
// failed or empty leg does not fail the request as long as the other
// produced content.
func (h *Handler) AssistantV2(w http.ResponseWriter, r *http.Request) {
	if !h.gate(w, r) {
		return
	}

	var req assistantRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if !req.validate() {
		h.writeError(w, gwerrors.NewInvalidRequestError("Invalid request body"))
		return
	}

	messages := dispatch.TruncateHistory(req.Messages)
	plan := dispatch.BuildPlan(messages, dispatch.AssistantInput{
		ExplicitMode: strValue(req.Mode),
		TextModel:    strValue(req.TextModel),
		ImageModel:   strValue(req.ImageModel),
		ImageSize:    strValue(req.ImageSize),
		ImageCount:   intValue(req.ImageCount),
		ByokKey:      strValue(req.ByokKey),
	}, h.cfg.AliasTable(), h.cfg.AI.ImageModel, h.selector)

	chatInput := &types.ChatCompletionInput{
		Model:    plan.TextModel,
		Messages: messages,
	}
	if req.WebSearchEnabled != nil && *req.WebSearchEnabled {
		chatInput.Metadata = map[string]any{"webSearchEnabled": true}
	}
	imageParams := &types.ImageParams{
		Model:  plan.ImageModel,
		Prompt: types.LatestUserContent(messages),
		Size:   plan.ImageSize,
		Count:  plan.ImageCount,
	}

	switch plan.Mode {
	case dispatch.ModeText:
		completion, err := h.chatCompletion(r.Context(), plan.Chat, chatInput)
		if err != nil {
			h.writeError(w, h.providerFailure(r.Context(), plan.Chat.Name(), "chat_completion", err))
			return
		}
		if completion.FirstChoiceText() == "" {
			h.writeError(w, gwerrors.NewEmptyResultError(plan.Chat.Name(), "AI provider returned no content"))
			return
		}
		h.writeJSON(w, http.StatusOK, assistantResponse{Completion: completion})

	case dispatch.ModeImage:
		images, err := h.generateImages(r.Context(), plan.Image, imageParams)
		if err != nil {
			h.writeError(w, h.providerFailure(r.Context(), plan.Image.Name(), "image_generation", err))
			return
		}
		if len(images) == 0 {
			h.writeError(w, gwerrors.NewEmptyResultError(plan.Image.Name(), "AI provider returned no images"))
			return
		}
		h.writeJSON(w, http.StatusOK, assistantResponse{Images: images})

	case dispatch.ModeBoth:
		h.assistantBoth(w, r, plan, chatInput, imageParams)
	}
}

// assistantBoth issues the chat and image calls concurrently. Both are
// started before either is awaited, and neither cancels the other.
func (h *Handler) assistantBoth(w http.ResponseWriter, r *http.Request, plan *dispatch.Plan, chatInput *types.ChatCompletionInput, imageParams *types.ImageParams) {
	var (
		wg         sync.WaitGroup
		completion *types.ChatCompletionResponse
		chatErr    error
		images     []types.ImageResult
		imageErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		completion, chatErr = h.chatCompletion(r.Context(), plan.Chat, chatInput)
	}()
	go func() {
		defer wg.Done()
		images, imageErr = h.generateImages(r.Context(), plan.Image, imageParams)
	}()
	wg.Wait()

	if chatErr != nil {
		h.logger.WithRequestID(r.Context()).RedactedError("assistant chat leg failed",
			"provider", plan.Chat.Name(), "error", chatErr)
	}
	if imageErr != nil {
		h.logger.WithRequestID(r.Context()).RedactedError("assistant image leg failed",
			"provider", plan.Image.Name(), "error", imageErr)
	}

	hasCompletion := chatErr == nil && completion.FirstChoiceText() != ""
	hasImages := imageErr == nil && len(images) > 0

	if !hasCompletion && !hasImages {
		if chatErr != nil || imageErr != nil {
			h.writeError(w, gwerrors.NewProviderError(plan.Chat.Name(), "AI provider error"))
			return
		}
		h.writeError(w, gwerrors.NewEmptyResultError(plan.Chat.Name(), "AI provider returned no content"))
		return
	}

	resp := assistantResponse{}
	if hasCompletion {
		resp.Completion = completion
	}
	if hasImages {
		resp.Images = images
	}
	h.writeJSON(w, http.StatusOK, resp)
}
