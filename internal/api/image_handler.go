package api

import (
	"net/http"

	"github.com/miro-workspace/aigateway/internal/dispatch"
	gwerrors "github.com/miro-workspace/aigateway/pkg/errors"
	"github.com/miro-workspace/aigateway/pkg/types"
)

type imageResponse struct {
	Images []types.ImageResult `json:"images"`
}

// ImageV2 handles POST /v2/ai/image: rate-limit gate, validation, image
// model trim-or-default, count clamping, BYOK client selection, then the
// image generation call.
func (h *Handler) ImageV2(w http.ResponseWriter, r *http.Request) {
	if !h.gate(w, r) {
		return
	}

	var req imageRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if !req.validate() {
		h.writeError(w, gwerrors.NewInvalidRequestError("Invalid request body"))
		return
	}

	client := h.selector.Image(strValue(req.ByokKey))
	params := &types.ImageParams{
		Model:  dispatch.ResolveImageModel(strValue(req.Model), h.cfg.AI.ImageModel),
		Prompt: *req.Prompt,
		Size:   strValue(req.Size),
		Count:  dispatch.ClampImageCount(intValue(req.Count)),
	}

	images, err := h.generateImages(r.Context(), client, params)
	if err != nil {
		h.writeError(w, h.providerFailure(r.Context(), client.Name(), "image_generation", err))
		return
	}
	if len(images) == 0 {
		h.writeError(w, gwerrors.NewEmptyResultError(client.Name(), "AI provider returned no images"))
		return
	}

	h.writeJSON(w, http.StatusOK, imageResponse{Images: images})
}
