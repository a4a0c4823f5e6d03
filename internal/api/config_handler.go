package api

import (
	"net/http"

	"github.com/miro-workspace/aigateway/internal/config"
)

type aiConfigResponse struct {
	Provider string               `json:"provider"`
	BaseURL  string               `json:"baseUrl"`
	Models   aiConfigModels       `json:"models"`
	Ready    bool                 `json:"ready"`
	Runtime  config.RuntimeConfig `json:"runtime"`
}

type aiConfigModels struct {
	Fast     string `json:"fast"`
	Balanced string `json:"balanced"`
	Creative string `json:"creative"`
}

// AIConfig handles GET /ai/config. It advertises the active provider, its
// alias table, readiness, and the full provider catalog. API keys never
// appear in the response.
func (h *Handler) AIConfig(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, aiConfigResponse{
		Provider: string(h.cfg.ProviderKind()),
		BaseURL:  h.cfg.AI.BaseURL,
		Models: aiConfigModels{
			Fast:     h.cfg.AI.Models.Fast,
			Balanced: h.cfg.AI.Models.Balanced,
			Creative: h.cfg.AI.Models.Creative,
		},
		Ready:   h.cfg.Ready(),
		Runtime: h.runtime,
	})
}
