package handlers

import (
	"net/http"
	"strings"

	"github.com/zatekoja/carefinder/backend/pkg/config"
)

// MapsHandler hands the browser map configuration to clients.
type MapsHandler struct {
	provider string
	apiKey   string
}

// NewMapsHandler creates a new maps handler.
func NewMapsHandler(cfg config.MapsConfig) *MapsHandler {
	provider := strings.TrimSpace(cfg.Provider)
	if provider == "" {
		provider = "kakao"
	}
	return &MapsHandler{
		provider: provider,
		apiKey:   strings.TrimSpace(cfg.APIKey),
	}
}

type mapConfigResponse struct {
	Provider string `json:"provider"`
	AppKey   string `json:"app_key"`
}

// GetMapConfig handles GET /api/maps/config. The key is a browser JavaScript
// key, so it is safe to hand out.
func (h *MapsHandler) GetMapConfig(w http.ResponseWriter, r *http.Request) {
	if h.apiKey == "" {
		respondWithError(w, http.StatusNotFound, "maps api key not configured")
		return
	}

	respondWithJSON(w, http.StatusOK, mapConfigResponse{
		Provider: h.provider,
		AppKey:   h.apiKey,
	})
}
