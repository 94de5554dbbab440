package httpapi

import (
	"encoding/json"
	"net/http"

	"renova-rooms/internal/service"

	"go.uber.org/zap"
)

// ArtisanHandler 工匠目录路由
type ArtisanHandler struct {
	artisans service.ArtisanService
	logger   *zap.Logger
}

func NewArtisanHandler(artisans service.ArtisanService, logger *zap.Logger) *ArtisanHandler {
	return &ArtisanHandler{artisans: artisans, logger: logger}
}

// Collection GET /reno/api/v1/artisans
func (h *ArtisanHandler) Collection(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	resp, err := h.artisans.ListArtisans(req.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

type importArtisansBody struct {
	Trade string `json:"trade"`
}

// Import POST /reno/api/v1/artisans/import
func (h *ArtisanHandler) Import(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body importArtisansBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid json body"))
		return
	}
	resp, err := h.artisans.ImportArtisans(req.Context(), service.ImportArtisansRequest{Trade: body.Trade})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}
