package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/euii-ii/ContentCapsule/internal/models"
)

type videoResolver interface {
	Resolve(ctx context.Context, rawURL string) (*models.VideoReference, error)
}

type VideosHandler struct {
	resolver videoResolver
}

func NewVideosHandler(resolver videoResolver) *VideosHandler {
	return &VideosHandler{resolver: resolver}
}

// Resolve handles POST /videos/resolve. Metadata failures degrade to an
// id-only reference rather than an error.
func (h *VideosHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req models.VideoURLRequest
	if !decodeJSON(r, &req) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	ref, err := h.resolver.Resolve(r.Context(), strings.TrimSpace(req.URL))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    ref,
	})
}
