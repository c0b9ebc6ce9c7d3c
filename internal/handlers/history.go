package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/euii-ii/ContentCapsule/internal/models"
)

type historyService interface {
	Record(ctx context.Context, id models.Identity, in models.HistoryInput) (*models.HistoryEntry, error)
	List(ctx context.Context, id models.Identity, f models.HistoryFilter) ([]*models.HistoryEntry, models.Pagination, error)
	Remove(ctx context.Context, id models.Identity, entryID string) error
}

type HistoryHandler struct {
	history historyService
}

func NewHistoryHandler(history historyService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List handles GET /history?page=&limit=&type=&videoId=
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	entries, pagination, err := h.history.List(r.Context(), id, models.HistoryFilter{
		ContentType: q.Get("type"),
		VideoID:     q.Get("videoId"),
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if entries == nil {
		entries = []*models.HistoryEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"data":       entries,
		"pagination": pagination,
	})
}

func (h *HistoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var in models.HistoryInput
	if !decodeJSON(r, &in) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	entry, err := h.history.Record(r.Context(), id, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    entry,
		"message": "Summary saved to history successfully",
	})
}

// Delete handles DELETE /history?id=
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.history.Remove(r.Context(), id, r.URL.Query().Get("id")); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "History entry deleted successfully",
	})
}
