package handlers

import (
	"context"
	"net/http"

	"github.com/euii-ii/ContentCapsule/internal/models"
	"github.com/euii-ii/ContentCapsule/internal/services"
)

type accountService interface {
	Profile(ctx context.Context, id models.Identity) (*models.User, string, error)
	Update(ctx context.Context, id models.Identity, req models.UpdateUserRequest) (*models.User, string, error)
	Stats(ctx context.Context, id models.Identity, action string) (*services.AccountStats, error)
}

type AccountHandler struct {
	accounts accountService
}

func NewAccountHandler(accounts accountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	user, mode, err := h.accounts.Profile(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    user,
		"mode":    mode,
	})
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req models.UpdateUserRequest
	if !decodeJSON(r, &req) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	user, mode, err := h.accounts.Update(r.Context(), id, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if mode == services.ModeOffline {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    nil,
			"message": "Profile update queued (database unavailable)",
			"mode":    mode,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    user,
		"message": "Profile updated successfully",
		"mode":    mode,
	})
}

// Stats handles POST /account/stats with {"action":"stats"}.
func (h *AccountHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req models.AccountActionRequest
	if !decodeJSON(r, &req) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	stats, err := h.accounts.Stats(r.Context(), id, req.Action)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    stats,
	})
}
