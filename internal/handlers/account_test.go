package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/euii-ii/ContentCapsule/internal/models"
	"github.com/euii-ii/ContentCapsule/internal/services"
)

type stubAccountService struct {
	user   *models.User
	mode   string
	stats  *services.AccountStats
	action string
	update models.UpdateUserRequest
	err    error
}

func (s *stubAccountService) Profile(ctx context.Context, id models.Identity) (*models.User, string, error) {
	return s.user, s.mode, s.err
}

func (s *stubAccountService) Update(ctx context.Context, id models.Identity, req models.UpdateUserRequest) (*models.User, string, error) {
	s.update = req
	return s.user, s.mode, s.err
}

func (s *stubAccountService) Stats(ctx context.Context, id models.Identity, action string) (*services.AccountStats, error) {
	s.action = action
	return s.stats, s.err
}

func TestAccountHandler_GetReportsMode(t *testing.T) {
	svc := &stubAccountService{user: models.NewUserFromIdentity(testIdentity, time.Now()), mode: services.ModeIdentityOnly}
	h := NewAccountHandler(svc)

	rr := httptest.NewRecorder()
	h.Get(rr, withIdentity(httptest.NewRequest(http.MethodGet, "/api/v1/account", nil), testIdentity))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	body := decodeBody(t, rr)
	if body["mode"] != "identity-only" {
		t.Fatalf("expected identity-only mode, got %v", body["mode"])
	}
	data := body["data"].(map[string]interface{})
	if data["email"] != "ada@example.com" || data["plan"] != "free" {
		t.Fatalf("unexpected profile %v", data)
	}
}

func TestAccountHandler_GetUnauthorized(t *testing.T) {
	h := NewAccountHandler(&stubAccountService{})
	rr := httptest.NewRecorder()
	h.Get(rr, httptest.NewRequest(http.MethodGet, "/api/v1/account", nil))
	expectError(t, rr, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
}

func TestAccountHandler_Update(t *testing.T) {
	t.Run("database", func(t *testing.T) {
		svc := &stubAccountService{user: models.NewUserFromIdentity(testIdentity, time.Now()), mode: services.ModeDatabase}
		h := NewAccountHandler(svc)

		body := map[string]interface{}{"preferences": map[string]string{"theme": "dark"}}
		rr := httptest.NewRecorder()
		h.Update(rr, withIdentity(jsonRequest(t, http.MethodPut, "/api/v1/account", body), testIdentity))

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
		}
		resp := decodeBody(t, rr)
		if resp["message"] != "Profile updated successfully" {
			t.Fatalf("unexpected message %v", resp["message"])
		}
		if svc.update.Preferences == nil || *svc.update.Preferences.Theme != "dark" {
			t.Fatal("expected theme passed through")
		}
	})

	t.Run("offline", func(t *testing.T) {
		h := NewAccountHandler(&stubAccountService{mode: services.ModeOffline})

		rr := httptest.NewRecorder()
		h.Update(rr, withIdentity(jsonRequest(t, http.MethodPut, "/api/v1/account", map[string]string{"firstName": "Ada"}), testIdentity))

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
		}
		resp := decodeBody(t, rr)
		if resp["data"] != nil || resp["mode"] != "offline" || resp["message"] != "Profile update queued (database unavailable)" {
			t.Fatalf("unexpected offline response %v", resp)
		}
	})

	t.Run("invalid theme", func(t *testing.T) {
		h := NewAccountHandler(&stubAccountService{err: &services.ValidationError{Message: "Invalid theme"}})

		rr := httptest.NewRecorder()
		h.Update(rr, withIdentity(jsonRequest(t, http.MethodPut, "/api/v1/account", map[string]interface{}{"preferences": map[string]string{"theme": "neon"}}), testIdentity))

		expectError(t, rr, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid theme")
	})
}

func TestAccountHandler_Stats(t *testing.T) {
	stats := &services.AccountStats{
		User: services.AccountSummary{Plan: "free"},
		Stats: models.HistoryStats{
			Total:  3,
			ByType: map[models.ContentType]models.ContentTypeStat{models.ContentNote: {Count: 3}},
		},
	}
	svc := &stubAccountService{stats: stats}
	h := NewAccountHandler(svc)

	rr := httptest.NewRecorder()
	h.Stats(rr, withIdentity(jsonRequest(t, http.MethodPost, "/api/v1/account/stats", map[string]string{"action": "stats"}), testIdentity))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if svc.action != "stats" {
		t.Fatalf("expected action stats, got %q", svc.action)
	}
	data := decodeBody(t, rr)["data"].(map[string]interface{})
	if data["stats"].(map[string]interface{})["total"] != float64(3) {
		t.Fatalf("unexpected stats %v", data)
	}
}
