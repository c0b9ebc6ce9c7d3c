package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/euii-ii/ContentCapsule/internal/database"
	"github.com/euii-ii/ContentCapsule/internal/middleware"
	"github.com/euii-ii/ContentCapsule/internal/models"
	"github.com/euii-ii/ContentCapsule/internal/services"
	"github.com/euii-ii/ContentCapsule/internal/worker"
)

const testVideoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

var testIdentity = models.Identity{ExternalID: "user_123", Email: "ada@example.com", FirstName: "Ada"}

// ─── Shared stubs ───

// recordingPool runs submitted tasks inline so assertions can follow the request.
type recordingPool struct {
	mu     sync.Mutex
	names  []string
	errs   []error
	reject bool
}

func (p *recordingPool) Submit(name string, fn worker.Task) bool {
	if p.reject {
		return false
	}
	err := fn(context.Background())
	p.mu.Lock()
	p.names = append(p.names, name)
	p.errs = append(p.errs, err)
	p.mu.Unlock()
	return true
}

type stubAccounts struct {
	ensured []string
	err     error
}

func (s *stubAccounts) Ensure(ctx context.Context, id models.Identity) (*models.User, error) {
	s.ensured = append(s.ensured, id.ExternalID)
	if s.err != nil {
		return nil, s.err
	}
	return models.NewUserFromIdentity(id, time.Now()), nil
}

type stubHistoryWriter struct {
	inputs []models.HistoryInput
	err    error
}

func (s *stubHistoryWriter) Record(ctx context.Context, id models.Identity, in models.HistoryInput) (*models.HistoryEntry, error) {
	s.inputs = append(s.inputs, in)
	if s.err != nil {
		return nil, s.err
	}
	return &models.HistoryEntry{VideoURL: in.VideoURL, VideoTitle: in.VideoTitle, ContentType: in.ContentType, Content: in.Content}, nil
}

type stubLLM struct {
	prompts []string
	reply   string
	err     error
	list    []models.ModelInfo
}

func (s *stubLLM) Generate(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}
func (s *stubLLM) Provider() string { return "stub" }
func (s *stubLLM) Model() string    { return "stub-1" }
func (s *stubLLM) ListModels(ctx context.Context) ([]models.ModelInfo, error) {
	return s.list, s.err
}

func newGenerator(llm services.LLM) *services.ContentGenerator {
	return services.NewContentGenerator(llm, "gemini", services.DefaultPromptLimits(), time.Second)
}

type stubContext struct {
	text  string
	err   error
	calls int
}

func (s *stubContext) FetchOnce(ctx context.Context, videoID string) (string, error) {
	s.calls++
	return s.text, s.err
}

// ─── Request helpers ───

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withIdentity(req *http.Request, id models.Identity) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), middleware.IdentityKey, id))
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, code, message string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["code"] != code {
		t.Fatalf("expected code %s, got %v", code, body["code"])
	}
	if message != "" && body["error"] != message {
		t.Fatalf("expected error %q, got %v", message, body["error"])
	}
}

// ─── Error mapping ───

func TestHandleServiceError_Mapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &services.ValidationError{Message: "bad"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", &services.NotFoundError{Message: "gone"}, http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", &services.UnauthorizedError{Message: "Unauthorized"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"config", &services.ConfigError{Message: "GEMINI_API_KEY not found in environment variables"}, http.StatusInternalServerError, "CONFIG_ERROR"},
		{"upstream", &services.UpstreamError{Message: "LLM provider request failed"}, http.StatusInternalServerError, "UPSTREAM_ERROR"},
		{"metadata not found", &services.MetadataError{Kind: services.MetadataNotFound, Message: "Video not found"}, http.StatusNotFound, "NOT_FOUND"},
		{"store down", &services.PersistenceError{Op: "load user", Err: fmt.Errorf("%w: connection refused", database.ErrUnavailable)}, http.StatusServiceUnavailable, "DATABASE_UNAVAILABLE"},
		{"unknown", context.DeadlineExceeded, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handleServiceError(rr, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
			expectError(t, rr, tc.status, tc.code, "")
		})
	}
}

func TestHandleServiceError_TranscriptFields(t *testing.T) {
	rr := httptest.NewRecorder()
	err := &services.TranscriptError{VideoID: "dQw4w9WgXcQ", Length: 12, Attempts: 3, Message: "Transcript too short", Suggestion: "Try another video"}
	handleServiceError(rr, httptest.NewRequest(http.MethodPost, "/", nil), err)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	body := decodeBody(t, rr)
	if body["transcriptLength"] != float64(12) || body["videoId"] != "dQw4w9WgXcQ" || body["suggestion"] != "Try another video" {
		t.Fatalf("expected transcript details, got %v", body)
	}
}
