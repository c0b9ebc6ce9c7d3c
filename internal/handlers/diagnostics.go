package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/euii-ii/ContentCapsule/internal/config"
	"github.com/euii-ii/ContentCapsule/internal/models"
	"github.com/euii-ii/ContentCapsule/internal/services"
	"github.com/euii-ii/ContentCapsule/internal/worker"
)

const llmHelloPrompt = "Say hello and confirm that the AI is working properly. Keep it short."

type keyChecker interface {
	Configured() bool
}

// HealthChecks probe optional dependencies; a nil check reports not-configured.
type HealthChecks struct {
	Database func(ctx context.Context) error
	Redis    func(ctx context.Context) error
	Workers  func() worker.Stats
}

type DiagnosticsHandler struct {
	transcripts services.TranscriptProvider
	metadata    services.MetadataFetcher
	keyCheck    keyChecker
	generator   *services.ContentGenerator
	presence    config.Presence
	checks      HealthChecks
	now         func() time.Time
}

func NewDiagnosticsHandler(
	transcripts services.TranscriptProvider,
	metadata services.MetadataFetcher,
	keyCheck keyChecker,
	generator *services.ContentGenerator,
	presence config.Presence,
	checks HealthChecks,
) *DiagnosticsHandler {
	return &DiagnosticsHandler{
		transcripts: transcripts,
		metadata:    metadata,
		keyCheck:    keyCheck,
		generator:   generator,
		presence:    presence,
		checks:      checks,
		now:         time.Now,
	}
}

// TranscriptTest makes a single caption fetch with no length threshold.
func (h *DiagnosticsHandler) TranscriptTest(w http.ResponseWriter, r *http.Request) {
	var req models.VideoURLRequest
	if !decodeJSON(r, &req) || strings.TrimSpace(req.URL) == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "YouTube URL is required", map[string]string{"url": "required"}, r))
		return
	}
	videoID, ok := services.ExtractVideoID(req.URL)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid YouTube URL format", r))
		return
	}

	segments, err := h.transcripts.FetchSegments(r.Context(), videoID)
	if err != nil {
		resp := errorResp("UPSTREAM_ERROR", "Failed to fetch transcript", r)
		resp.Details = err.Error()
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	text := strings.Join(segments, " ")
	preview := text
	if utf8.RuneCountInString(preview) > 200 {
		preview = string([]rune(preview)[:200])
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":           true,
		"videoId":           videoID,
		"transcriptLength":  utf8.RuneCountInString(text),
		"transcriptPreview": preview + "...",
		"totalSegments":     len(segments),
	})
}

// MetadataTest returns every Data API field the service reads.
func (h *DiagnosticsHandler) MetadataTest(w http.ResponseWriter, r *http.Request) {
	var req models.VideoURLRequest
	if !decodeJSON(r, &req) || strings.TrimSpace(req.URL) == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "YouTube URL is required", map[string]string{"url": "required"}, r))
		return
	}
	if h.keyCheck != nil && !h.keyCheck.Configured() {
		writeJSON(w, http.StatusInternalServerError, errorResp("CONFIG_ERROR", "YOUTUBE_API_KEY not found in environment variables", r))
		return
	}
	videoID, ok := services.ExtractVideoID(req.URL)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid YouTube URL format", r))
		return
	}

	meta, err := h.metadata.Fetch(r.Context(), videoID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	tags := meta.Tags
	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":              true,
		"videoId":              videoID,
		"title":                meta.Title,
		"description":          meta.Description,
		"channelTitle":         meta.ChannelTitle,
		"publishedAt":          meta.PublishedAt,
		"duration":             meta.Duration,
		"viewCount":            meta.ViewCount,
		"likeCount":            meta.LikeCount,
		"commentCount":         meta.CommentCount,
		"thumbnails":           meta.Thumbnails,
		"tags":                 tags,
		"categoryId":           meta.CategoryID,
		"defaultLanguage":      meta.DefaultLanguage,
		"defaultAudioLanguage": meta.DefaultAudioLanguage,
	})
}

// Health always answers 200; dependency failures are reported per service.
func (h *DiagnosticsHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	llm := "no-key"
	if h.generator != nil && h.generator.Configured() {
		llm = "available"
	}

	resp := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   h.now().UTC().Format(time.RFC3339),
		"environment": h.presence,
		"services": map[string]string{
			"database": probe(ctx, h.checks.Database),
			"redis":    probe(ctx, h.checks.Redis),
			"llm":      llm,
		},
	}
	if h.checks.Workers != nil {
		resp["sideEffects"] = h.checks.Workers()
	}
	writeJSON(w, http.StatusOK, resp)
}

func probe(ctx context.Context, check func(context.Context) error) string {
	if check == nil {
		return "not-configured"
	}
	if err := check(ctx); err != nil {
		return "error"
	}
	return "available"
}

func (h *DiagnosticsHandler) Models(w http.ResponseWriter, r *http.Request) {
	list, err := h.generator.ListModels(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	provider, _ := h.generator.Describe()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"provider": provider,
		"models":   list,
		"count":    len(list),
	})
}

// LLM sends a fixed hello prompt to confirm the provider answers.
func (h *DiagnosticsHandler) LLM(w http.ResponseWriter, r *http.Request) {
	content, err := h.generator.Complete(r.Context(), llmHelloPrompt)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	provider, model := h.generator.Describe()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"content":  content,
		"provider": provider,
		"model":    model,
		"message":  "LLM API is working correctly",
	})
}
