package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/euii-ii/ContentCapsule/internal/logger"
	"github.com/euii-ii/ContentCapsule/internal/models"
	"github.com/euii-ii/ContentCapsule/internal/services"
)

type generationRunner interface {
	Run(ctx context.Context, req models.GenerationRequest) (*models.GeneratedArtifact, error)
}

// GenerationChains holds the full fallback chain and one single-path chain per
// explicit endpoint.
type GenerationChains struct {
	Fallback generationRunner
	Enhanced generationRunner
	Standard generationRunner
	Mock     generationRunner
}

type GenerateHandler struct {
	chains   GenerationChains
	accounts accountEnsurer
	history  historyWriter
	pool     sideEffects
	now      func() time.Time
}

func NewGenerateHandler(chains GenerationChains, accounts accountEnsurer, history historyWriter, pool sideEffects) *GenerateHandler {
	return &GenerateHandler{
		chains:   chains,
		accounts: accounts,
		history:  history,
		pool:     pool,
		now:      time.Now,
	}
}

// Generate runs enhanced, standard and mock in order.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.chains.Fallback)
}

func (h *GenerateHandler) Enhanced(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.chains.Enhanced)
}

func (h *GenerateHandler) Standard(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.chains.Standard)
}

func (h *GenerateHandler) Mock(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.chains.Mock)
}

func (h *GenerateHandler) run(w http.ResponseWriter, r *http.Request, chain generationRunner) {
	var req models.GenerateRequest
	if !decodeJSON(r, &req) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "YouTube URL is required", map[string]string{"url": "required"}, r))
		return
	}
	videoID, ok := services.ExtractVideoID(req.URL)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Invalid YouTube URL format. Please use a valid YouTube URL.", map[string]string{"url": "not a recognised YouTube URL"}, r))
		return
	}

	id, authed := identity(r)
	genReq := models.GenerationRequest{
		VideoURL:    req.URL,
		VideoID:     videoID,
		ContentType: req.Type,
		RequestedAt: h.now(),
	}
	if authed {
		genReq.Subject = id.ExternalID
	}

	// Provider calls outlive a disconnected client; the provider timeout bounds them.
	ctx := context.WithoutCancel(r.Context())
	artifact, err := chain.Run(ctx, genReq)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	saved := false
	if authed {
		saved = saveHistory(h.pool, h.accounts, h.history, id, "history.generation", generationHistory(req.URL, artifact))
		if !saved {
			logger.FromContext(r.Context()).Warn("generation history not queued", "video_id", videoID)
		}
	}

	writeJSON(w, http.StatusOK, generateResponse(artifact, saved))
}

func generateResponse(a *models.GeneratedArtifact, saved bool) models.GenerateResponse {
	resp := models.GenerateResponse{
		Content:          a.Content,
		VideoID:          a.VideoID,
		Type:             a.ContentType,
		TranscriptLength: a.TranscriptLength,
		GeneratorPath:    a.GeneratorPath,
		Saved:            saved,
	}
	switch a.GeneratorPath {
	case models.PathEnhanced:
		resp.Enhanced = true
		resp.ProcessingTimeMs = a.ProcessingTimeMs
		if m := a.Metadata; m != nil {
			resp.VideoMetadata = &models.VideoMetadataSummary{
				Title:        m.Title,
				ChannelTitle: m.ChannelTitle,
				PublishedAt:  m.PublishedAt,
				Duration:     m.Duration,
				ViewCount:    m.ViewCount,
				LikeCount:    m.LikeCount,
				Thumbnails:   m.Thumbnails,
			}
		}
	case models.PathMock:
		resp.Note = a.Note
	}
	return resp
}

func generationHistory(url string, a *models.GeneratedArtifact) models.HistoryInput {
	length := a.TranscriptLength
	meta := &models.HistoryMetadata{
		TranscriptLength: &length,
		APIUsed:          string(a.GeneratorPath),
	}
	if a.ProcessingTimeMs > 0 {
		ms := a.ProcessingTimeMs
		meta.ProcessingTimeMs = &ms
	}

	in := models.HistoryInput{
		VideoURL:    url,
		VideoTitle:  "YouTube Video " + a.VideoID,
		ContentType: a.ContentType,
		Content:     a.Content,
		Metadata:    meta,
	}
	if m := a.Metadata; m != nil {
		if m.Title != "" {
			in.VideoTitle = m.Title
		}
		in.ChannelName = strPtr(m.ChannelTitle)
		in.VideoDuration = strPtr(m.Duration)
		in.VideoThumbnail = strPtr(m.BestThumbnail())
		if m.ViewCount > 0 {
			in.VideoViews = strPtr(strconv.FormatUint(m.ViewCount, 10))
		}
	}
	return in
}
