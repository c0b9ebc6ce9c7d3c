package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/euii-ii/ContentCapsule/internal/logger"
	"github.com/euii-ii/ContentCapsule/internal/models"
	"github.com/euii-ii/ContentCapsule/internal/services"
)

// contextTranscripts fetches best-effort transcript context in one attempt.
type contextTranscripts interface {
	FetchOnce(ctx context.Context, videoID string) (string, error)
}

type ChatHandler struct {
	generator   *services.ContentGenerator
	transcripts contextTranscripts
	accounts    accountEnsurer
	history     historyWriter
	pool        sideEffects
}

func NewChatHandler(generator *services.ContentGenerator, transcripts contextTranscripts, accounts accountEnsurer, history historyWriter, pool sideEffects) *ChatHandler {
	return &ChatHandler{
		generator:   generator,
		transcripts: transcripts,
		accounts:    accounts,
		history:     history,
		pool:        pool,
	}
}

func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !decodeJSON(r, &req) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Message is required", map[string]string{"message": "required"}, r))
		return
	}
	if err := h.generator.CheckConfigured(); err != nil {
		handleServiceError(w, r, err)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	transcript := fetchContext(ctx, h.transcripts, req.VideoURL)

	prompt := services.BuildChatPrompt(req.Message, req.VideoURL, req.VideoTitle, transcript, h.generator.Limits())
	reply, err := h.generator.Complete(ctx, prompt)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if id, ok := identity(r); ok && req.VideoURL != "" && req.VideoTitle != "" {
		length := utf8.RuneCountInString(transcript)
		saveHistory(h.pool, h.accounts, h.history, id, "history.chat", models.HistoryInput{
			VideoURL:    req.VideoURL,
			VideoTitle:  req.VideoTitle,
			ContentType: models.ContentChat,
			Content:     fmt.Sprintf("**User Question:** %s\n\n**AI Response:** %s", req.Message, reply),
			Metadata: &models.HistoryMetadata{
				TranscriptLength: &length,
				APIUsed:          "chat",
				UserQuestion:     req.Message,
			},
		})
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{
		Response:        reply,
		HasVideoContext: transcript != "",
		VideoTitle:      strPtr(req.VideoTitle),
		VideoURL:        strPtr(req.VideoURL),
	})
}

// fetchContext returns "" when there is no video or captions cannot be read.
func fetchContext(ctx context.Context, transcripts contextTranscripts, videoURL string) string {
	if videoURL == "" || transcripts == nil {
		return ""
	}
	videoID, ok := services.ExtractVideoID(videoURL)
	if !ok {
		return ""
	}
	text, err := transcripts.FetchOnce(ctx, videoID)
	if err != nil {
		logger.FromContext(ctx).Warn("transcript context unavailable", "video_id", videoID, "error", err)
		return ""
	}
	return text
}
