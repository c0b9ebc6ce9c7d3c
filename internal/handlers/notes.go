package handlers

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/euii-ii/ContentCapsule/internal/models"
	"github.com/euii-ii/ContentCapsule/internal/services"
)

const (
	noteSave    = "save"
	noteAnalyze = "analyze"
)

type NotesHandler struct {
	generator   *services.ContentGenerator
	transcripts contextTranscripts
	accounts    accountEnsurer
	history     historyWriter
	pool        sideEffects
}

func NewNotesHandler(generator *services.ContentGenerator, transcripts contextTranscripts, accounts accountEnsurer, history historyWriter, pool sideEffects) *NotesHandler {
	return &NotesHandler{
		generator:   generator,
		transcripts: transcripts,
		accounts:    accounts,
		history:     history,
		pool:        pool,
	}
}

func (h *NotesHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.NoteRequest
	if !decodeJSON(r, &req) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if strings.TrimSpace(req.Note) == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Note content is required", map[string]string{"note": "required"}, r))
		return
	}
	if strings.TrimSpace(req.VideoURL) == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Video URL is required", map[string]string{"videoUrl": "required"}, r))
		return
	}
	if req.Type == "" {
		req.Type = noteSave
	}

	switch req.Type {
	case noteAnalyze:
		h.analyze(w, r, req)
	case noteSave:
		h.save(w, r, req)
	default:
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", `Invalid type. Must be "save" or "analyze"`, map[string]string{"type": "must be save or analyze"}, r))
	}
}

func (h *NotesHandler) analyze(w http.ResponseWriter, r *http.Request, req models.NoteRequest) {
	if err := h.generator.CheckConfigured(); err != nil {
		handleServiceError(w, r, err)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	transcript := fetchContext(ctx, h.transcripts, req.VideoURL)

	prompt := services.BuildNoteAnalysisPrompt(req.Note, req.VideoURL, req.VideoTitle, transcript)
	analysis, err := h.generator.Complete(ctx, prompt)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if id, ok := identity(r); ok {
		length := utf8.RuneCountInString(transcript)
		saveHistory(h.pool, h.accounts, h.history, id, "history.note", models.HistoryInput{
			VideoURL:    req.VideoURL,
			VideoTitle:  noteTitle(req),
			ContentType: models.ContentNote,
			Content:     req.Note,
			Analysis:    &analysis,
			Metadata: &models.HistoryMetadata{
				TranscriptLength: &length,
				APIUsed:          "notes-analyze",
			},
		})
	}

	hasContext := transcript != ""
	writeJSON(w, http.StatusOK, models.NoteResponse{
		Success:         true,
		Note:            req.Note,
		Analysis:        &analysis,
		VideoTitle:      req.VideoTitle,
		VideoURL:        req.VideoURL,
		HasVideoContext: &hasContext,
		Type:            noteAnalyze,
	})
}

func (h *NotesHandler) save(w http.ResponseWriter, r *http.Request, req models.NoteRequest) {
	if id, ok := identity(r); ok {
		saveHistory(h.pool, h.accounts, h.history, id, "history.note", models.HistoryInput{
			VideoURL:    req.VideoURL,
			VideoTitle:  noteTitle(req),
			ContentType: models.ContentNote,
			Content:     req.Note,
			Metadata:    &models.HistoryMetadata{APIUsed: "notes-save"},
		})
	}

	writeJSON(w, http.StatusOK, models.NoteResponse{
		Success:    true,
		Note:       req.Note,
		VideoTitle: req.VideoTitle,
		VideoURL:   req.VideoURL,
		Message:    "Note saved successfully",
		Type:       noteSave,
	})
}

func noteTitle(req models.NoteRequest) string {
	if strings.TrimSpace(req.VideoTitle) != "" {
		return req.VideoTitle
	}
	if id, ok := services.ExtractVideoID(req.VideoURL); ok {
		return "YouTube Video " + id
	}
	return req.VideoURL
}
