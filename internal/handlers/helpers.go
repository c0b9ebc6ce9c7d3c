package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/euii-ii/ContentCapsule/internal/logger"
	"github.com/euii-ii/ContentCapsule/internal/middleware"
	"github.com/euii-ii/ContentCapsule/internal/models"
	"github.com/euii-ii/ContentCapsule/internal/services"
	"github.com/euii-ii/ContentCapsule/internal/worker"
)

// sideEffects runs work that must never fail or delay the response.
type sideEffects interface {
	Submit(name string, fn worker.Task) bool
}

// accountEnsurer creates the caller's profile on first sight.
type accountEnsurer interface {
	Ensure(ctx context.Context, id models.Identity) (*models.User, error)
}

type historyWriter interface {
	Record(ctx context.Context, id models.Identity, in models.HistoryInput) (*models.HistoryEntry, error)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: chimw.GetReqID(r.Context()),
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	resp := errorResp(code, message, r)
	resp.Fields = fields
	return resp
}

func decodeJSON(r *http.Request, v interface{}) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation   *services.ValidationError
		notFound     *services.NotFoundError
		unauthorized *services.UnauthorizedError
		transcript   *services.TranscriptError
		metadata     *services.MetadataError
		config       *services.ConfigError
		upstream     *services.UpstreamError
		persistence  *services.PersistenceError
	)

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", validation.Error(), validation.Fields, r))
	case errors.As(err, &notFound):
		resp := errorResp("NOT_FOUND", notFound.Message, r)
		resp.Details = notFound.Details
		writeJSON(w, http.StatusNotFound, resp)
	case errors.As(err, &unauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", unauthorized.Message, r))
	case errors.As(err, &transcript):
		resp := errorResp("TRANSCRIPT_UNAVAILABLE", transcript.Message, r)
		length := transcript.Length
		resp.TranscriptLength = &length
		resp.VideoID = transcript.VideoID
		resp.Suggestion = transcript.Suggestion
		writeJSON(w, http.StatusBadRequest, resp)
	case errors.As(err, &metadata):
		code := "UPSTREAM_ERROR"
		switch metadata.Kind {
		case services.MetadataNotFound:
			code = "NOT_FOUND"
		case services.MetadataConfig:
			code = "CONFIG_ERROR"
		}
		resp := errorResp(code, metadata.Message, r)
		resp.Details = metadata.Details
		resp.VideoID = metadata.VideoID
		writeJSON(w, metadata.HTTPStatus(), resp)
	case errors.As(err, &config):
		writeJSON(w, http.StatusInternalServerError, errorResp("CONFIG_ERROR", config.Message, r))
	case errors.As(err, &upstream):
		resp := errorResp("UPSTREAM_ERROR", upstream.Message, r)
		resp.Details = upstream.Details
		writeJSON(w, upstream.HTTPStatus(), resp)
	case errors.As(err, &persistence) && services.IsUnavailable(err):
		logger.FromContext(r.Context()).Error("store unavailable", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResp("DATABASE_UNAVAILABLE", "Database unavailable. Please try again later.", r))
	default:
		logger.FromContext(r.Context()).Error("unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}

// identity returns the caller, or the zero Identity for anonymous requests.
func identity(r *http.Request) (models.Identity, bool) {
	return middleware.GetIdentity(r.Context())
}

func requireIdentity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	id, ok := identity(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Unauthorized", r))
	}
	return id, ok
}

// saveHistory ensures the caller's profile exists and records in off the
// request path. It reports whether the save was queued.
func saveHistory(pool sideEffects, accounts accountEnsurer, history historyWriter, id models.Identity, name string, in models.HistoryInput) bool {
	if pool == nil || history == nil {
		return false
	}
	return pool.Submit(name, func(ctx context.Context) error {
		if accounts != nil {
			if _, err := accounts.Ensure(ctx, id); err != nil {
				return err
			}
		}
		_, err := history.Record(ctx, id, in)
		return err
	})
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
