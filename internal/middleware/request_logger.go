package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/euii-ii/ContentCapsule/internal/logger"
)

// RequestLogger puts a request-scoped zap logger on the context and logs one
// line per request. It expects chi's RequestID to run first.
func RequestLogger(base *logger.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := middleware.GetReqID(r.Context())
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(middleware.RequestIDHeader, requestID)

			reqLogger := base.With(
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
			)
			ctx := logger.WithContext(r.Context(), reqLogger)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []interface{}{
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
			}

			switch {
			case status >= 500:
				reqLogger.Error("HTTP request", fields...)
			case status >= 400:
				reqLogger.Warn("HTTP request", fields...)
			default:
				reqLogger.Info("HTTP request", fields...)
			}
		})
	}
}
