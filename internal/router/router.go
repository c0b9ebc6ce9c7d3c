package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/euii-ii/ContentCapsule/internal/handlers"
	"github.com/euii-ii/ContentCapsule/internal/logger"
	"github.com/euii-ii/ContentCapsule/internal/middleware"
	"github.com/euii-ii/ContentCapsule/internal/websocket"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Generate    *handlers.GenerateHandler
	Chat        *handlers.ChatHandler
	Notes       *handlers.NotesHandler
	Speech      *handlers.SpeechHandler
	History     *handlers.HistoryHandler
	Account     *handlers.AccountHandler
	Videos      *handlers.VideosHandler
	Diagnostics *handlers.DiagnosticsHandler
}

func New(
	auth *middleware.IdentityAuth,
	h Handlers,
	wsHub *websocket.Hub,
	log *logger.Logger,
	frontendURL string,
	rateLimitPerMinute int,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(frontendURL))

	// Generation and LLM routes share one per-IP budget
	llmLimiter := middleware.NewRateLimiter(rateLimitPerMinute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Generation (anonymous allowed, saved when signed in) ────
		r.Route("/generate", func(r chi.Router) {
			r.Use(llmLimiter.Middleware)
			r.Use(auth.Optional)
			r.Post("/", h.Generate.Generate)
			r.Post("/enhanced", h.Generate.Enhanced)
			r.Post("/standard", h.Generate.Standard)
			r.Post("/mock", h.Generate.Mock)
		})

		r.Group(func(r chi.Router) {
			r.Use(llmLimiter.Middleware)
			r.Use(auth.Optional)
			r.Post("/chat", h.Chat.Ask)
			r.Post("/notes", h.Notes.Handle)
		})

		// ──── Diagnostics (public) ────
		r.Post("/transcript/test", h.Diagnostics.TranscriptTest)
		r.Post("/metadata/test", h.Diagnostics.MetadataTest)
		r.Post("/videos/resolve", h.Videos.Resolve)

		r.Route("/diagnostics", func(r chi.Router) {
			r.Get("/health", h.Diagnostics.Health)
			r.Get("/models", h.Diagnostics.Models)
			r.With(llmLimiter.Middleware).Get("/llm", h.Diagnostics.LLM)
		})

		// ──── Speech ────
		r.Route("/speech", func(r chi.Router) {
			r.Use(auth.Middleware)
			r.Get("/", h.Speech.Info)
			r.Post("/prepare", h.Speech.Prepare)
		})

		// ──── History ────
		r.Route("/history", func(r chi.Router) {
			r.Use(auth.Middleware)
			r.Get("/", h.History.List)
			r.Post("/", h.History.Create)
			r.Delete("/", h.History.Delete)
		})

		// ──── Account ────
		r.Route("/account", func(r chi.Router) {
			r.Use(auth.Middleware)
			r.Get("/", h.Account.Get)
			r.Put("/", h.Account.Update)
			r.Post("/stats", h.Account.Stats)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
