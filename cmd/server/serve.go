package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/euii-ii/ContentCapsule/internal/config"
	"github.com/euii-ii/ContentCapsule/internal/database"
	"github.com/euii-ii/ContentCapsule/internal/handlers"
	"github.com/euii-ii/ContentCapsule/internal/logger"
	"github.com/euii-ii/ContentCapsule/internal/middleware"
	"github.com/euii-ii/ContentCapsule/internal/repository"
	"github.com/euii-ii/ContentCapsule/internal/router"
	"github.com/euii-ii/ContentCapsule/internal/services"
	"github.com/euii-ii/ContentCapsule/internal/websocket"
	"github.com/euii-ii/ContentCapsule/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	log.Info("🚀 Starting ContentCapsule backend", "env", cfg.Env, "version", version)
	log.Info("✓ Environment variables loaded")

	// ──── Step 2: PostgreSQL (lazy; routes degrade while it is down) ────
	db := database.NewPostgres(cfg.DatabaseURL)
	defer db.Close()

	startCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	if pool, err := db.Pool(startCtx); err != nil {
		log.Warn("✗ PostgreSQL unavailable, will retry on first use", "error", err)
	} else {
		log.Info("✓ PostgreSQL connected")
		if cfg.AutoMigrate {
			if err := database.RunMigrations(startCtx, pool, database.Migrations, "migrations"); err != nil {
				cancel()
				log.Error("✗ Database migration failed", "error", err)
				return err
			}
			log.Info("✓ Database migrations applied")
		}
	}

	// ──── Step 3: Redis (optional) ────
	var cacheClient, pubsubClient *redis.Client
	if cfg.RedisURL != "" {
		redisClients, err := database.NewRedisClients(startCtx, cfg.RedisURL)
		if err != nil {
			log.Warn("✗ Redis connection failed, continuing without cache and pub/sub", "error", err)
		} else {
			defer redisClients.Close()
			cacheClient, pubsubClient = redisClients.Cache, redisClients.PubSub
			log.Info("✓ Redis connected")
		}
	}

	// ──── Step 4: LLM provider ────
	llm, err := services.NewLLM(startCtx, cfg)
	if err != nil {
		cancel()
		log.Error("✗ LLM client initialization failed", "provider", cfg.LLMProvider, "error", err)
		return err
	}
	if closer, ok := llm.(interface{ Close() }); ok {
		defer closer.Close()
	}
	if llm == nil {
		log.Warn("✗ LLM API key missing, generation will report a configuration error", "provider", cfg.LLMProvider)
	} else {
		log.Info("✓ LLM client initialized", "provider", llm.Provider(), "model", llm.Model())
	}
	limits := services.PromptLimits{TranscriptChars: cfg.PromptTranscriptChars, DescriptionChars: cfg.PromptDescChars}
	generator := services.NewContentGenerator(llm, cfg.LLMProvider, limits, cfg.ProviderTimeout)

	// ──── Step 5: YouTube metadata and transcripts ────
	dataAPI, err := services.NewDataAPIMetadataFetcher(startCtx, cfg.YouTubeAPIKey)
	cancel()
	if err != nil {
		log.Error("✗ YouTube Data API client failed", "error", err)
		return err
	}
	if dataAPI.Configured() {
		log.Info("✓ YouTube Data API configured")
	} else {
		log.Warn("✗ YOUTUBE_API_KEY missing, enhanced generation disabled")
	}
	metadata := services.NewCachedMetadataFetcher(dataAPI, cacheClient, cfg.MetadataCacheTTL, log)
	pageMetadata := services.NewPageMetadataFetcher()

	captions := services.NewYouTubeTranscriptProvider()
	transcripts := services.NewTranscriptRetriever(captions, cfg.TranscriptMaxAttempts, cfg.TranscriptMinLength, cfg.TranscriptBackoff, log)

	// ──── Step 6: Identity, websocket hub and generation updates ────
	auth := middleware.NewIdentityAuth(cfg.IdentityJWTSecret)
	wsHub := websocket.NewHub(pubsubClient, auth, log)

	var notifier services.GenerationNotifier = wsHub
	if cacheClient != nil {
		notifier = services.NewRedisNotifier(cacheClient)
	}

	enhanced := services.NewEnhancedStrategy(metadata, dataAPI, generator)
	standard := services.NewStandardStrategy(generator)
	mock := services.NewMockStrategy()
	chains := handlers.GenerationChains{
		Fallback: services.NewFallbackChain(transcripts, notifier, enhanced, standard, mock).WithBudget(cfg.GenerationBudget, cfg.FallbackReserve),
		Enhanced: services.NewFallbackChain(transcripts, notifier, enhanced).WithBudget(cfg.GenerationBudget, 0),
		Standard: services.NewFallbackChain(transcripts, notifier, standard).WithBudget(cfg.GenerationBudget, 0),
		Mock:     services.NewFallbackChain(transcripts, notifier, mock).WithBudget(cfg.GenerationBudget, 0),
	}

	// ──── Step 7: Accounts, history and side effects ────
	userRepo := repository.NewUserRepo(db)
	historyRepo := repository.NewHistoryRepo(db)
	accounts := services.NewAccountService(userRepo, historyRepo)
	history := services.NewHistoryRecorder(userRepo, historyRepo)

	sideEffects := worker.NewPool(cfg.SideEffectWorkers, 0, cfg.SideEffectTimeout, log)
	sideEffects.Start()
	log.Info("✓ Side-effect pool started", "workers", cfg.SideEffectWorkers)

	usageReset := services.NewUsageResetScheduler(userRepo, log)
	usageReset.Start()
	log.Info("✓ Usage reset scheduler started")

	// ──── Step 8: HTTP server ────
	checks := handlers.HealthChecks{
		Database: db.Ping,
		Workers:  sideEffects.Stats,
	}
	if cacheClient != nil {
		checks.Redis = func(ctx context.Context) error { return cacheClient.Ping(ctx).Err() }
	}

	r := router.New(auth, router.Handlers{
		Generate:    handlers.NewGenerateHandler(chains, accounts, history, sideEffects),
		Chat:        handlers.NewChatHandler(generator, transcripts, accounts, history, sideEffects),
		Notes:       handlers.NewNotesHandler(generator, transcripts, accounts, history, sideEffects),
		Speech:      handlers.NewSpeechHandler(),
		History:     handlers.NewHistoryHandler(history),
		Account:     handlers.NewAccountHandler(accounts),
		Videos:      handlers.NewVideosHandler(services.NewVideoResolver(metadata, dataAPI, pageMetadata)),
		Diagnostics: handlers.NewDiagnosticsHandler(captions, dataAPI, dataAPI, generator, cfg.Presence(), checks),
	}, wsHub, log, cfg.FrontendURL, cfg.RateLimitPerMinute)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("✓ ContentCapsule ready on http://localhost:%s", cfg.Port))
		log.Info(fmt.Sprintf("  API: http://localhost:%s/api/v1", cfg.Port))
		log.Info(fmt.Sprintf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	select {
	case err := <-serveErr:
		if err != nil {
			log.Error("Server error", "error", err)
			return err
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	usageReset.Stop()
	sideEffects.Stop()
	log.Info("✓ Shutdown complete", "sideEffects", sideEffects.Stats())
	return nil
}
