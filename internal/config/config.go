package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port    string
	Env     string
	LogMode string

	// Database
	DatabaseURL string
	AutoMigrate bool

	// Redis (optional: metadata cache and generation updates)
	RedisURL string

	// Identity provider token verification
	IdentityJWTSecret string

	// LLM
	LLMProvider          string
	GeminiAPIKey         string
	GeminiModel          string
	GeminiConcurrentReqs int
	OpenAIAPIKey         string
	OpenAIModel          string

	// YouTube Data API
	YouTubeAPIKey    string
	MetadataCacheTTL time.Duration

	// Provider behaviour
	ProviderTimeout       time.Duration
	TranscriptMaxAttempts int
	TranscriptMinLength   int
	TranscriptBackoff     time.Duration
	PromptTranscriptChars int
	PromptDescChars       int

	// Generation run bounds; see WriteTimeout
	GenerationBudget time.Duration
	FallbackReserve  time.Duration

	// HTTP
	FrontendURL        string
	RateLimitPerMinute int

	// Side effects
	SideEffectWorkers int
	SideEffectTimeout time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                  getEnvOrDefault("PORT", "8080"),
		Env:                   getEnvOrDefault("ENV", "development"),
		LogMode:               getEnvOrDefault("LOG_MODE", "development"),
		DatabaseURL:           mustGetEnv("DATABASE_URL"),
		AutoMigrate:           getEnvAsBoolOrDefault("AUTO_MIGRATE", true),
		RedisURL:              getEnvOrDefault("REDIS_URL", ""),
		IdentityJWTSecret:     mustGetEnv("IDENTITY_JWT_SECRET"),
		LLMProvider:           strings.ToLower(getEnvOrDefault("LLM_PROVIDER", "gemini")),
		GeminiAPIKey:          getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:           getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiConcurrentReqs:  getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		OpenAIAPIKey:          getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIModel:           getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		YouTubeAPIKey:         getEnvOrDefault("YOUTUBE_API_KEY", ""),
		MetadataCacheTTL:      getEnvAsDurationOrDefault("METADATA_CACHE_TTL", time.Hour),
		ProviderTimeout:       getEnvAsDurationOrDefault("PROVIDER_TIMEOUT", 60*time.Second),
		TranscriptMaxAttempts: getEnvAsIntOrDefault("TRANSCRIPT_MAX_ATTEMPTS", 3),
		TranscriptMinLength:   getEnvAsIntOrDefault("TRANSCRIPT_MIN_LENGTH", 50),
		TranscriptBackoff:     getEnvAsDurationOrDefault("TRANSCRIPT_BACKOFF", time.Second),
		PromptTranscriptChars: getEnvAsIntOrDefault("PROMPT_TRANSCRIPT_CHARS", 8000),
		PromptDescChars:       getEnvAsIntOrDefault("PROMPT_DESCRIPTION_CHARS", 500),
		FrontendURL:           getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
		RateLimitPerMinute:    getEnvAsIntOrDefault("RATE_LIMIT_PER_MINUTE", 30),
		SideEffectWorkers:     getEnvAsIntOrDefault("SIDE_EFFECT_WORKERS", 4),
		SideEffectTimeout:     getEnvAsDurationOrDefault("SIDE_EFFECT_TIMEOUT", 30*time.Second),
		FallbackReserve:       getEnvAsDurationOrDefault("GENERATION_FALLBACK_RESERVE", 15*time.Second),
	}
	cfg.GenerationBudget = getEnvAsDurationOrDefault("GENERATION_BUDGET", defaultGenerationBudget(cfg))

	return cfg
}

// defaultGenerationBudget covers two provider calls plus the transcript retry
// schedule and a metadata lookup.
func defaultGenerationBudget(cfg *Config) time.Duration {
	backoff := time.Duration(0)
	for i := 1; i < cfg.TranscriptMaxAttempts; i++ {
		backoff += time.Duration(i) * cfg.TranscriptBackoff
	}
	return 2*cfg.ProviderTimeout + backoff + 15*time.Second
}

// WriteTimeout is long enough for a full fallback run to reach the client.
func (c *Config) WriteTimeout() time.Duration {
	return c.GenerationBudget + c.FallbackReserve + 10*time.Second
}

// LoadDatabaseURL reads only what the migrate command needs.
func LoadDatabaseURL() string {
	godotenv.Load()
	return mustGetEnv("DATABASE_URL")
}

// LoadLogMode reads LOG_MODE without requiring the server's secrets.
func LoadLogMode() string {
	godotenv.Load()
	return getEnvOrDefault("LOG_MODE", "development")
}

// Presence flags reported by the health endpoint. Values are never exposed.
type Presence struct {
	HasGeminiKey      bool   `json:"hasGeminiKey"`
	HasOpenAIKey      bool   `json:"hasOpenAIKey"`
	HasYouTubeKey     bool   `json:"hasYouTubeKey"`
	HasDatabaseURL    bool   `json:"hasDatabaseUrl"`
	HasRedisURL       bool   `json:"hasRedisUrl"`
	HasIdentitySecret bool   `json:"hasIdentityKeys"`
	LLMProvider       string `json:"llmProvider"`
	Env               string `json:"env"`
}

func (c *Config) Presence() Presence {
	return Presence{
		HasGeminiKey:      c.GeminiAPIKey != "",
		HasOpenAIKey:      c.OpenAIAPIKey != "",
		HasYouTubeKey:     c.YouTubeAPIKey != "",
		HasDatabaseURL:    c.DatabaseURL != "",
		HasRedisURL:       c.RedisURL != "",
		HasIdentitySecret: c.IdentityJWTSecret != "",
		LLMProvider:       c.LLMProvider,
		Env:               c.Env,
	}
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// getEnvAsDurationOrDefault accepts Go duration strings ("90s") or plain seconds ("90").
func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if n, err := strconv.Atoi(val); err == nil {
		return time.Duration(n) * time.Second
	}
	return defaultVal
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
