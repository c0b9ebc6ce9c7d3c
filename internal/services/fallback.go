package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/euii-ii/ContentCapsule/internal/logger"
	"github.com/euii-ii/ContentCapsule/internal/models"
)

// TranscriptSource is the part of TranscriptRetriever the strategies need.
type TranscriptSource interface {
	Fetch(ctx context.Context, videoID string) (*models.TranscriptResult, error)
}

// Strategy is one way of producing an artifact.
type Strategy interface {
	Path() models.GeneratorPath
	Attempt(ctx context.Context, req models.GenerationRequest, transcripts TranscriptSource) (*models.GeneratedArtifact, error)
}

// configurable is implemented by fetchers that can be missing credentials.
type configurable interface {
	Configured() bool
}

// EnhancedStrategy uses metadata and transcript.
type EnhancedStrategy struct {
	metadata  MetadataFetcher
	generator *ContentGenerator
	keyCheck  configurable
}

// NewEnhancedStrategy takes the Data API fetcher separately so a missing key is
// reported before any network call, even when metadata is cached.
func NewEnhancedStrategy(metadata MetadataFetcher, dataAPI configurable, generator *ContentGenerator) *EnhancedStrategy {
	return &EnhancedStrategy{metadata: metadata, generator: generator, keyCheck: dataAPI}
}

func (s *EnhancedStrategy) Path() models.GeneratorPath { return models.PathEnhanced }

func (s *EnhancedStrategy) Attempt(ctx context.Context, req models.GenerationRequest, transcripts TranscriptSource) (*models.GeneratedArtifact, error) {
	if s.keyCheck != nil && !s.keyCheck.Configured() {
		return nil, &MetadataError{
			Kind:    MetadataConfig,
			Message: "YOUTUBE_API_KEY not found in environment variables",
			VideoID: req.VideoID,
		}
	}
	if !s.generator.Configured() {
		return nil, s.generator.configError()
	}

	meta, err := s.metadata.Fetch(ctx, req.VideoID)
	if err != nil {
		return nil, err
	}

	tr, err := transcripts.Fetch(ctx, req.VideoID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	content, err := s.generator.Generate(ctx, req.ContentType, tr.Text, meta)
	if err != nil {
		return nil, err
	}

	return &models.GeneratedArtifact{
		Content:          content,
		ContentType:      req.ContentType,
		VideoID:          req.VideoID,
		GeneratorPath:    models.PathEnhanced,
		TranscriptLength: tr.LengthChars,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Metadata:         meta,
	}, nil
}

// StandardStrategy uses the transcript alone.
type StandardStrategy struct {
	generator *ContentGenerator
}

func NewStandardStrategy(generator *ContentGenerator) *StandardStrategy {
	return &StandardStrategy{generator: generator}
}

func (s *StandardStrategy) Path() models.GeneratorPath { return models.PathStandard }

func (s *StandardStrategy) Attempt(ctx context.Context, req models.GenerationRequest, transcripts TranscriptSource) (*models.GeneratedArtifact, error) {
	if !s.generator.Configured() {
		return nil, s.generator.configError()
	}

	tr, err := transcripts.Fetch(ctx, req.VideoID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	content, err := s.generator.Generate(ctx, req.ContentType, tr.Text, nil)
	if err != nil {
		return nil, err
	}

	return &models.GeneratedArtifact{
		Content:          content,
		ContentType:      req.ContentType,
		VideoID:          req.VideoID,
		GeneratorPath:    models.PathStandard,
		TranscriptLength: tr.LengthChars,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

// MockStrategy renders templates and never calls a provider.
type MockStrategy struct {
	now func() time.Time
}

func NewMockStrategy() *MockStrategy {
	return &MockStrategy{now: time.Now}
}

func (s *MockStrategy) Path() models.GeneratorPath { return models.PathMock }

func (s *MockStrategy) Attempt(ctx context.Context, req models.GenerationRequest, transcripts TranscriptSource) (*models.GeneratedArtifact, error) {
	tr, err := transcripts.Fetch(ctx, req.VideoID)
	if err != nil {
		return nil, err
	}

	content, err := RenderMockContent(req.ContentType, tr.Text, s.now())
	if err != nil {
		return nil, err
	}

	return &models.GeneratedArtifact{
		Content:          content,
		ContentType:      req.ContentType,
		VideoID:          req.VideoID,
		GeneratorPath:    models.PathMock,
		TranscriptLength: tr.LengthChars,
		Note:             MockNote,
	}, nil
}

// memoTranscripts fetches a transcript at most once per chain run, so later
// strategies reuse the first outcome instead of repeating the retry budget.
// An attempt cut short by its own deadline is not remembered.
type memoTranscripts struct {
	inner  TranscriptSource
	mu     sync.Mutex
	done   bool
	result *models.TranscriptResult
	err    error
}

func (m *memoTranscripts) Fetch(ctx context.Context, videoID string) (*models.TranscriptResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return m.result, m.err
	}
	result, err := m.inner.Fetch(ctx, videoID)
	if err != nil && ctx.Err() != nil {
		return nil, err
	}
	m.result, m.err, m.done = result, err, true
	return result, err
}

// FallbackChain tries enhanced, standard and mock in order.
type FallbackChain struct {
	strategies  []Strategy
	transcripts TranscriptSource
	notifier    GenerationNotifier
	budget      time.Duration
	reserve     time.Duration
}

func NewFallbackChain(transcripts TranscriptSource, notifier GenerationNotifier, strategies ...Strategy) *FallbackChain {
	return &FallbackChain{strategies: strategies, transcripts: transcripts, notifier: notifier}
}

// WithBudget bounds a run. Every strategy but the last shares budget; the last
// one gets reserve of its own so the fallback still answers after a provider
// hangs. A single-strategy chain runs entirely under budget.
func (c *FallbackChain) WithBudget(budget, reserve time.Duration) *FallbackChain {
	c.budget = budget
	c.reserve = reserve
	return c
}

// attemptContext returns the context strategy i runs under.
func (c *FallbackChain) attemptContext(ctx, shared context.Context, i int) (context.Context, context.CancelFunc) {
	if i < len(c.strategies)-1 || len(c.strategies) == 1 {
		return shared, func() {}
	}
	if c.reserve > 0 {
		return context.WithTimeout(ctx, c.reserve)
	}
	return ctx, func() {}
}

// Run returns the first successful artifact or, if every strategy fails, the
// last error. Validation errors stop the chain immediately.
func (c *FallbackChain) Run(ctx context.Context, req models.GenerationRequest) (*models.GeneratedArtifact, error) {
	if !req.ContentType.Generatable() {
		return nil, invalidTypeError()
	}

	log := logger.FromContext(ctx).With("video_id", req.VideoID, "type", req.ContentType)
	transcripts := &memoTranscripts{inner: c.transcripts}
	total := len(c.strategies)

	shared := ctx
	if c.budget > 0 {
		var cancel context.CancelFunc
		shared, cancel = context.WithTimeout(ctx, c.budget)
		defer cancel()
	}

	var lastErr error
	for i, s := range c.strategies {
		event := models.GenerationEvent{
			VideoID:     req.VideoID,
			ContentType: req.ContentType,
			Path:        s.Path(),
			Step:        i + 1,
			TotalSteps:  total,
		}
		c.publish(ctx, req.Subject, "path_started", event)

		attemptCtx, cancel := c.attemptContext(ctx, shared, i)
		artifact, err := s.Attempt(attemptCtx, req, transcripts)
		cancel()
		if err == nil {
			c.publish(ctx, req.Subject, "completed", event)
			log.Info("generation path succeeded", "path", s.Path())
			return artifact, nil
		}

		lastErr = err
		event.Error = err.Error()
		c.publish(ctx, req.Subject, "path_failed", event)
		log.Warn("generation path failed", "path", s.Path(), "error", err)

		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
	}

	if lastErr == nil {
		lastErr = &ConfigError{Message: "no generation paths configured"}
	}
	return nil, lastErr
}

func (c *FallbackChain) publish(ctx context.Context, subject, kind string, event models.GenerationEvent) {
	if c.notifier == nil || subject == "" {
		return
	}
	c.notifier.Publish(ctx, subject, models.WSMessage{Type: kind, Payload: event})
}
