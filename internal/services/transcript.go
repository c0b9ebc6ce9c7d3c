package services

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	ytapi "github.com/hightemp/youtube-transcript-api-go/api"

	"github.com/euii-ii/ContentCapsule/internal/logger"
	"github.com/euii-ii/ContentCapsule/internal/models"
	"github.com/euii-ii/ContentCapsule/internal/retry"
)

const (
	defaultTranscriptMessage = "Could not fetch video transcript. Please ensure the video has captions/subtitles available and is publicly accessible."
	transcriptSuggestion     = "Try again in a few moments, or try a different video with captions."
)

// TranscriptProvider returns the caption segments of a video in order.
type TranscriptProvider interface {
	FetchSegments(ctx context.Context, videoID string) ([]string, error)
}

// TranscriptError is returned once every attempt has failed.
type TranscriptError struct {
	VideoID    string
	Length     int
	Attempts   int
	Message    string
	Suggestion string
}

func (e *TranscriptError) Error() string { return e.Message }

type TranscriptRetriever struct {
	provider  TranscriptProvider
	retry     retry.Config
	minLength int
	log       *logger.Logger
}

func NewTranscriptRetriever(provider TranscriptProvider, maxAttempts, minLength int, backoff time.Duration, log *logger.Logger) *TranscriptRetriever {
	if log == nil {
		log = logger.Nop()
	}
	return &TranscriptRetriever{
		provider:  provider,
		retry:     retry.Config{MaxAttempts: maxAttempts, BaseDelay: backoff},
		minLength: minLength,
		log:       log,
	}
}

// WithSleep replaces the wait between attempts. Tests use it to skip real delays.
func (r *TranscriptRetriever) WithSleep(sleep func(context.Context, time.Duration) error) *TranscriptRetriever {
	r.retry.Sleep = sleep
	return r
}

type shortTranscriptError struct{ length int }

func (e *shortTranscriptError) Error() string {
	return fmt.Sprintf("Video transcript is too short or empty (%d characters). This video may not have sufficient captions available.", e.length)
}

// Fetch retrieves the transcript, retrying provider failures and texts shorter
// than the minimum length.
func (r *TranscriptRetriever) Fetch(ctx context.Context, videoID string) (*models.TranscriptResult, error) {
	var result *models.TranscriptResult
	lastLength := 0

	attempts, err := retry.Do(ctx, r.retry, nil, func(ctx context.Context, attempt int) error {
		segments, err := r.provider.FetchSegments(ctx, videoID)
		if err != nil {
			r.log.Warn("transcript attempt failed", "video_id", videoID, "attempt", attempt, "error", err)
			return err
		}
		text := strings.TrimSpace(strings.Join(segments, " "))
		lastLength = utf8.RuneCountInString(text)
		if lastLength < r.minLength {
			r.log.Warn("transcript too short", "video_id", videoID, "attempt", attempt, "length", lastLength)
			return &shortTranscriptError{length: lastLength}
		}
		result = &models.TranscriptResult{
			Text:         text,
			LengthChars:  lastLength,
			SegmentCount: len(segments),
			Attempts:     attempt,
		}
		return nil
	})
	if err == nil {
		return result, nil
	}

	msg := err.Error()
	if msg == "" {
		msg = defaultTranscriptMessage
	}
	return nil, &TranscriptError{
		VideoID:    videoID,
		Length:     lastLength,
		Attempts:   attempts,
		Message:    msg,
		Suggestion: transcriptSuggestion,
	}
}

// FetchOnce makes a single attempt and tolerates short text. Chat and notes use
// it for best-effort context.
func (r *TranscriptRetriever) FetchOnce(ctx context.Context, videoID string) (string, error) {
	segments, err := r.provider.FetchSegments(ctx, videoID)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Join(segments, " ")), nil
}

// YouTubeTranscriptProvider reads captions through the transcript API and falls
// back to the legacy timedtext track listed in the watch page.
type YouTubeTranscriptProvider struct {
	httpClient    *http.Client
	transcriptAPI *ytapi.YouTubeTranscriptApi
}

type timedTextXML struct {
	XMLName xml.Name  `xml:"transcript"`
	Texts   []textXML `xml:"text"`
}

type textXML struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

func NewYouTubeTranscriptProvider() *YouTubeTranscriptProvider {
	return &YouTubeTranscriptProvider{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		transcriptAPI: ytapi.NewYouTubeTranscriptApi(),
	}
}

func (p *YouTubeTranscriptProvider) FetchSegments(ctx context.Context, videoID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	transcript, err := p.transcriptAPI.GetTranscript(videoID, []string{"en", "en-US", "en-GB"})
	if err != nil {
		// Fallback: request any available language
		transcript, err = p.transcriptAPI.GetTranscript(videoID, nil)
		if err != nil {
			segments, legacyErr := p.segmentsViaTimedText(ctx, videoID)
			if legacyErr == nil {
				return segments, nil
			}
			return nil, fmt.Errorf("no subtitles available via transcript API (%v) and timedtext fallback failed (%v)", err, legacyErr)
		}
	}

	segments := make([]string, 0, len(transcript.Entries))
	for _, entry := range transcript.Entries {
		text := strings.TrimSpace(html.UnescapeString(entry.Text))
		if text == "" {
			continue
		}
		segments = append(segments, text)
	}
	return segments, nil
}

func (p *YouTubeTranscriptProvider) segmentsViaTimedText(ctx context.Context, videoID string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, WatchURL(videoID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch YouTube page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read YouTube page: %w", err)
	}

	captionURL, err := extractCaptionURL(string(body))
	if err != nil {
		return nil, err
	}

	captionReq, err := http.NewRequestWithContext(ctx, http.MethodGet, captionURL, nil)
	if err != nil {
		return nil, err
	}
	captionResp, err := p.httpClient.Do(captionReq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch captions: %w", err)
	}
	defer captionResp.Body.Close()

	captionBody, err := io.ReadAll(captionResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read captions: %w", err)
	}

	segments, err := parseCaptionsXML(captionBody)
	if err != nil {
		return nil, fmt.Errorf("failed to parse captions XML: %w", err)
	}
	return segments, nil
}

var (
	captionTracksRe    = regexp.MustCompile(`"captionTracks"\s*:\s*\[(.*?)\],\s*"`)
	captionTracklistRe = regexp.MustCompile(`"playerCaptionsTracklistRenderer"\s*:\s*\{(?:.*?,)?\s*"captionTracks"\s*:\s*\[(.*?)\],\s*"`)
	captionBaseURLRe   = regexp.MustCompile(`"baseUrl"\s*:\s*"(.*?)"`)
)

func extractCaptionURL(pageHTML string) (string, error) {
	matches := captionTracksRe.FindStringSubmatch(pageHTML)
	if len(matches) < 2 {
		matches = captionTracklistRe.FindStringSubmatch(pageHTML)
		if len(matches) < 2 {
			return "", fmt.Errorf("no captions available for this video")
		}
	}

	urlMatches := captionBaseURLRe.FindStringSubmatch(matches[1])
	if len(urlMatches) < 2 {
		return "", fmt.Errorf("caption track found but baseUrl missing")
	}

	u := urlMatches[1]
	u = strings.ReplaceAll(u, `\u0026`, "&")
	u = strings.ReplaceAll(u, `\/`, "/")
	return u, nil
}

func parseCaptionsXML(data []byte) ([]string, error) {
	var tt timedTextXML
	if err := xml.Unmarshal(data, &tt); err != nil {
		return nil, err
	}

	var parts []string
	for _, t := range tt.Texts {
		text := strings.TrimSpace(html.UnescapeString(t.Text))
		if text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("captions XML empty")
	}
	return parts, nil
}
