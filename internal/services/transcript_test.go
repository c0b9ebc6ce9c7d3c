package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type scriptedTranscripts struct {
	calls   int
	results []transcriptStep
}

type transcriptStep struct {
	segments []string
	err      error
}

func (s *scriptedTranscripts) FetchSegments(ctx context.Context, videoID string) ([]string, error) {
	idx := s.calls
	if idx >= len(s.results) {
		idx = len(s.results) - 1
	}
	s.calls++
	return s.results[idx].segments, s.results[idx].err
}

type recordedWaits struct {
	waits []time.Duration
}

func (r *recordedWaits) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func newTestRetriever(p TranscriptProvider, waits *recordedWaits) *TranscriptRetriever {
	return NewTranscriptRetriever(p, 3, 50, time.Second, nil).WithSleep(waits.sleep)
}

func TestTranscriptRetriever_SucceedsAfterTwoFailures(t *testing.T) {
	long := strings.Repeat("a", 500)
	provider := &scriptedTranscripts{results: []transcriptStep{
		{err: errors.New("rate limited")},
		{err: errors.New("rate limited")},
		{segments: []string{long}},
	}}
	waits := &recordedWaits{}

	result, err := newTestRetriever(provider, waits).Fetch(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", result.Attempts)
	}
	if result.LengthChars != 500 {
		t.Fatalf("expected length 500, got %d", result.LengthChars)
	}
	if len(waits.waits) != 2 || waits.waits[0] != time.Second || waits.waits[1] != 2*time.Second {
		t.Fatalf("expected waits [1s 2s], got %v", waits.waits)
	}
}

func TestTranscriptRetriever_FirstAttemptSuccess(t *testing.T) {
	provider := &scriptedTranscripts{results: []transcriptStep{
		{segments: []string{strings.Repeat("word ", 100)}},
	}}
	waits := &recordedWaits{}

	result, err := newTestRetriever(provider, waits).Fetch(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", result.Attempts)
	}
	if len(waits.waits) != 0 {
		t.Fatalf("expected no waits, got %v", waits.waits)
	}
	if strings.HasSuffix(result.Text, " ") {
		t.Fatal("expected trimmed transcript")
	}
}

func TestTranscriptRetriever_JoinsSegmentsWithSingleSpace(t *testing.T) {
	provider := &scriptedTranscripts{results: []transcriptStep{
		{segments: []string{strings.Repeat("x", 30), strings.Repeat("y", 30)}},
	}}

	result, err := newTestRetriever(provider, &recordedWaits{}).Fetch(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.LengthChars != 61 {
		t.Fatalf("expected length 61, got %d", result.LengthChars)
	}
	if result.SegmentCount != 2 {
		t.Fatalf("expected 2 segments, got %d", result.SegmentCount)
	}
}

func TestTranscriptRetriever_TooShortAfterAllAttempts(t *testing.T) {
	provider := &scriptedTranscripts{results: []transcriptStep{
		{segments: []string{"hello world"}},
	}}
	waits := &recordedWaits{}

	_, err := newTestRetriever(provider, waits).Fetch(context.Background(), "dQw4w9WgXcQ")
	var terr *TranscriptError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TranscriptError, got %v", err)
	}
	if terr.Length != 11 {
		t.Fatalf("expected length 11, got %d", terr.Length)
	}
	if terr.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", terr.Attempts)
	}
	if !strings.Contains(terr.Message, "too short or empty (11 characters)") {
		t.Fatalf("unexpected message: %s", terr.Message)
	}
	if terr.Suggestion != transcriptSuggestion {
		t.Fatalf("unexpected suggestion: %s", terr.Suggestion)
	}
	if len(waits.waits) != 2 {
		t.Fatalf("expected 2 waits, got %d", len(waits.waits))
	}
}

func TestTranscriptRetriever_LastProviderErrorWins(t *testing.T) {
	provider := &scriptedTranscripts{results: []transcriptStep{
		{segments: []string{"short"}},
		{err: errors.New("first failure")},
		{err: errors.New("captions disabled")},
	}}

	_, err := newTestRetriever(provider, &recordedWaits{}).Fetch(context.Background(), "dQw4w9WgXcQ")
	var terr *TranscriptError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TranscriptError, got %v", err)
	}
	if terr.Message != "captions disabled" {
		t.Fatalf("expected last provider message, got %q", terr.Message)
	}
	if terr.Length != 5 {
		t.Fatalf("expected length of the short attempt (5), got %d", terr.Length)
	}
}

func TestTranscriptRetriever_EmptyProviderMessageUsesDefault(t *testing.T) {
	provider := &scriptedTranscripts{results: []transcriptStep{{err: errors.New("")}}}

	_, err := newTestRetriever(provider, &recordedWaits{}).Fetch(context.Background(), "dQw4w9WgXcQ")
	var terr *TranscriptError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TranscriptError, got %v", err)
	}
	if terr.Message != defaultTranscriptMessage {
		t.Fatalf("expected default message, got %q", terr.Message)
	}
}

func TestTranscriptRetriever_ContextCancelStopsWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	provider := &scriptedTranscripts{results: []transcriptStep{{err: errors.New("unavailable")}}}
	r := NewTranscriptRetriever(provider, 3, 50, time.Hour, nil)

	cancel()
	_, err := r.Fetch(ctx, "dQw4w9WgXcQ")
	var terr *TranscriptError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TranscriptError, got %v", err)
	}
	if terr.Attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", terr.Attempts)
	}
}

func TestParseCaptionsXML(t *testing.T) {
	data := []byte(`<transcript><text start="0" dur="1">Hello &amp;amp; welcome</text><text start="1" dur="1">  </text><text start="2" dur="1">to the show</text></transcript>`)
	parts, err := parseCaptionsXML(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if parts[0] != "Hello & welcome" {
		t.Fatalf("unexpected first part %q", parts[0])
	}

	if _, err := parseCaptionsXML([]byte(`<transcript></transcript>`)); err == nil {
		t.Fatal("expected error for empty captions")
	}
}

func TestExtractCaptionURL(t *testing.T) {
	page := `..."captionTracks":[{"baseUrl":"https:\/\/www.youtube.com\/api\/timedtext?v=abc&lang=en","name":{}}],"audioTracks"...`
	got, err := extractCaptionURL(page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "https://www.youtube.com/api/timedtext?v=abc&lang=en"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	if _, err := extractCaptionURL("<html></html>"); err == nil {
		t.Fatal("expected error when no captions")
	}
}

func TestTranscriptRetriever_KeepsLastObservedLengthAfterError(t *testing.T) {
	provider := &scriptedTranscripts{results: []transcriptStep{
		{err: errors.New("network down")},
		{segments: []string{"too short"}},
		{err: errors.New("network down")},
	}}

	_, err := newTestRetriever(provider, &recordedWaits{}).Fetch(context.Background(), "dQw4w9WgXcQ")
	var terr *TranscriptError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TranscriptError, got %v", err)
	}
	if terr.Length != 9 {
		t.Fatalf("expected length from the short attempt (9), got %d", terr.Length)
	}
	if terr.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", terr.Attempts)
	}
}
