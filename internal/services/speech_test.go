package services

import (
	"strings"
	"testing"
)

const sampleMarkdown = `# Study Guide

## Main Topics
**Bold point** and *italic aside* with ` + "`code`" + ` and a [link](https://example.com).

- first bullet
* second bullet
+ third bullet

1. numbered one
2. numbered two

Sentence one.Sentence two!Another one`

func TestPrepareForSpeech(t *testing.T) {
	got := PrepareForSpeech(sampleMarkdown)

	for _, unwanted := range []string{"#", "**", "*", "`", "[", "](", "\n", "  "} {
		if strings.Contains(got, unwanted) {
			t.Fatalf("expected %q to be removed, got %q", unwanted, got)
		}
	}
	for _, want := range []string{"Study Guide", "Bold point and italic aside with code and a link.", "Sentence one. Sentence two! Another one"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}
	if strings.HasPrefix(got, " ") || strings.HasSuffix(got, " ") {
		t.Fatalf("expected trimmed output, got %q", got)
	}
}

func TestPrepareForSpeech_Idempotent(t *testing.T) {
	inputs := []string{
		sampleMarkdown,
		"### Heading\n\n**bold** *it* [a](b)\n- x\n- y",
		"Plain text with no markdown.",
		"## Q & A\n\n- **Tom & Jerry** 🎉 rocks",
		"Costs 5 € → 10 € today",
		"",
	}
	for _, in := range inputs {
		once := PrepareForSpeech(in)
		twice := PrepareForSpeech(once)
		if once != twice {
			t.Fatalf("not idempotent:\nonce:  %q\ntwice: %q", once, twice)
		}
	}
}

func TestPrepareForSpeech_StrippedSymbolsLeaveSingleSpaces(t *testing.T) {
	got := PrepareForSpeech("## Q & A\n\n- **Tom & Jerry** 🎉 rocks")
	if got != "Q A Tom Jerry rocks" {
		t.Fatalf("expected single spaces, got %q", got)
	}
}

func TestPrepareForSpeech_HashInsideWordKept(t *testing.T) {
	got := PrepareForSpeechClient("Learn C# basics")
	if got != "Learn C# basics" {
		t.Fatalf("expected inline hash kept in client variant, got %q", got)
	}
}

func TestPrepareForSpeech_UnsafeCharacters(t *testing.T) {
	in := "Café → naïve & <tags> 100% (ok)"
	server := PrepareForSpeech(in)
	if strings.ContainsAny(server, "→&<>%é") {
		t.Fatalf("expected unsafe characters removed, got %q", server)
	}
	if !strings.Contains(server, "(ok)") {
		t.Fatalf("expected parentheses kept, got %q", server)
	}

	client := PrepareForSpeechClient(in)
	if !strings.Contains(client, "Café") {
		t.Fatalf("expected client variant to keep accents, got %q", client)
	}
}

func TestEstimateDurationSeconds(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("word ", 300))

	tests := []struct {
		speed float64
		want  int
	}{
		{1.0, 120},
		{2.0, 60},
		{0.5, 240},
		{0, 120},
		{-1, 120},
	}
	for _, tc := range tests {
		if got := EstimateDurationSeconds(text, tc.speed); got != tc.want {
			t.Errorf("EstimateDurationSeconds(speed=%v) = %d, want %d", tc.speed, got, tc.want)
		}
	}

	if got := EstimateDurationSeconds("", 1); got != 0 {
		t.Fatalf("expected 0 for empty text, got %d", got)
	}
}

func TestEstimateDurationSeconds_SpeedScaling(t *testing.T) {
	for _, words := range []int{10, 75, 151, 1000} {
		text := strings.Repeat("w ", words)
		normal := EstimateDurationSeconds(text, 1.0)
		fast := EstimateDurationSeconds(text, 2.0)
		diff := float64(normal)/2 - float64(fast)
		if diff < -1 || diff > 1 {
			t.Fatalf("words=%d: expected %d/2 ~= %d", words, normal, fast)
		}
	}
}
