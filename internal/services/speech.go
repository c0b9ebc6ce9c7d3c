package services

import (
	"math"
	"regexp"
	"strings"
)

const wordsPerMinute = 150

type speechRule struct {
	re   *regexp.Regexp
	repl string
}

// Order matters: later rules assume earlier ones already ran.
var (
	speechMarkdownRules = []speechRule{
		{regexp.MustCompile(`(?m)^[ \t]*#{1,6}\s`), ""},
		{regexp.MustCompile(`\*\*(.*?)\*\*`), "$1"},
		{regexp.MustCompile(`\*(.*?)\*`), "$1"},
		{regexp.MustCompile("`(.*?)`"), "$1"},
		{regexp.MustCompile(`\[(.*?)\]\(.*?\)`), "$1"},
		{regexp.MustCompile(`(?m)^\s*[-*+]\s`), ""},
		{regexp.MustCompile(`(?m)^\s*\d+\.\s`), ""},
		{regexp.MustCompile(`\n{2,}`), ". "},
		{regexp.MustCompile(`\n`), " "},
		{regexp.MustCompile(`\s{2,}`), " "},
	}
	speechUnsafeChars = speechRule{regexp.MustCompile(`[^\w\s.,!?;:()\-]`), ""}
	speechSpaces      = speechRule{regexp.MustCompile(`\s{2,}`), " "}
	speechSentences   = speechRule{regexp.MustCompile(`([.!?])\s*([A-Z])`), "${1} ${2}"}
)

// PrepareForSpeech strips markdown and any character a synthesizer may read
// aloud literally.
func PrepareForSpeech(markdown string) string {
	return prepareSpeech(markdown, true)
}

// PrepareForSpeechClient keeps non-ASCII characters so the browser voice can
// pronounce them.
func PrepareForSpeechClient(markdown string) string {
	return prepareSpeech(markdown, false)
}

func prepareSpeech(text string, stripUnsafe bool) string {
	for _, r := range speechMarkdownRules {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	if stripUnsafe {
		text = speechUnsafeChars.re.ReplaceAllString(text, speechUnsafeChars.repl)
		// Stripped symbols leave their surrounding spaces behind.
		text = speechSpaces.re.ReplaceAllString(text, speechSpaces.repl)
	}
	text = speechSentences.re.ReplaceAllString(text, speechSentences.repl)
	return strings.TrimSpace(text)
}

// EstimateDurationSeconds approximates spoken length at 150 words per minute
// scaled by speed. A non-positive speed counts as 1.0.
func EstimateDurationSeconds(text string, speed float64) int {
	if speed <= 0 {
		speed = 1.0
	}
	words := len(strings.Fields(text))
	minutes := float64(words) / (wordsPerMinute * speed)
	return int(math.Round(minutes * 60))
}
