package models

import "time"

type ContentType string

const (
	ContentStudyGuide  ContentType = "study-guide"
	ContentBriefingDoc ContentType = "briefing-doc"
	ContentNote        ContentType = "note"
	ContentChat        ContentType = "chat"
)

// Generatable reports whether the type can be produced by a generation path.
func (c ContentType) Generatable() bool {
	return c == ContentStudyGuide || c == ContentBriefingDoc
}

func (c ContentType) Valid() bool {
	switch c {
	case ContentStudyGuide, ContentBriefingDoc, ContentNote, ContentChat:
		return true
	}
	return false
}

type GeneratorPath string

const (
	PathEnhanced GeneratorPath = "enhanced"
	PathStandard GeneratorPath = "standard"
	PathMock     GeneratorPath = "mock"
)

type GenerateRequest struct {
	URL  string      `json:"url"`
	Type ContentType `json:"type"`
}

type GenerationRequest struct {
	VideoURL    string
	VideoID     string
	ContentType ContentType
	RequestedAt time.Time
	// Subject is the identity subject of the caller, empty when anonymous.
	Subject string
}

type GeneratedArtifact struct {
	Content          string         `json:"content"`
	ContentType      ContentType    `json:"type"`
	VideoID          string         `json:"videoId"`
	GeneratorPath    GeneratorPath  `json:"generatorPath"`
	TranscriptLength int            `json:"transcriptLength"`
	ProcessingTimeMs int64          `json:"processingTimeMs,omitempty"`
	Metadata         *VideoMetadata `json:"-"`
	Note             string         `json:"note,omitempty"`
}

type ChatRequest struct {
	Message    string `json:"message"`
	VideoURL   string `json:"videoUrl"`
	VideoTitle string `json:"videoTitle"`
}

type ChatResponse struct {
	Response        string  `json:"response"`
	HasVideoContext bool    `json:"hasVideoContext"`
	VideoTitle      *string `json:"videoTitle"`
	VideoURL        *string `json:"videoUrl"`
}

type NoteRequest struct {
	Note       string `json:"note"`
	VideoURL   string `json:"videoUrl"`
	VideoTitle string `json:"videoTitle"`
	Type       string `json:"type"`
}

type ModelInfo struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"displayName,omitempty"`
	Description                string   `json:"description,omitempty"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods,omitempty"`
}

// VideoMetadataSummary is the metadata block returned by the enhanced path.
type VideoMetadataSummary struct {
	Title        string               `json:"title"`
	ChannelTitle string               `json:"channelTitle"`
	PublishedAt  string               `json:"publishedAt"`
	Duration     string               `json:"duration"`
	ViewCount    uint64               `json:"viewCount"`
	LikeCount    uint64               `json:"likeCount"`
	Thumbnails   map[string]Thumbnail `json:"thumbnails"`
}

// GenerateResponse covers all three paths; path-specific fields are omitted
// when empty.
type GenerateResponse struct {
	Content          string                `json:"content"`
	VideoID          string                `json:"videoId"`
	Type             ContentType           `json:"type"`
	VideoMetadata    *VideoMetadataSummary `json:"videoMetadata,omitempty"`
	TranscriptLength int                   `json:"transcriptLength"`
	Enhanced         bool                  `json:"enhanced,omitempty"`
	Note             string                `json:"note,omitempty"`
	GeneratorPath    GeneratorPath         `json:"generatorPath"`
	ProcessingTimeMs int64                 `json:"processingTimeMs,omitempty"`
	Saved            bool                  `json:"saved"`
}

type NoteResponse struct {
	Success         bool    `json:"success"`
	Note            string  `json:"note"`
	Analysis        *string `json:"analysis,omitempty"`
	VideoTitle      string  `json:"videoTitle"`
	VideoURL        string  `json:"videoUrl"`
	HasVideoContext *bool   `json:"hasVideoContext,omitempty"`
	Message         string  `json:"message,omitempty"`
	Type            string  `json:"type"`
}

type SpeechRequest struct {
	Content string   `json:"content"`
	Title   string   `json:"title"`
	Voice   string   `json:"voice"`
	Speed   *float64 `json:"speed"`
}

type SpeechInstructions struct {
	Browser string `json:"browser"`
	Future  string `json:"future"`
}

type PreparedSpeech struct {
	CleanedContent    string             `json:"cleanedContent"`
	ClientContent     string             `json:"clientContent"`
	OriginalLength    int                `json:"originalLength"`
	CleanedLength     int                `json:"cleanedLength"`
	EstimatedDuration int                `json:"estimatedDuration"`
	Title             string             `json:"title"`
	Voice             string             `json:"voice"`
	Speed             float64            `json:"speed"`
	Instructions      SpeechInstructions `json:"instructions"`
}
