package models

import (
	"time"

	"github.com/google/uuid"
)

type HistoryMetadata struct {
	TranscriptLength *int      `json:"transcriptLength,omitempty"`
	GeneratedAt      time.Time `json:"generatedAt"`
	APIUsed          string    `json:"apiUsed,omitempty"`
	ProcessingTimeMs *int64    `json:"processingTimeMs,omitempty"`
	UserQuestion     string    `json:"userQuestion,omitempty"`
}

type HistoryEntry struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"userId"`
	UserEmail      string          `json:"userEmail"`
	VideoURL       string          `json:"videoUrl"`
	VideoTitle     string          `json:"videoTitle"`
	VideoID        string          `json:"videoId"`
	ChannelName    *string         `json:"channelName,omitempty"`
	VideoDuration  *string         `json:"videoDuration,omitempty"`
	VideoViews     *string         `json:"videoViews,omitempty"`
	VideoThumbnail *string         `json:"videoThumbnail,omitempty"`
	ContentType    ContentType     `json:"contentType"`
	Content        string          `json:"content"`
	Analysis       *string         `json:"analysis,omitempty"`
	Metadata       HistoryMetadata `json:"metadata"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// HistoryInput is the write payload for a history entry.
type HistoryInput struct {
	VideoURL       string           `json:"videoUrl"`
	VideoTitle     string           `json:"videoTitle"`
	ChannelName    *string          `json:"channelName"`
	VideoDuration  *string          `json:"videoDuration"`
	VideoViews     *string          `json:"videoViews"`
	VideoThumbnail *string          `json:"videoThumbnail"`
	ContentType    ContentType      `json:"contentType"`
	Content        string           `json:"content"`
	Analysis       *string          `json:"analysis"`
	Metadata       *HistoryMetadata `json:"metadata"`
}

type HistoryFilter struct {
	ContentType string
	VideoID     string
	Page        int
	Limit       int
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type ContentTypeStat struct {
	Count       int       `json:"count"`
	LastCreated time.Time `json:"lastCreated"`
}

type HistoryStats struct {
	Total  int                             `json:"total"`
	ByType map[ContentType]ContentTypeStat `json:"byType"`
}
