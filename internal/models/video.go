package models

// VideoReference is a parsed and optionally enriched video URL.
type VideoReference struct {
	URL          string `json:"url"`
	ID           string `json:"id"`
	Title        string `json:"title"`
	ChannelName  string `json:"channelName,omitempty"`
	Duration     string `json:"duration,omitempty"` // ISO-8601, e.g. PT4M13S
	ViewCount    uint64 `json:"viewCount,omitempty"`
	LikeCount    uint64 `json:"likeCount,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Source       string `json:"source"` // "data-api" | "page" | "none"
}

type Thumbnail struct {
	URL    string `json:"url"`
	Width  int64  `json:"width,omitempty"`
	Height int64  `json:"height,omitempty"`
}

type VideoMetadata struct {
	VideoID              string               `json:"videoId"`
	Title                string               `json:"title"`
	Description          string               `json:"description"`
	ChannelTitle         string               `json:"channelTitle"`
	PublishedAt          string               `json:"publishedAt"`
	Duration             string               `json:"duration"`
	ViewCount            uint64               `json:"viewCount"`
	LikeCount            uint64               `json:"likeCount"`
	CommentCount         uint64               `json:"commentCount"`
	Thumbnails           map[string]Thumbnail `json:"thumbnails"`
	Tags                 []string             `json:"tags"`
	CategoryID           string               `json:"categoryId,omitempty"`
	DefaultLanguage      string               `json:"defaultLanguage,omitempty"`
	DefaultAudioLanguage string               `json:"defaultAudioLanguage,omitempty"`
}

// BestThumbnail prefers the high resolution rendition and falls back to default.
func (m *VideoMetadata) BestThumbnail() string {
	if m == nil {
		return ""
	}
	if t, ok := m.Thumbnails["high"]; ok && t.URL != "" {
		return t.URL
	}
	if t, ok := m.Thumbnails["default"]; ok {
		return t.URL
	}
	return ""
}

type TranscriptResult struct {
	Text         string `json:"text"`
	LengthChars  int    `json:"lengthChars"`
	SegmentCount int    `json:"segmentCount"`
	Attempts     int    `json:"attempts"`
}

type VideoURLRequest struct {
	URL string `json:"url"`
}
