package services

import (
	"context"

	"github.com/euii-ii/ContentCapsule/internal/logger"
	"github.com/euii-ii/ContentCapsule/internal/models"
)

const (
	SourceDataAPI = "data-api"
	SourcePage    = "page"
	SourceNone    = "none"
)

// VideoResolver turns a pasted URL into a VideoReference for the "add video" step.
type VideoResolver struct {
	dataAPI  MetadataFetcher
	keyCheck configurable
	page     MetadataFetcher
}

// NewVideoResolver prefers dataAPI when it is configured and falls back to page.
func NewVideoResolver(dataAPI MetadataFetcher, keyCheck configurable, page MetadataFetcher) *VideoResolver {
	return &VideoResolver{dataAPI: dataAPI, keyCheck: keyCheck, page: page}
}

func (r *VideoResolver) Resolve(ctx context.Context, rawURL string) (*models.VideoReference, error) {
	if rawURL == "" {
		return nil, &ValidationError{Message: "URL is required", Fields: map[string]string{"url": "required"}}
	}
	videoID, ok := ExtractVideoID(rawURL)
	if !ok {
		return nil, &ValidationError{Message: "Invalid YouTube URL", Fields: map[string]string{"url": "not a recognised YouTube URL"}}
	}

	ref := &models.VideoReference{
		URL:          rawURL,
		ID:           videoID,
		Title:        "YouTube Video " + videoID,
		ThumbnailURL: DefaultThumbnail(videoID),
		Source:       SourceNone,
	}

	fetcher, source := r.pick()
	if fetcher == nil {
		return ref, nil
	}

	meta, err := fetcher.Fetch(ctx, videoID)
	if err != nil {
		logger.FromContext(ctx).Warn("video metadata unavailable, returning bare reference",
			"video_id", videoID, "source", source, "error", err)
		return ref, nil
	}

	if meta.Title != "" {
		ref.Title = meta.Title
	}
	ref.ChannelName = meta.ChannelTitle
	ref.Duration = meta.Duration
	ref.ViewCount = meta.ViewCount
	ref.LikeCount = meta.LikeCount
	if thumb := meta.BestThumbnail(); thumb != "" {
		ref.ThumbnailURL = thumb
	}
	ref.Source = source
	return ref, nil
}

func (r *VideoResolver) pick() (MetadataFetcher, string) {
	if r.dataAPI != nil && (r.keyCheck == nil || r.keyCheck.Configured()) {
		return r.dataAPI, SourceDataAPI
	}
	if r.page != nil {
		return r.page, SourcePage
	}
	return nil, SourceNone
}
