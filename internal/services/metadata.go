package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	yt "github.com/kkdai/youtube/v2"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/euii-ii/ContentCapsule/internal/logger"
	"github.com/euii-ii/ContentCapsule/internal/models"
)

type MetadataFetcher interface {
	Fetch(ctx context.Context, videoID string) (*models.VideoMetadata, error)
}

type MetadataErrorKind string

const (
	MetadataUpstream MetadataErrorKind = "upstream"
	MetadataNotFound MetadataErrorKind = "not_found"
	MetadataConfig   MetadataErrorKind = "config"
)

type MetadataError struct {
	Kind    MetadataErrorKind
	Status  int
	Message string
	Details string
	VideoID string
}

func (e *MetadataError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// HTTPStatus maps the failure to the status a handler should return.
func (e *MetadataError) HTTPStatus() int {
	switch e.Kind {
	case MetadataNotFound:
		return http.StatusNotFound
	case MetadataConfig:
		return http.StatusInternalServerError
	}
	if e.Status >= 400 && e.Status <= 599 {
		return e.Status
	}
	return http.StatusInternalServerError
}

// DataAPIMetadataFetcher reads snippet, statistics and content details from the
// YouTube Data API v3. It makes exactly one request per call.
type DataAPIMetadataFetcher struct {
	service *youtube.Service
}

// NewDataAPIMetadataFetcher returns a fetcher that reports a config error on every
// call when apiKey is empty.
func NewDataAPIMetadataFetcher(ctx context.Context, apiKey string, opts ...option.ClientOption) (*DataAPIMetadataFetcher, error) {
	if apiKey == "" {
		return &DataAPIMetadataFetcher{}, nil
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &DataAPIMetadataFetcher{service: service}, nil
}

func (f *DataAPIMetadataFetcher) Configured() bool { return f.service != nil }

func (f *DataAPIMetadataFetcher) Fetch(ctx context.Context, videoID string) (*models.VideoMetadata, error) {
	if f.service == nil {
		return nil, &MetadataError{
			Kind:    MetadataConfig,
			Status:  http.StatusInternalServerError,
			Message: "YOUTUBE_API_KEY not found in environment variables",
			VideoID: videoID,
		}
	}

	resp, err := f.service.Videos.
		List([]string{"snippet", "statistics", "contentDetails"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		merr := &MetadataError{
			Kind:    MetadataUpstream,
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch video metadata from YouTube API",
			Details: err.Error(),
			VideoID: videoID,
		}
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			merr.Status = gerr.Code
			if gerr.Message != "" {
				merr.Details = gerr.Message
			}
		}
		return nil, merr
	}

	if len(resp.Items) == 0 {
		return nil, &MetadataError{
			Kind:    MetadataNotFound,
			Status:  http.StatusNotFound,
			Message: "Video not found or not accessible",
			VideoID: videoID,
		}
	}

	return metadataFromDataAPI(videoID, resp.Items[0]), nil
}

func metadataFromDataAPI(videoID string, v *youtube.Video) *models.VideoMetadata {
	meta := &models.VideoMetadata{
		VideoID:    videoID,
		Thumbnails: map[string]models.Thumbnail{},
		Tags:       []string{},
	}
	if s := v.Snippet; s != nil {
		meta.Title = s.Title
		meta.Description = s.Description
		meta.ChannelTitle = s.ChannelTitle
		meta.PublishedAt = s.PublishedAt
		meta.CategoryID = s.CategoryId
		meta.DefaultLanguage = s.DefaultLanguage
		meta.DefaultAudioLanguage = s.DefaultAudioLanguage
		if s.Tags != nil {
			meta.Tags = s.Tags
		}
		if th := s.Thumbnails; th != nil {
			for name, t := range map[string]*youtube.Thumbnail{
				"default":  th.Default,
				"medium":   th.Medium,
				"high":     th.High,
				"standard": th.Standard,
				"maxres":   th.Maxres,
			} {
				if t != nil {
					meta.Thumbnails[name] = models.Thumbnail{URL: t.Url, Width: t.Width, Height: t.Height}
				}
			}
		}
	}
	if st := v.Statistics; st != nil {
		meta.ViewCount = st.ViewCount
		meta.LikeCount = st.LikeCount
		meta.CommentCount = st.CommentCount
	}
	if cd := v.ContentDetails; cd != nil {
		meta.Duration = cd.Duration
	}
	return meta
}

// CachedMetadataFetcher serves repeat lookups from Redis. Cache failures are
// logged and never surfaced.
type CachedMetadataFetcher struct {
	next  MetadataFetcher
	redis *redis.Client
	ttl   time.Duration
	log   *logger.Logger
}

func NewCachedMetadataFetcher(next MetadataFetcher, redisClient *redis.Client, ttl time.Duration, log *logger.Logger) *CachedMetadataFetcher {
	if log == nil {
		log = logger.Nop()
	}
	return &CachedMetadataFetcher{next: next, redis: redisClient, ttl: ttl, log: log}
}

func metadataCacheKey(videoID string) string {
	return fmt.Sprintf("video_metadata:%s", videoID)
}

func (c *CachedMetadataFetcher) Fetch(ctx context.Context, videoID string) (*models.VideoMetadata, error) {
	if c.redis == nil {
		return c.next.Fetch(ctx, videoID)
	}

	key := metadataCacheKey(videoID)
	raw, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var meta models.VideoMetadata
		if jerr := json.Unmarshal(raw, &meta); jerr == nil {
			return &meta, nil
		}
		c.log.Warn("discarding unreadable cached metadata", "video_id", videoID)
	case !errors.Is(err, redis.Nil):
		c.log.Warn("metadata cache read failed", "video_id", videoID, "error", err)
	}

	meta, err := c.next.Fetch(ctx, videoID)
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(meta)
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("metadata cache write failed", "video_id", videoID, "error", err)
	}
	return meta, nil
}

// PageMetadataFetcher reads the public watch page and needs no API key.
type PageMetadataFetcher struct {
	client *yt.Client
}

func NewPageMetadataFetcher() *PageMetadataFetcher {
	return &PageMetadataFetcher{client: &yt.Client{}}
}

func (f *PageMetadataFetcher) Fetch(ctx context.Context, videoID string) (*models.VideoMetadata, error) {
	video, err := f.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, &MetadataError{
			Kind:    MetadataUpstream,
			Status:  http.StatusBadGateway,
			Message: "Failed to fetch video metadata from YouTube",
			Details: err.Error(),
			VideoID: videoID,
		}
	}

	meta := &models.VideoMetadata{
		VideoID:      videoID,
		Title:        video.Title,
		Description:  video.Description,
		ChannelTitle: video.Author,
		Duration:     formatISODuration(video.Duration),
		Thumbnails:   map[string]models.Thumbnail{},
		Tags:         []string{},
	}
	if video.Views > 0 {
		meta.ViewCount = uint64(video.Views)
	}
	if !video.PublishDate.IsZero() {
		meta.PublishedAt = video.PublishDate.UTC().Format(time.RFC3339)
	}
	if n := len(video.Thumbnails); n > 0 {
		first, last := video.Thumbnails[0], video.Thumbnails[n-1]
		meta.Thumbnails["default"] = models.Thumbnail{URL: first.URL, Width: int64(first.Width), Height: int64(first.Height)}
		meta.Thumbnails["high"] = models.Thumbnail{URL: last.URL, Width: int64(last.Width), Height: int64(last.Height)}
	}
	return meta, nil
}

// formatISODuration renders d in the ISO-8601 form the Data API uses, e.g. PT1H4M13S.
func formatISODuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	total := int64(d.Round(time.Second) / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60

	var b strings.Builder
	b.WriteString("PT")
	if h > 0 {
		fmt.Fprintf(&b, "%dH", h)
	}
	if m > 0 {
		fmt.Fprintf(&b, "%dM", m)
	}
	if s > 0 || (h == 0 && m == 0) {
		fmt.Fprintf(&b, "%dS", s)
	}
	return b.String()
}
