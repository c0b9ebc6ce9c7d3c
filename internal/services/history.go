package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/euii-ii/ContentCapsule/internal/database"
	"github.com/euii-ii/ContentCapsule/internal/models"
)

// UserStore is the persistence the account and history services need.
type UserStore interface {
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	Create(ctx context.Context, u *models.User) (*models.User, error)
	TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
	ResetUsage(ctx context.Context, userID uuid.UUID, nextReset time.Time) error
	Update(ctx context.Context, externalID string, req models.UpdateUserRequest) (*models.User, error)
}

type HistoryStore interface {
	CreateWithUsage(ctx context.Context, e *models.HistoryEntry) error
	ListByUser(ctx context.Context, userID uuid.UUID, f models.HistoryFilter) ([]*models.HistoryEntry, int, error)
	DeleteByOwner(ctx context.Context, id, userID uuid.UUID) (bool, error)
	StatsByUser(ctx context.Context, userID uuid.UUID) (*models.HistoryStats, error)
}

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

type HistoryRecorder struct {
	users   UserStore
	history HistoryStore
	now     func() time.Time
}

func NewHistoryRecorder(users UserStore, history HistoryStore) *HistoryRecorder {
	return &HistoryRecorder{users: users, history: history, now: time.Now}
}

// persistenceErr wraps store failures so handlers can tell an outage from a bug.
func persistenceErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

func (r *HistoryRecorder) owner(ctx context.Context, id models.Identity) (*models.User, error) {
	if id.ExternalID == "" {
		return nil, &UnauthorizedError{Message: "Unauthorized"}
	}
	user, err := r.users.GetByExternalID(ctx, id.ExternalID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Message: "User not found"}
	}
	if err != nil {
		return nil, persistenceErr("load user", err)
	}
	return user, nil
}

// Record stores the artifact and bumps the owner's usage counter for its type.
func (r *HistoryRecorder) Record(ctx context.Context, id models.Identity, in models.HistoryInput) (*models.HistoryEntry, error) {
	missing := map[string]string{}
	if strings.TrimSpace(in.VideoURL) == "" {
		missing["videoUrl"] = "required"
	}
	if strings.TrimSpace(in.VideoTitle) == "" {
		missing["videoTitle"] = "required"
	}
	if in.ContentType == "" {
		missing["contentType"] = "required"
	}
	if in.Content == "" {
		missing["content"] = "required"
	}
	if len(missing) > 0 {
		return nil, &ValidationError{
			Message: "Missing required fields: videoUrl, videoTitle, contentType, content",
			Fields:  missing,
		}
	}
	if !in.ContentType.Valid() {
		return nil, &ValidationError{
			Message: "Invalid content type",
			Fields:  map[string]string{"contentType": "must be study-guide, briefing-doc, note or chat"},
		}
	}

	user, err := r.owner(ctx, id)
	if err != nil {
		return nil, err
	}

	videoID, ok := ExtractVideoID(in.VideoURL)
	if !ok {
		return nil, &ValidationError{
			Message: "Invalid YouTube URL",
			Fields:  map[string]string{"videoUrl": "not a recognised YouTube URL"},
		}
	}

	entry := &models.HistoryEntry{
		UserID:         user.ID,
		UserEmail:      user.Email,
		VideoURL:       in.VideoURL,
		VideoTitle:     in.VideoTitle,
		VideoID:        videoID,
		ChannelName:    in.ChannelName,
		VideoDuration:  in.VideoDuration,
		VideoViews:     in.VideoViews,
		VideoThumbnail: in.VideoThumbnail,
		ContentType:    in.ContentType,
		Content:        in.Content,
		Analysis:       in.Analysis,
	}
	if in.Metadata != nil {
		entry.Metadata = *in.Metadata
	}
	entry.Metadata.GeneratedAt = r.now().UTC()

	if err := r.history.CreateWithUsage(ctx, entry); err != nil {
		return nil, persistenceErr("create history entry", err)
	}
	return entry, nil
}

// List returns the caller's entries newest first and the pagination block.
func (r *HistoryRecorder) List(ctx context.Context, id models.Identity, f models.HistoryFilter) ([]*models.HistoryEntry, models.Pagination, error) {
	f = normalizeHistoryFilter(f)

	user, err := r.owner(ctx, id)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	entries, total, err := r.history.ListByUser(ctx, user.ID, f)
	if err != nil {
		return nil, models.Pagination{}, persistenceErr("list history", err)
	}

	return entries, models.Pagination{
		Page:  f.Page,
		Limit: f.Limit,
		Total: total,
		Pages: (total + f.Limit - 1) / f.Limit,
	}, nil
}

func normalizeHistoryFilter(f models.HistoryFilter) models.HistoryFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultHistoryLimit
	}
	if f.Limit > maxHistoryLimit {
		f.Limit = maxHistoryLimit
	}
	return f
}

// Remove deletes an entry owned by the caller. Foreign, absent and malformed
// ids all report the same not-found error.
func (r *HistoryRecorder) Remove(ctx context.Context, id models.Identity, entryID string) error {
	if strings.TrimSpace(entryID) == "" {
		return &ValidationError{Message: "History ID required", Fields: map[string]string{"id": "required"}}
	}

	user, err := r.owner(ctx, id)
	if err != nil {
		return err
	}

	notFound := &NotFoundError{Message: "History entry not found"}
	parsed, err := uuid.Parse(entryID)
	if err != nil {
		return notFound
	}

	deleted, err := r.history.DeleteByOwner(ctx, parsed, user.ID)
	if err != nil {
		return persistenceErr("delete history entry", err)
	}
	if !deleted {
		return notFound
	}
	return nil
}

// IsUnavailable reports whether err came from an unreachable store.
func IsUnavailable(err error) bool {
	return errors.Is(err, database.ErrUnavailable)
}
