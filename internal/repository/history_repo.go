package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/euii-ii/ContentCapsule/internal/database"
	"github.com/euii-ii/ContentCapsule/internal/models"
)

type HistoryRepo struct {
	db *database.Postgres
}

func NewHistoryRepo(db *database.Postgres) *HistoryRepo {
	return &HistoryRepo{db: db}
}

const historyColumns = `id, user_id, user_email, video_url, video_title, video_id,
	channel_name, video_duration, video_views, video_thumbnail, content_type, content, analysis,
	transcript_length, generated_at, COALESCE(api_used, ''), processing_time_ms, COALESCE(user_question, ''),
	created_at, updated_at`

func scanHistory(row pgx.Row) (*models.HistoryEntry, error) {
	e := &models.HistoryEntry{}
	err := row.Scan(
		&e.ID, &e.UserID, &e.UserEmail, &e.VideoURL, &e.VideoTitle, &e.VideoID,
		&e.ChannelName, &e.VideoDuration, &e.VideoViews, &e.VideoThumbnail, &e.ContentType, &e.Content, &e.Analysis,
		&e.Metadata.TranscriptLength, &e.Metadata.GeneratedAt, &e.Metadata.APIUsed, &e.Metadata.ProcessingTimeMs,
		&e.Metadata.UserQuestion, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// CreateWithUsage inserts the entry and bumps the owner's usage counter in one
// transaction, so a counter moves exactly once per stored entry.
func (r *HistoryRepo) CreateWithUsage(ctx context.Context, e *models.HistoryEntry) error {
	column, err := usageColumn(e.ContentType)
	if err != nil {
		return err
	}

	pool, err := r.db.Pool(ctx)
	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	e.ID = uuid.New()
	query := `
		INSERT INTO history_entries (id, user_id, user_email, video_url, video_title, video_id,
			channel_name, video_duration, video_views, video_thumbnail, content_type, content, analysis,
			transcript_length, generated_at, api_used, processing_time_ms, user_question)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NULLIF($16, ''), $17, NULLIF($18, ''))
		RETURNING created_at, updated_at`

	err = tx.QueryRow(ctx, query,
		e.ID, e.UserID, e.UserEmail, e.VideoURL, e.VideoTitle, e.VideoID,
		e.ChannelName, e.VideoDuration, e.VideoViews, e.VideoThumbnail, e.ContentType, e.Content, e.Analysis,
		e.Metadata.TranscriptLength, e.Metadata.GeneratedAt, e.Metadata.APIUsed, e.Metadata.ProcessingTimeMs,
		e.Metadata.UserQuestion,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}

	update := fmt.Sprintf("UPDATE users SET %s = %s + 1, last_login_at = $1 WHERE id = $2", column, column)
	if _, err := tx.Exec(ctx, update, time.Now(), e.UserID); err != nil {
		return fmt.Errorf("failed to increment usage: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *HistoryRepo) ListByUser(ctx context.Context, userID uuid.UUID, f models.HistoryFilter) ([]*models.HistoryEntry, int, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, 0, err
	}

	var args []interface{}
	argIdx := 1

	where := fmt.Sprintf("WHERE user_id = $%d", argIdx)
	args = append(args, userID)
	argIdx++

	if f.ContentType != "" {
		where += fmt.Sprintf(" AND content_type = $%d", argIdx)
		args = append(args, f.ContentType)
		argIdx++
	}
	if f.VideoID != "" {
		where += fmt.Sprintf(" AND video_id = $%d", argIdx)
		args = append(args, f.VideoID)
		argIdx++
	}

	// Count total
	var total int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM history_entries "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM history_entries %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		historyColumns, where, argIdx, argIdx+1)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := []*models.HistoryEntry{}
	for rows.Next() {
		e, err := scanHistory(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

// DeleteByOwner reports false when no row matched both id and owner.
func (r *HistoryRepo) DeleteByOwner(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return false, err
	}
	tag, err := pool.Exec(ctx, "DELETE FROM history_entries WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *HistoryRepo) StatsByUser(ctx context.Context, userID uuid.UUID) (*models.HistoryStats, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, `
		SELECT content_type, COUNT(*), MAX(created_at)
		FROM history_entries WHERE user_id = $1
		GROUP BY content_type`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &models.HistoryStats{ByType: map[models.ContentType]models.ContentTypeStat{}}
	for rows.Next() {
		var ct models.ContentType
		var s models.ContentTypeStat
		if err := rows.Scan(&ct, &s.Count, &s.LastCreated); err != nil {
			return nil, err
		}
		stats.ByType[ct] = s
		stats.Total += s.Count
	}
	return stats, rows.Err()
}
