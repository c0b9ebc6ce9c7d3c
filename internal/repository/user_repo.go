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

type UserRepo struct {
	db *database.Postgres
}

func NewUserRepo(db *database.Postgres) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, external_id, COALESCE(email, ''), first_name, last_name, profile_image, plan,
	usage_study_guides, usage_briefing_docs, usage_notes, usage_chat_messages, monthly_reset_at,
	theme, language, notifications, created_at, updated_at, last_login_at`

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.ExternalID, &u.Email, &u.FirstName, &u.LastName, &u.ProfileImage, &u.Plan,
		&u.Usage.StudyGuides, &u.Usage.BriefingDocs, &u.Usage.Notes, &u.Usage.ChatMessages, &u.Usage.MonthlyResetAt,
		&u.Preferences.Theme, &u.Preferences.Language, &u.Preferences.Notifications,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByExternalID returns pgx.ErrNoRows when the identity has no profile yet.
func (r *UserRepo) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE external_id = $1`
	return scanUser(pool.QueryRow(ctx, query, externalID))
}

// Create inserts the profile. A concurrent first request for the same identity
// resolves to the row that won the race.
func (r *UserRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}

	u.ID = uuid.New()
	query := `
		INSERT INTO users (id, external_id, email, first_name, last_name, profile_image, plan,
			monthly_reset_at, theme, language, notifications, created_at, updated_at, last_login_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12, $12, $12)
		ON CONFLICT (external_id) DO UPDATE SET last_login_at = EXCLUDED.last_login_at
		RETURNING ` + userColumns

	return scanUser(pool.QueryRow(ctx, query,
		u.ID, u.ExternalID, u.Email, u.FirstName, u.LastName, u.ProfileImage, u.Plan,
		u.Usage.MonthlyResetAt, u.Preferences.Theme, u.Preferences.Language, u.Preferences.Notifications,
		u.CreatedAt,
	))
}

func (r *UserRepo) TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, "UPDATE users SET last_login_at = $1 WHERE id = $2", at, userID)
	return err
}

// ResetUsage zeroes the monthly counters and moves the reset date forward.
func (r *UserRepo) ResetUsage(ctx context.Context, userID uuid.UUID, nextReset time.Time) error {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
		UPDATE users SET usage_study_guides = 0, usage_briefing_docs = 0, usage_notes = 0,
			usage_chat_messages = 0, monthly_reset_at = $1, updated_at = NOW()
		WHERE id = $2`, nextReset, userID)
	return err
}

// Update applies only the non-nil fields. Returns pgx.ErrNoRows when no profile exists.
// ResetLapsedUsage zeroes every counter whose window ended before now.
func (r *UserRepo) ResetLapsedUsage(ctx context.Context, now, nextReset time.Time) (int64, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return 0, err
	}
	tag, err := pool.Exec(ctx, `
		UPDATE users SET usage_study_guides = 0, usage_briefing_docs = 0, usage_notes = 0,
			usage_chat_messages = 0, monthly_reset_at = $1, updated_at = NOW()
		WHERE monthly_reset_at < $2`, nextReset, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *UserRepo) Update(ctx context.Context, externalID string, req models.UpdateUserRequest) (*models.User, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}

	var theme, language *string
	var notifications *bool
	if req.Preferences != nil {
		theme = req.Preferences.Theme
		language = req.Preferences.Language
		notifications = req.Preferences.Notifications
	}

	query := `
		UPDATE users SET
			first_name    = COALESCE($2, first_name),
			last_name     = COALESCE($3, last_name),
			profile_image = COALESCE($4, profile_image),
			theme         = COALESCE($5, theme),
			language      = COALESCE($6, language),
			notifications = COALESCE($7, notifications),
			updated_at    = NOW()
		WHERE external_id = $1
		RETURNING ` + userColumns

	return scanUser(pool.QueryRow(ctx, query,
		externalID, req.FirstName, req.LastName, req.ProfileImage, theme, language, notifications,
	))
}

// usageColumn maps a content type to its counter column.
func usageColumn(ct models.ContentType) (string, error) {
	switch ct {
	case models.ContentStudyGuide:
		return "usage_study_guides", nil
	case models.ContentBriefingDoc:
		return "usage_briefing_docs", nil
	case models.ContentNote:
		return "usage_notes", nil
	case models.ContentChat:
		return "usage_chat_messages", nil
	}
	return "", fmt.Errorf("no usage counter for content type %q", ct)
}
