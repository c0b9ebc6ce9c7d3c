package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/euii-ii/ContentCapsule/internal/logger"
	"github.com/euii-ii/ContentCapsule/internal/models"
)

const (
	ModeDatabase     = "database"
	ModeIdentityOnly = "identity-only"
	ModeOffline      = "offline"
)

type AccountService struct {
	users   UserStore
	history HistoryStore
	now     func() time.Time
}

func NewAccountService(users UserStore, history HistoryStore) *AccountService {
	return &AccountService{users: users, history: history, now: time.Now}
}

// Ensure returns the stored profile, creating it on first sight and rolling the
// monthly usage window forward when it has lapsed.
func (s *AccountService) Ensure(ctx context.Context, id models.Identity) (*models.User, error) {
	if id.ExternalID == "" {
		return nil, &UnauthorizedError{Message: "Unauthorized"}
	}
	now := s.now()

	user, err := s.users.GetByExternalID(ctx, id.ExternalID)
	if errors.Is(err, pgx.ErrNoRows) {
		created, err := s.users.Create(ctx, models.NewUserFromIdentity(id, now))
		if err != nil {
			return nil, persistenceErr("create user", err)
		}
		return created, nil
	}
	if err != nil {
		return nil, persistenceErr("load user", err)
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, persistenceErr("touch last login", err)
	}
	user.LastLoginAt = now

	if !user.Usage.MonthlyResetAt.IsZero() && now.After(user.Usage.MonthlyResetAt) {
		next := models.NextMonthlyReset(now)
		if err := s.users.ResetUsage(ctx, user.ID, next); err != nil {
			return nil, persistenceErr("reset usage", err)
		}
		user.Usage = models.Usage{MonthlyResetAt: next}
	}
	return user, nil
}

// Profile never fails on a store outage: it falls back to a profile built from
// the identity claims and reports which mode served it.
func (s *AccountService) Profile(ctx context.Context, id models.Identity) (*models.User, string, error) {
	user, err := s.Ensure(ctx, id)
	if err == nil {
		return user, ModeDatabase, nil
	}

	var perr *PersistenceError
	if !errors.As(err, &perr) {
		return nil, "", err
	}
	logger.FromContext(ctx).Warn("profile served from identity claims", "error", err)

	now := s.now()
	fallback := models.NewUserFromIdentity(id, now)
	fallback.Usage.MonthlyResetAt = now
	return fallback, ModeIdentityOnly, nil
}

var allowedThemes = map[string]bool{"light": true, "dark": true, "system": true}

// Update applies the editable profile fields. When the store is unreachable it
// returns a nil user and ModeOffline instead of an error.
func (s *AccountService) Update(ctx context.Context, id models.Identity, req models.UpdateUserRequest) (*models.User, string, error) {
	if id.ExternalID == "" {
		return nil, "", &UnauthorizedError{Message: "Unauthorized"}
	}
	if p := req.Preferences; p != nil && p.Theme != nil && !allowedThemes[*p.Theme] {
		return nil, "", &ValidationError{
			Message: "Invalid theme",
			Fields:  map[string]string{"preferences.theme": "must be light, dark or system"},
		}
	}

	user, err := s.users.Update(ctx, id.ExternalID, req)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", &NotFoundError{Message: "User not found"}
	}
	if err != nil {
		logger.FromContext(ctx).Warn("profile update skipped, store unavailable", "error", err)
		return nil, ModeOffline, nil
	}
	return user, ModeDatabase, nil
}

// AccountStats is the payload of the stats action.
type AccountStats struct {
	User  AccountSummary      `json:"user"`
	Stats models.HistoryStats `json:"stats"`
}

type AccountSummary struct {
	Plan      string       `json:"plan"`
	Usage     models.Usage `json:"usage"`
	CreatedAt time.Time    `json:"createdAt"`
}

func (s *AccountService) Stats(ctx context.Context, id models.Identity, action string) (*AccountStats, error) {
	if id.ExternalID == "" {
		return nil, &UnauthorizedError{Message: "Unauthorized"}
	}
	if action != "stats" {
		return nil, &ValidationError{Message: "Invalid action", Fields: map[string]string{"action": "must be stats"}}
	}

	user, err := s.users.GetByExternalID(ctx, id.ExternalID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Message: "User not found"}
	}
	if err != nil {
		return nil, persistenceErr("load user", err)
	}

	stats, err := s.history.StatsByUser(ctx, user.ID)
	if err != nil {
		return nil, persistenceErr("aggregate history", err)
	}

	return &AccountStats{
		User:  AccountSummary{Plan: user.Plan, Usage: user.Usage, CreatedAt: user.CreatedAt},
		Stats: *stats,
	}, nil
}
