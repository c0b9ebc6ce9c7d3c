package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PlanFree    = "free"
	PlanPro     = "pro"
	PlanPremium = "premium"
)

type Usage struct {
	StudyGuides    int       `json:"studyGuides"`
	BriefingDocs   int       `json:"briefingDocs"`
	Notes          int       `json:"notes"`
	ChatMessages   int       `json:"chatMessages"`
	MonthlyResetAt time.Time `json:"monthlyReset"`
}

type Preferences struct {
	Theme         string `json:"theme"` // "light" | "dark" | "system"
	Language      string `json:"language"`
	Notifications bool   `json:"notifications"`
}

type User struct {
	ID           uuid.UUID   `json:"id"`
	ExternalID   string      `json:"externalId"`
	Email        string      `json:"email"`
	FirstName    *string     `json:"firstName"`
	LastName     *string     `json:"lastName"`
	ProfileImage *string     `json:"profileImage"`
	Plan         string      `json:"plan"`
	Usage        Usage       `json:"usage"`
	Preferences  Preferences `json:"preferences"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	LastLoginAt  time.Time   `json:"lastLoginAt"`
}

// Identity is the caller as asserted by the identity provider token.
type Identity struct {
	ExternalID   string
	Email        string
	FirstName    string
	LastName     string
	ProfileImage string
}

type UpdatePreferencesRequest struct {
	Theme         *string `json:"theme"`
	Language      *string `json:"language"`
	Notifications *bool   `json:"notifications"`
}

type UpdateUserRequest struct {
	FirstName    *string                   `json:"firstName"`
	LastName     *string                   `json:"lastName"`
	ProfileImage *string                   `json:"profileImage"`
	Preferences  *UpdatePreferencesRequest `json:"preferences"`
}

type AccountActionRequest struct {
	Action string `json:"action"`
}

// NextMonthlyReset returns the first instant of the month after t, in UTC.
func NextMonthlyReset(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

// NewUserFromIdentity builds the default profile for a first-seen identity.
func NewUserFromIdentity(id Identity, now time.Time) *User {
	u := &User{
		ExternalID: id.ExternalID,
		Email:      id.Email,
		Plan:       PlanFree,
		Usage:      Usage{MonthlyResetAt: NextMonthlyReset(now)},
		Preferences: Preferences{
			Theme:         "system",
			Language:      "en",
			Notifications: true,
		},
		CreatedAt:   now,
		UpdatedAt:   now,
		LastLoginAt: now,
	}
	if id.FirstName != "" {
		u.FirstName = &id.FirstName
	}
	if id.LastName != "" {
		u.LastName = &id.LastName
	}
	if id.ProfileImage != "" {
		u.ProfileImage = &id.ProfileImage
	}
	return u
}
