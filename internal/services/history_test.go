package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/euii-ii/ContentCapsule/internal/database"
	"github.com/euii-ii/ContentCapsule/internal/models"
)

type memUsers struct {
	byExternal map[string]*models.User
	err        error
	resets     int
}

func newMemUsers(users ...*models.User) *memUsers {
	m := &memUsers{byExternal: map[string]*models.User{}}
	for _, u := range users {
		m.byExternal[u.ExternalID] = u
	}
	return m
}

func (m *memUsers) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byExternal[externalID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u.ID = uuid.New()
	m.byExternal[u.ExternalID] = u
	cp := *u
	return &cp, nil
}

func (m *memUsers) TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return m.err
}

func (m *memUsers) ResetUsage(ctx context.Context, userID uuid.UUID, nextReset time.Time) error {
	m.resets++
	for _, u := range m.byExternal {
		if u.ID == userID {
			u.Usage = models.Usage{MonthlyResetAt: nextReset}
		}
	}
	return m.err
}

func (m *memUsers) Update(ctx context.Context, externalID string, req models.UpdateUserRequest) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byExternal[externalID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if req.FirstName != nil {
		u.FirstName = req.FirstName
	}
	if p := req.Preferences; p != nil && p.Theme != nil {
		u.Preferences.Theme = *p.Theme
	}
	cp := *u
	return &cp, nil
}

type memHistory struct {
	users   *memUsers
	entries []*models.HistoryEntry
	err     error
}

func (m *memHistory) CreateWithUsage(ctx context.Context, e *models.HistoryEntry) error {
	if m.err != nil {
		return m.err
	}
	e.ID = uuid.New()
	e.CreatedAt = e.Metadata.GeneratedAt
	m.entries = append(m.entries, e)
	for _, u := range m.users.byExternal {
		if u.ID != e.UserID {
			continue
		}
		switch e.ContentType {
		case models.ContentStudyGuide:
			u.Usage.StudyGuides++
		case models.ContentBriefingDoc:
			u.Usage.BriefingDocs++
		case models.ContentNote:
			u.Usage.Notes++
		case models.ContentChat:
			u.Usage.ChatMessages++
		}
	}
	return nil
}

func (m *memHistory) ListByUser(ctx context.Context, userID uuid.UUID, f models.HistoryFilter) ([]*models.HistoryEntry, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	var own []*models.HistoryEntry
	for _, e := range m.entries {
		if e.UserID != userID {
			continue
		}
		if f.ContentType != "" && string(e.ContentType) != f.ContentType {
			continue
		}
		if f.VideoID != "" && e.VideoID != f.VideoID {
			continue
		}
		own = append(own, e)
	}
	sort.SliceStable(own, func(i, j int) bool { return own[i].CreatedAt.After(own[j].CreatedAt) })
	total := len(own)
	start := (f.Page - 1) * f.Limit
	if start > total {
		start = total
	}
	end := start + f.Limit
	if end > total {
		end = total
	}
	return own[start:end], total, nil
}

func (m *memHistory) DeleteByOwner(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for i, e := range m.entries {
		if e.ID == id && e.UserID == userID {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memHistory) StatsByUser(ctx context.Context, userID uuid.UUID) (*models.HistoryStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	stats := &models.HistoryStats{ByType: map[models.ContentType]models.ContentTypeStat{}}
	for _, e := range m.entries {
		if e.UserID != userID {
			continue
		}
		stats.Total++
		s := stats.ByType[e.ContentType]
		s.Count++
		if e.CreatedAt.After(s.LastCreated) {
			s.LastCreated = e.CreatedAt
		}
		stats.ByType[e.ContentType] = s
	}
	return stats, nil
}

func seededUser(externalID string) *models.User {
	u := models.NewUserFromIdentity(models.Identity{ExternalID: externalID, Email: externalID + "@example.com"}, time.Now())
	u.ID = uuid.New()
	return u
}

func validInput(ct models.ContentType) models.HistoryInput {
	return models.HistoryInput{
		VideoURL:    "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		VideoTitle:  "Never Gonna",
		ContentType: ct,
		Content:     "# Guide",
	}
}

func TestHistoryRecorder_RecordIncrementsUsage(t *testing.T) {
	alice := seededUser("user_alice")
	users := newMemUsers(alice)
	history := &memHistory{users: users}
	r := NewHistoryRecorder(users, history)

	entry, err := r.Record(context.Background(), models.Identity{ExternalID: "user_alice"}, validInput(models.ContentStudyGuide))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("expected derived video id, got %q", entry.VideoID)
	}
	if entry.UserEmail != "user_alice@example.com" {
		t.Fatalf("expected owner email, got %q", entry.UserEmail)
	}
	if entry.Metadata.GeneratedAt.IsZero() {
		t.Fatal("expected generatedAt to be stamped")
	}
	if users.byExternal["user_alice"].Usage.StudyGuides != 1 {
		t.Fatalf("expected studyGuides usage 1, got %d", users.byExternal["user_alice"].Usage.StudyGuides)
	}
}

func TestHistoryRecorder_RecordValidation(t *testing.T) {
	users := newMemUsers(seededUser("user_alice"))
	r := NewHistoryRecorder(users, &memHistory{users: users})
	me := models.Identity{ExternalID: "user_alice"}

	missing := validInput(models.ContentNote)
	missing.Content = ""
	badType := validInput(models.ContentType("podcast"))
	badURL := validInput(models.ContentChat)
	badURL.VideoURL = "https://vimeo.com/123"

	tests := []struct {
		name string
		in   models.HistoryInput
		want string
	}{
		{"missing content", missing, "Missing required fields: videoUrl, videoTitle, contentType, content"},
		{"invalid type", badType, "Invalid content type"},
		{"invalid url", badURL, "Invalid YouTube URL"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Record(context.Background(), me, tc.in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Message != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, verr.Message)
			}
		})
	}
}

func TestHistoryRecorder_UnknownUser(t *testing.T) {
	users := newMemUsers()
	r := NewHistoryRecorder(users, &memHistory{users: users})

	_, err := r.Record(context.Background(), models.Identity{ExternalID: "ghost"}, validInput(models.ContentNote))
	var nerr *NotFoundError
	if !errors.As(err, &nerr) || nerr.Message != "User not found" {
		t.Fatalf("expected user not found, got %v", err)
	}

	_, _, err = r.List(context.Background(), models.Identity{}, models.HistoryFilter{})
	var uerr *UnauthorizedError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UnauthorizedError for anonymous caller, got %v", err)
	}
}

func TestHistoryRecorder_ListPaginatesAndIsolates(t *testing.T) {
	alice, bob := seededUser("user_alice"), seededUser("user_bob")
	users := newMemUsers(alice, bob)
	history := &memHistory{users: users}
	r := NewHistoryRecorder(users, history)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		r.now = func() time.Time { return at }
		if _, err := r.Record(context.Background(), models.Identity{ExternalID: "user_alice"}, validInput(models.ContentNote)); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	if _, err := r.Record(context.Background(), models.Identity{ExternalID: "user_bob"}, validInput(models.ContentChat)); err != nil {
		t.Fatalf("record bob: %v", err)
	}

	entries, page, err := r.List(context.Background(), models.Identity{ExternalID: "user_alice"}, models.HistoryFilter{Page: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 12 || page.Pages != 2 || page.Limit != 10 || page.Page != 2 {
		t.Fatalf("unexpected pagination %+v", page)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries on page 2, got %d", len(entries))
	}
	if !entries[0].CreatedAt.After(entries[1].CreatedAt) {
		t.Fatal("expected newest first")
	}

	bobEntries, _, err := r.List(context.Background(), models.Identity{ExternalID: "user_bob"}, models.HistoryFilter{Limit: 500})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bobEntries) != 1 || bobEntries[0].UserID != bob.ID {
		t.Fatalf("expected only bob's entry, got %d", len(bobEntries))
	}
}

func TestHistoryRecorder_RemoveOwnership(t *testing.T) {
	alice, bob := seededUser("user_alice"), seededUser("user_bob")
	users := newMemUsers(alice, bob)
	history := &memHistory{users: users}
	r := NewHistoryRecorder(users, history)

	entry, err := r.Record(context.Background(), models.Identity{ExternalID: "user_alice"}, validInput(models.ContentNote))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		caller  string
		entryID string
		want    string
	}{
		{"empty id", "user_alice", "", "History ID required"},
		{"malformed id", "user_alice", "not-a-uuid", "History entry not found"},
		{"foreign owner", "user_bob", entry.ID.String(), "History entry not found"},
		{"absent id", "user_alice", uuid.NewString(), "History entry not found"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := r.Remove(context.Background(), models.Identity{ExternalID: tc.caller}, tc.entryID)
			if err == nil || err.Error() != tc.want {
				t.Fatalf("expected %q, got %v", tc.want, err)
			}
		})
	}

	if err := r.Remove(context.Background(), models.Identity{ExternalID: "user_alice"}, entry.ID.String()); err != nil {
		t.Fatalf("expected owner delete to succeed, got %v", err)
	}
	if len(history.entries) != 0 {
		t.Fatalf("expected entry removed, %d left", len(history.entries))
	}
}

func TestHistoryRecorder_StoreUnavailable(t *testing.T) {
	users := newMemUsers()
	users.err = database.ErrUnavailable
	r := NewHistoryRecorder(users, &memHistory{users: users})

	_, _, err := r.List(context.Background(), models.Identity{ExternalID: "user_alice"}, models.HistoryFilter{})
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if !IsUnavailable(err) {
		t.Fatal("expected unavailable store to be detected")
	}
}
