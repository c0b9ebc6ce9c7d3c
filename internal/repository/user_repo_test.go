package repository

import (
	"testing"

	"github.com/euii-ii/ContentCapsule/internal/models"
)

func TestUsageColumn(t *testing.T) {
	tests := []struct {
		ct       models.ContentType
		expected string
		wantErr  bool
	}{
		{models.ContentStudyGuide, "usage_study_guides", false},
		{models.ContentBriefingDoc, "usage_briefing_docs", false},
		{models.ContentNote, "usage_notes", false},
		{models.ContentChat, "usage_chat_messages", false},
		{models.ContentType("podcast"), "", true},
		{models.ContentType("usage_notes = 0; --"), "", true},
	}

	for _, tc := range tests {
		t.Run(string(tc.ct), func(t *testing.T) {
			got, err := usageColumn(tc.ct)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.ct)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
