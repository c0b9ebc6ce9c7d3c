package services

import "testing"

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		wantID string
		wantOK bool
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"watch with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", true},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"legacy v", "https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"v not first", "https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"shorts", "https://www.youtube.com/shorts/abcDEF_12-3", "abcDEF_12-3", true},
		{"case preserved", "https://youtu.be/AbCdEfGhIjK", "AbCdEfGhIjK", true},
		{"no scheme", "youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"id too short", "https://www.youtube.com/watch?v=short", "", false},
		{"other host", "https://vimeo.com/123456789", "", false},
		{"empty", "", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, ok := ExtractVideoID(tc.url)
			if ok != tc.wantOK {
				t.Fatalf("expected ok=%v, got %v", tc.wantOK, ok)
			}
			if id != tc.wantID {
				t.Fatalf("expected id %q, got %q", tc.wantID, id)
			}
		})
	}
}

func TestExtractVideoID_FirstPatternWins(t *testing.T) {
	// watch?v= is tried before youtu.be/, so the watch id is returned.
	url := "https://www.youtube.com/watch?v=AAAAAAAAAAA&next=youtu.be/BBBBBBBBBBB"
	id, ok := ExtractVideoID(url)
	if !ok || id != "AAAAAAAAAAA" {
		t.Fatalf("expected AAAAAAAAAAA, got %q (ok=%v)", id, ok)
	}
}

func TestWatchURLAndThumbnail(t *testing.T) {
	if got := WatchURL("dQw4w9WgXcQ"); got != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Fatalf("unexpected watch url %q", got)
	}
	if got := DefaultThumbnail("dQw4w9WgXcQ"); got != "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg" {
		t.Fatalf("unexpected thumbnail %q", got)
	}
}
