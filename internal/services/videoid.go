package services

import "regexp"

// videoIDPatterns are tried in order; the first capture wins.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/embed/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtu\.be/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/v/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/.*[?&]v=)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:youtube\.com/shorts/)([a-zA-Z0-9_-]{11})`),
}

// ExtractVideoID returns the 11-character video identifier embedded in rawURL.
func ExtractVideoID(rawURL string) (string, bool) {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(rawURL); len(m) > 1 {
			return m[1], true
		}
	}
	return "", false
}

// WatchURL is the canonical URL for a video identifier.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// DefaultThumbnail is served by the image CDN for every public video.
func DefaultThumbnail(videoID string) string {
	return "https://img.youtube.com/vi/" + videoID + "/hqdefault.jpg"
}
