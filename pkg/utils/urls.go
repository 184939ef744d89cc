package utils

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"time"
)

var youtubePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/watch\?v=[\w-]+`),
	regexp.MustCompile(`^https?://(?:www\.)?youtu\.be/[\w-]+`),
	regexp.MustCompile(`^https?://(?:m\.)?youtube\.com/watch\?v=[\w-]+`),
	regexp.MustCompile(`^https?://(?:music\.)?youtube\.com/watch\?v=[\w-]+`),
}

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`youtube\.com/v/([a-zA-Z0-9_-]+)`),
}

// ValidateYouTubeURL reports whether the text looks like a known YouTube
// link shape.
func ValidateYouTubeURL(url string) bool {
	url = strings.TrimSpace(url)
	if url == "" {
		return false
	}
	for _, p := range youtubePatterns {
		if p.MatchString(url) {
			return true
		}
	}
	return false
}

// ExtractVideoID pulls the stable video identifier out of a YouTube URL.
// Returns "" when no known link shape matches.
func ExtractVideoID(url string) string {
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}

// GenerateRunID derives a run identifier from the video ID and the current
// clock at minute:second granularity. Deliberately coarse: collisions are
// tolerated, not prevented (the persisted record carries its own primary
// key).
func GenerateRunID(videoID string) int64 {
	return GenerateRunIDAt(videoID, time.Now())
}

func GenerateRunIDAt(videoID string, now time.Time) int64 {
	combined := fmt.Sprintf("%s_%02d:%02d", videoID, now.Minute(), now.Second())
	h := fnv.New32a()
	h.Write([]byte(combined))
	return int64(h.Sum32() & 0x7FFFFFFF)
}
