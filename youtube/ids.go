// Package youtube provides pure helpers for YouTube identifiers, URLs,
// durations, hashtags, and description-derived chapters.
package youtube

import "regexp"

// videoIDPatterns are tried in order; the first 11-character capture wins.
// The patterns are mutually exclusive on well-formed URLs.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/v/|youtu\.be/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`shorts/([a-zA-Z0-9_-]{11})`),
}

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// ExtractVideoID extracts the 11-character video ID from any supported
// URL shape (watch, /v/, youtu.be, embed, shorts). It returns false when
// the URL contains no recognizable ID.
func ExtractVideoID(url string) (string, bool) {
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// ExtractHashtags returns all #word tokens in text, in order of first
// appearance. Case is preserved; callers deduplicate.
func ExtractHashtags(text string) []string {
	if text == "" {
		return nil
	}
	matches := hashtagPattern.FindAllStringSubmatch(text, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}

// DedupStrings returns values with duplicates removed, keeping first
// appearance order.
func DedupStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// WatchURL returns the canonical watch page URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// EmbedURL returns the embed player URL for a video ID.
func EmbedURL(videoID string) string {
	return "https://www.youtube.com/embed/" + videoID
}

// ChannelURL returns the canonical channel URL for a channel ID.
func ChannelURL(channelID string) string {
	return "https://www.youtube.com/channel/" + channelID
}
