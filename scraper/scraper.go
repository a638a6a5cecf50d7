// Package scraper implements the extraction strategies that turn a video
// URL into canonical metadata, plus the comparator that reconciles their
// outputs.
//
// Every strategy implements the same contract: given a URL and options,
// return a result envelope. Failures of any kind are converted into failed
// envelopes at the strategy boundary; no error or panic crosses into the
// dispatcher or comparator.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ytscope/metadata"
)

// Method tags are part of the wire contract; callers branch on these
// literal strings.
const (
	MethodYtdlp           = "yt-dlp"
	MethodAPI             = "YouTube API v3"
	MethodTranscriptAPI   = "youtube-transcript-api"
	MethodYtdlpTranscript = "yt-dlp-transcript"
	MethodWhisperAPI      = "openai-whisper"
	MethodLocalWhisper    = "ai-whisper"
	MethodCombined        = "transcript (combined)"
)

// Sentinel errors for extraction operations.
var (
	ErrNoVideoID           = errors.New("could not extract video ID from URL")
	ErrVideoNotFound       = errors.New("video not found or is private")
	ErrVideoUnavailable    = errors.New("video is unavailable")
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")
	ErrNoTranscript        = errors.New("no transcripts available for this video")
	ErrYtdlpNotInstalled   = errors.New("yt-dlp not installed")
)

// Options carries the per-request extraction flags.
type Options struct {
	// IncludeComments requests up to 100 comments from sources that can
	// fetch them.
	IncludeComments bool
	// IncludeSubtitles requests subtitle tracks from the general-purpose
	// extractor. Transcript-only strategies ignore it.
	IncludeSubtitles bool
}

// Scraper is the capability every extraction strategy implements.
type Scraper interface {
	// Method returns the strategy's method tag.
	Method() string
	// Scrape fetches and normalizes metadata for the video at url.
	// It always returns a well-formed envelope, never panics, and never
	// returns nil.
	Scrape(ctx context.Context, url string, opts Options) *metadata.ScrapeResult
}

// ScrapeError wraps extraction errors with context about which strategy
// failed for which URL. Use errors.As() to extract it and errors.Is() to
// test the underlying sentinel.
type ScrapeError struct {
	// Method is the strategy's method tag.
	Method string
	// URL is the video URL being scraped.
	URL string
	// Err is the underlying error.
	Err error
}

// Error returns a string representation of the scrape error.
func (e *ScrapeError) Error() string {
	return e.Method + " scraping " + e.URL + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is() and errors.As().
func (e *ScrapeError) Unwrap() error { return e.Err }

// attempt runs one extraction body inside the strategy's result boundary:
// the returned envelope carries the elapsed time, and both errors and
// panics in fn become failed envelopes.
func attempt(ctx context.Context, method string, fn func(context.Context) (*metadata.VideoMetadata, int, error)) (result *metadata.ScrapeResult) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result = metadata.Failed(method, fmt.Sprintf("unexpected error: %v", r), time.Since(start))
		}
	}()

	data, fields, err := fn(ctx)
	if err != nil {
		return metadata.Failed(method, err.Error(), time.Since(start))
	}
	return metadata.Succeeded(method, data, time.Since(start), fields)
}

// Unavailable returns a Scraper that fails every call immediately with
// the given reason. It is used when a strategy cannot be constructed
// (missing credential, unusable environment) so callers still receive a
// typed failure envelope without any network activity.
func Unavailable(method, reason string) Scraper {
	return unavailableScraper{method: method, reason: reason}
}

type unavailableScraper struct {
	method string
	reason string
}

func (s unavailableScraper) Method() string { return s.method }

func (s unavailableScraper) Scrape(context.Context, string, Options) *metadata.ScrapeResult {
	return metadata.Failed(s.method, s.reason, 0)
}
