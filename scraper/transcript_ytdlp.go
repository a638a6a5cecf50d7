package scraper

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Jeffail/gabs/v2"

	ythttp "ytscope/http"
	"ytscope/metadata"
	"ytscope/youtube"
)

// YtdlpTranscriptScraper extracts only the transcript, using yt-dlp's
// subtitle listing. It prefers tracks yt-dlp has already resolved
// (requested_subtitles), falling back to fetching listed json3 URLs.
type YtdlpTranscriptScraper struct {
	path    string
	timeout time.Duration
	http    *ythttp.Client
}

// NewYtdlpTranscriptScraper builds the extractor. See NewYtdlpScraper for
// parameter semantics; here the HTTP client is required since most tracks
// arrive as URLs.
func NewYtdlpTranscriptScraper(path string, timeout time.Duration, httpClient *ythttp.Client) *YtdlpTranscriptScraper {
	if path == "" {
		path = "yt-dlp"
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &YtdlpTranscriptScraper{path: path, timeout: timeout, http: httpClient}
}

// Method returns the strategy's method tag.
func (s *YtdlpTranscriptScraper) Method() string { return MethodYtdlpTranscript }

// Scrape fetches the transcript for the video at url.
func (s *YtdlpTranscriptScraper) Scrape(ctx context.Context, url string, _ Options) *metadata.ScrapeResult {
	return attempt(ctx, MethodYtdlpTranscript, func(ctx context.Context) (*metadata.VideoMetadata, int, error) {
		videoID, ok := youtube.ExtractVideoID(url)
		if !ok {
			return nil, 0, ErrNoVideoID
		}

		args := []string{
			"-J", "--no-warnings", "--skip-download",
			"--write-subs", "--write-auto-subs",
			"--sub-langs", strings.Join(preferredLangs, ","),
			"--sub-format", "json3",
			url,
		}
		info, err := runYtdlp(ctx, s.path, s.timeout, args)
		if err != nil {
			return nil, 0, err
		}

		segments, lang, isAuto, err := s.pickTranscript(ctx, info)
		if err != nil {
			return nil, 0, err
		}

		md := metadata.New(videoID, MethodYtdlpTranscript)
		md.Title = jsonString(info, "title")
		md.Transcript = segments
		md.AvailableLanguages = subtitleLanguages(info)
		md.WebpageURL = firstNonEmpty(jsonString(info, "webpage_url"), youtube.WatchURL(videoID))
		md.RawData = map[string]any{
			"transcript_language": lang,
			"is_auto_generated":   isAuto,
			"word_count":          transcriptWordCount(segments),
			"segment_count":       len(segments),
		}
		return md, metadata.CountTranscriptFields(md), nil
	})
}

// pickTranscript walks the preferred languages: resolved tracks first,
// then manual listings, then auto-generated ones.
func (s *YtdlpTranscriptScraper) pickTranscript(ctx context.Context, info *gabs.Container) ([]metadata.TranscriptSegment, string, bool, error) {
	manual := info.S("subtitles")
	auto := info.S("automatic_captions")
	requested := info.S("requested_subtitles")

	for _, lang := range preferredLangs {
		track := requested.S(lang)
		if track == nil {
			continue
		}
		segments := s.decodeFormat(ctx, track)
		if len(segments) > 0 {
			return segments, lang, manual.S(lang) == nil, nil
		}
	}

	for _, source := range []struct {
		tracks *gabs.Container
		isAuto bool
	}{{manual, false}, {auto, true}} {
		for _, lang := range preferredLangs {
			track := source.tracks.S(lang)
			if track == nil {
				continue
			}
			for _, format := range track.Children() {
				segments := s.decodeFormat(ctx, format)
				if len(segments) > 0 {
					return segments, lang, source.isAuto, nil
				}
			}
		}
	}
	return nil, "", false, fmt.Errorf("no transcript found via yt-dlp: %w", ErrNoTranscript)
}

// decodeFormat decodes one subtitle format entry, either from embedded
// data or by fetching its URL.
func (s *YtdlpTranscriptScraper) decodeFormat(ctx context.Context, format *gabs.Container) []metadata.TranscriptSegment {
	if jsonString(format, "ext") != "json3" {
		return nil
	}
	if data := format.S("data"); data != nil {
		if segments, err := decodeTimedtext(data.Bytes()); err == nil {
			return segments
		}
	}
	u := jsonString(format, "url")
	if u == "" || s.http == nil {
		return nil
	}
	resp, err := s.http.Get(ctx, u)
	if err != nil {
		return nil
	}
	segments, err := decodeTimedtext(resp.Body)
	if err != nil {
		return nil
	}
	return segments
}

func subtitleLanguages(info *gabs.Container) []string {
	langs := map[string]bool{}
	for lang := range info.S("subtitles").ChildrenMap() {
		langs[lang] = true
	}
	for lang := range info.S("automatic_captions").ChildrenMap() {
		langs[lang] = true
	}
	out := make([]string, 0, len(langs))
	for lang := range langs {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}
