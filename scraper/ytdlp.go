package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/Jeffail/gabs/v2"

	ythttp "ytscope/http"
	"ytscope/metadata"
	"ytscope/youtube"
)

// YtdlpScraper is the general-purpose extractor. It shells out to yt-dlp
// in JSON-dump mode and maps the info dict into the canonical model. It
// produces the widest record of any strategy: stream-level technical
// details, chapters, comments, and subtitle tracks.
type YtdlpScraper struct {
	path    string
	timeout time.Duration
	http    *ythttp.Client
}

// NewYtdlpScraper builds the extractor. An empty path means "yt-dlp" on
// PATH. The HTTP client is used to fetch subtitle tracks that yt-dlp
// reports by URL only; it may be nil, in which case such tracks are
// skipped.
func NewYtdlpScraper(path string, timeout time.Duration, httpClient *ythttp.Client) *YtdlpScraper {
	if path == "" {
		path = "yt-dlp"
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &YtdlpScraper{path: path, timeout: timeout, http: httpClient}
}

// Method returns the strategy's method tag.
func (s *YtdlpScraper) Method() string { return MethodYtdlp }

// Scrape runs yt-dlp against the URL and normalizes its output.
func (s *YtdlpScraper) Scrape(ctx context.Context, url string, opts Options) *metadata.ScrapeResult {
	return attempt(ctx, MethodYtdlp, func(ctx context.Context) (*metadata.VideoMetadata, int, error) {
		videoID, ok := youtube.ExtractVideoID(url)
		if !ok {
			return nil, 0, ErrNoVideoID
		}

		args := []string{"-J", "--no-warnings", "--skip-download"}
		if opts.IncludeSubtitles {
			args = append(args,
				"--write-subs", "--write-auto-subs",
				"--sub-langs", strings.Join(preferredLangs, ","),
				"--sub-format", "json3",
			)
		}
		if opts.IncludeComments {
			args = append(args,
				"--write-comments",
				"--extractor-args", fmt.Sprintf("youtube:max_comments=%d", metadata.MaxComments),
			)
		}
		args = append(args, url)

		info, err := runYtdlp(ctx, s.path, s.timeout, args)
		if err != nil {
			return nil, 0, err
		}

		md := s.parseInfo(ctx, videoID, info, opts)
		return md, metadata.CountGeneralFields(md), nil
	})
}

func (s *YtdlpScraper) parseInfo(ctx context.Context, videoID string, info *gabs.Container, opts Options) *metadata.VideoMetadata {
	md := metadata.New(videoID, MethodYtdlp)
	md.Title = jsonString(info, "title")
	md.Description = jsonString(info, "description")
	md.UploadDate = jsonString(info, "upload_date")
	md.PublishDate = firstNonEmpty(jsonString(info, "release_date"), md.UploadDate)

	md.Channel = &metadata.ChannelInfo{
		ID:              jsonString(info, "channel_id"),
		Name:            firstNonEmpty(jsonString(info, "channel"), jsonString(info, "uploader")),
		URL:             firstNonEmpty(jsonString(info, "channel_url"), jsonString(info, "uploader_url")),
		SubscriberCount: jsonInt64(info, "channel_follower_count"),
	}
	md.Engagement = &metadata.EngagementMetrics{
		ViewCount:    jsonInt64(info, "view_count"),
		LikeCount:    jsonInt64(info, "like_count"),
		DislikeCount: jsonInt64(info, "dislike_count"),
		CommentCount: jsonInt64(info, "comment_count"),
	}

	duration := jsonInt64(info, "duration")
	tech := &metadata.TechnicalDetails{
		Duration:   duration,
		FPS:        jsonFloat64(info, "fps"),
		VideoCodec: jsonString(info, "vcodec"),
		AudioCodec: jsonString(info, "acodec"),
		Filesize:   firstInt64(jsonInt64(info, "filesize"), jsonInt64(info, "filesize_approx")),
		Bitrate:    jsonFloat64(info, "tbr"),
		Dimension:  "2d",
	}
	if jsonBool(info, "is_3d") {
		tech.Dimension = "3d"
	}
	if duration != nil {
		tech.DurationString = youtube.FormatDuration(*duration)
	}
	if h := jsonInt64(info, "height"); h != nil {
		if *h >= 720 {
			tech.Definition = "hd"
		} else {
			tech.Definition = "sd"
		}
	}
	md.Technical = tech

	tags := jsonStringSlice(info, "tags")
	md.Classification = &metadata.ContentClassification{
		Category:        firstString(jsonStringSlice(info, "categories")),
		Tags:            tags,
		Hashtags:        youtube.DedupStrings(append(youtube.ExtractHashtags(md.Description), youtube.ExtractHashtags(md.Title)...)),
		IsAgeRestricted: jsonInt64OrZero(info, "age_limit") > 0,
		IsLive:          jsonBool(info, "is_live"),
		IsUpcoming:      jsonString(info, "live_status") == "is_upcoming",
	}

	for _, t := range info.S("thumbnails").Children() {
		u := jsonString(t, "url")
		if u == "" {
			continue
		}
		md.Thumbnails = append(md.Thumbnails, metadata.Thumbnail{
			URL:    u,
			Width:  jsonInt(t, "width"),
			Height: jsonInt(t, "height"),
		})
	}

	for _, c := range info.S("chapters").Children() {
		ch := metadata.Chapter{
			Title:     jsonString(c, "title"),
			StartTime: jsonFloat64OrZero(c, "start_time"),
			EndTime:   jsonFloat64(c, "end_time"),
		}
		md.Chapters = append(md.Chapters, ch)
	}
	if len(md.Chapters) == 0 {
		md.Chapters = youtube.ParseChaptersFromDescription(md.Description)
	}

	if opts.IncludeSubtitles {
		md.Transcript, md.AvailableLanguages = s.extractSubtitles(ctx, info)
	}

	if opts.IncludeComments {
		for _, c := range info.S("comments").Children() {
			comment := metadata.Comment{
				Author:          jsonString(c, "author"),
				AuthorChannelID: jsonString(c, "author_id"),
				Text:            jsonString(c, "text"),
				Likes:           jsonInt64OrZero(c, "like_count"),
				ReplyCount:      jsonInt64OrZero(c, "reply_count"),
			}
			if ts := jsonInt64(c, "timestamp"); ts != nil {
				comment.PublishedAt = strconv.FormatInt(*ts, 10)
			}
			md.Comments = append(md.Comments, comment)
		}
		md.CapComments()
	}

	md.WebpageURL = firstNonEmpty(jsonString(info, "webpage_url"), youtube.WatchURL(videoID))
	md.EmbedURL = youtube.EmbedURL(videoID)
	md.IsEmbeddable = jsonBoolPtr(info, "playable_in_embed")
	md.License = jsonString(info, "license")

	if raw, ok := info.Data().(map[string]any); ok {
		md.RawData = raw
	}
	return md
}

// extractSubtitles pulls the best English subtitle track from the info
// dict. Manually uploaded tracks shadow auto-generated ones for the same
// language code. Tracks carrying embedded json3 data are decoded in
// place; URL-only tracks are fetched when the HTTP client is available.
func (s *YtdlpScraper) extractSubtitles(ctx context.Context, info *gabs.Container) ([]metadata.TranscriptSegment, []string) {
	manual := info.S("subtitles")
	auto := info.S("automatic_captions")
	available := subtitleLanguages(info)

	for _, lang := range preferredLangs {
		track := manual.S(lang)
		if track == nil {
			track = auto.S(lang)
		}
		if track == nil {
			continue
		}
		if segments := s.decodeTrack(ctx, track); len(segments) > 0 {
			return segments, available
		}
	}
	return nil, available
}

func (s *YtdlpScraper) decodeTrack(ctx context.Context, track *gabs.Container) []metadata.TranscriptSegment {
	for _, format := range track.Children() {
		if jsonString(format, "ext") != "json3" {
			continue
		}
		if data := format.S("data"); data != nil {
			if segments, err := decodeTimedtext(data.Bytes()); err == nil && len(segments) > 0 {
				return segments
			}
		}
		u := jsonString(format, "url")
		if u == "" || s.http == nil {
			continue
		}
		resp, err := s.http.Get(ctx, u)
		if err != nil {
			continue
		}
		if segments, err := decodeTimedtext(resp.Body); err == nil && len(segments) > 0 {
			return segments
		}
	}
	return nil
}

// runYtdlp executes yt-dlp with the given args and parses its JSON
// output. Subprocess failures are classified by stderr content so callers
// surface the same message regardless of yt-dlp version noise.
func runYtdlp(ctx context.Context, path string, timeout time.Duration, args []string) (*gabs.Container, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ErrYtdlpNotInstalled
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("yt-dlp timed out: %w", ctx.Err())
		}
		return nil, classifyYtdlpError(stderr.String(), err)
	}

	info, err := gabs.ParseJSON(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("parsing yt-dlp output: %w", err)
	}
	return info, nil
}

func classifyYtdlpError(stderr string, err error) error {
	switch {
	case strings.Contains(stderr, "Video unavailable"):
		return ErrVideoUnavailable
	case strings.Contains(stderr, "Private video"):
		return ErrVideoNotFound
	case stderr != "":
		return fmt.Errorf("download error: %s", firstLine(stderr))
	default:
		return fmt.Errorf("download error: %w", err)
	}
}

// firstLine returns the first non-empty line of s, trimmed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return strings.TrimSpace(s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstString(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func firstInt64(values ...*int64) *int64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
