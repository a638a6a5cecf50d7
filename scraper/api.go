package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"ytscope/metadata"
	"ytscope/retry"
	"ytscope/youtube"
)

// ErrAPIKeyMissing is returned at construction when no Data API credential
// is configured. Its text is surfaced verbatim in failure envelopes.
var ErrAPIKeyMissing = errors.New("YouTube API key not configured. Set YOUTUBE_API_KEY environment variable.")

// APIScraper extracts metadata through the official Data API v3. The API
// reports exact statistics and moderation flags but no transcripts and
// only container-level technical details.
type APIScraper struct {
	service *ytapi.Service
	retry   retry.Config
}

// NewAPIScraper builds the extractor, validating the credential and
// constructing the API client eagerly. Extra client options are accepted
// for tests that point the client at a local server.
func NewAPIScraper(ctx context.Context, apiKey string, opts ...option.ClientOption) (*APIScraper, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyMissing
	}
	svc, err := ytapi.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("creating youtube service: %w", err)
	}
	return &APIScraper{service: svc, retry: retry.DefaultConfig()}, nil
}

// Method returns the strategy's method tag.
func (s *APIScraper) Method() string { return MethodAPI }

// Scrape fetches the video resource, then enriches it with channel
// statistics and comments. Only the video fetch is fatal; the follow-up
// calls degrade silently since channels can hide subscriber counts and
// videos can disable comments.
func (s *APIScraper) Scrape(ctx context.Context, url string, opts Options) *metadata.ScrapeResult {
	return attempt(ctx, MethodAPI, func(ctx context.Context) (*metadata.VideoMetadata, int, error) {
		videoID, ok := youtube.ExtractVideoID(url)
		if !ok {
			return nil, 0, ErrNoVideoID
		}

		var resp *ytapi.VideoListResponse
		err := retry.Do(ctx, s.retry, apiRetryable, func(ctx context.Context) error {
			var callErr error
			resp, callErr = s.service.Videos.
				List([]string{"snippet", "contentDetails", "statistics", "status", "liveStreamingDetails"}).
				Id(videoID).
				Context(ctx).
				Do()
			return callErr
		})
		if err != nil {
			return nil, 0, fmt.Errorf("youtube api: %w", err)
		}
		if len(resp.Items) == 0 {
			return nil, 0, ErrVideoNotFound
		}

		md := s.parseVideo(videoID, resp.Items[0])
		if md.Channel != nil && md.Channel.ID != "" {
			s.fetchChannelStats(ctx, md.Channel)
		}
		if opts.IncludeComments {
			md.Comments = s.fetchComments(ctx, videoID)
			md.CapComments()
		}
		return md, metadata.CountAPIFields(md), nil
	})
}

func (s *APIScraper) parseVideo(videoID string, video *ytapi.Video) *metadata.VideoMetadata {
	md := metadata.New(videoID, MethodAPI)

	snippet := video.Snippet
	if snippet != nil {
		md.Title = snippet.Title
		md.Description = snippet.Description
		md.PublishDate = snippet.PublishedAt
		if date, _, found := strings.Cut(snippet.PublishedAt, "T"); found {
			md.UploadDate = strings.ReplaceAll(date, "-", "")
		}
		md.Channel = &metadata.ChannelInfo{
			ID:   snippet.ChannelId,
			Name: snippet.ChannelTitle,
			URL:  youtube.ChannelURL(snippet.ChannelId),
		}
		md.Thumbnails = apiThumbnails(snippet.Thumbnails)
		md.Classification = &metadata.ContentClassification{
			Category:   youtube.CategoryName(snippet.CategoryId),
			CategoryID: snippet.CategoryId,
			Tags:       snippet.Tags,
			Hashtags:   youtube.DedupStrings(append(youtube.ExtractHashtags(snippet.Description), youtube.ExtractHashtags(snippet.Title)...)),
			IsLive:     snippet.LiveBroadcastContent == "live",
			IsUpcoming: snippet.LiveBroadcastContent == "upcoming",
		}
	}

	if stats := video.Statistics; stats != nil {
		view := int64(stats.ViewCount)
		like := int64(stats.LikeCount)
		comment := int64(stats.CommentCount)
		md.Engagement = &metadata.EngagementMetrics{
			ViewCount:    &view,
			LikeCount:    &like,
			CommentCount: &comment,
		}
	}

	if details := video.ContentDetails; details != nil {
		tech := &metadata.TechnicalDetails{
			Definition: details.Definition,
			Dimension:  details.Dimension,
		}
		if seconds, ok := youtube.ParseISODuration(details.Duration); ok {
			tech.Duration = &seconds
			tech.DurationString = youtube.FormatDuration(seconds)
		}
		md.Technical = tech
		if md.Classification != nil && details.ContentRating != nil {
			md.Classification.IsAgeRestricted = details.ContentRating.YtRating == "ytAgeRestricted"
		}
	}

	if status := video.Status; status != nil {
		madeForKids := status.MadeForKids
		embeddable := status.Embeddable
		if md.Classification != nil {
			md.Classification.IsMadeForKids = &madeForKids
		}
		md.IsEmbeddable = &embeddable
		md.License = status.License
	}

	if len(md.Chapters) == 0 {
		md.Chapters = youtube.ParseChaptersFromDescription(md.Description)
	}

	md.WebpageURL = youtube.WatchURL(videoID)
	md.EmbedURL = youtube.EmbedURL(videoID)
	md.RawData = map[string]any{"api_response": video}
	return md
}

// fetchChannelStats fills in the subscriber count. Hidden counts and call
// failures leave it nil.
func (s *APIScraper) fetchChannelStats(ctx context.Context, channel *metadata.ChannelInfo) {
	resp, err := s.service.Channels.
		List([]string{"statistics"}).
		Id(channel.ID).
		Context(ctx).
		Do()
	if err != nil || len(resp.Items) == 0 {
		return
	}
	stats := resp.Items[0].Statistics
	if stats == nil || stats.HiddenSubscriberCount {
		return
	}
	subs := int64(stats.SubscriberCount)
	channel.SubscriberCount = &subs
}

// fetchComments returns up to MaxComments top-level comments by relevance.
// Videos with comments disabled make the API return an error; that is not
// a scrape failure.
func (s *APIScraper) fetchComments(ctx context.Context, videoID string) []metadata.Comment {
	resp, err := s.service.CommentThreads.
		List([]string{"snippet"}).
		VideoId(videoID).
		MaxResults(metadata.MaxComments).
		Order("relevance").
		TextFormat("plainText").
		Context(ctx).
		Do()
	if err != nil {
		return nil
	}

	comments := make([]metadata.Comment, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Snippet == nil || item.Snippet.TopLevelComment == nil || item.Snippet.TopLevelComment.Snippet == nil {
			continue
		}
		top := item.Snippet.TopLevelComment.Snippet
		comment := metadata.Comment{
			Author:      top.AuthorDisplayName,
			Text:        top.TextDisplay,
			Likes:       top.LikeCount,
			PublishedAt: top.PublishedAt,
			ReplyCount:  item.Snippet.TotalReplyCount,
		}
		if top.AuthorChannelId != nil {
			comment.AuthorChannelID = top.AuthorChannelId.Value
		}
		comments = append(comments, comment)
	}
	return comments
}

func apiThumbnails(details *ytapi.ThumbnailDetails) []metadata.Thumbnail {
	if details == nil {
		return nil
	}
	var out []metadata.Thumbnail
	for _, t := range []*ytapi.Thumbnail{details.Default, details.Medium, details.High, details.Standard, details.Maxres} {
		if t == nil || t.Url == "" {
			continue
		}
		w, h := int(t.Width), int(t.Height)
		out = append(out, metadata.Thumbnail{URL: t.Url, Width: &w, Height: &h})
	}
	return out
}

// apiRetryable retries quota exhaustion and server-side errors; not-found
// and bad-request responses are permanent.
func apiRetryable(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 429 || gerr.Code >= 500
	}
	return retry.IsRetryable(err)
}
