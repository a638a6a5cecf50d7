package scraper

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	ythttp "ytscope/http"
	"ytscope/metadata"
	"ytscope/retry"
	"ytscope/youtube"
)

const (
	// playerEndpoint is the Innertube API endpoint for player metadata,
	// which includes the caption track listing.
	playerEndpoint = "https://www.youtube.com/youtubei/v1/player"

	// innertubeClientName and innertubeClientVersion identify a web
	// client to the Innertube API.
	innertubeClientName    = "WEB"
	innertubeClientVersion = "2.20240101.00.00"

	innertubeUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// PlayerTranscriptScraper extracts transcripts through YouTube's internal
// player endpoint, the same listing the watch page uses. It needs no
// credential and no subprocess, making it the cheapest transcript source,
// but it is also the first to be refused when YouTube suspects bot
// traffic.
type PlayerTranscriptScraper struct {
	http        *ythttp.Client
	endpoint    string
	retryConfig retry.Config
}

// PlayerOption configures the scraper.
type PlayerOption func(*PlayerTranscriptScraper)

// WithPlayerEndpoint overrides the Innertube endpoint. Used by tests.
func WithPlayerEndpoint(url string) PlayerOption {
	return func(s *PlayerTranscriptScraper) { s.endpoint = url }
}

// NewPlayerTranscriptScraper builds the extractor on top of a shared HTTP
// client.
func NewPlayerTranscriptScraper(httpClient *ythttp.Client, opts ...PlayerOption) *PlayerTranscriptScraper {
	s := &PlayerTranscriptScraper{
		http:        httpClient,
		endpoint:    playerEndpoint,
		retryConfig: retry.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Method returns the strategy's method tag.
func (s *PlayerTranscriptScraper) Method() string { return MethodTranscriptAPI }

// Scrape lists the video's caption tracks, picks the best one, and fetches
// it in json3 form. Manually created tracks beat auto-generated ones;
// within each group the preferred English variants are tried in order,
// and if no English track exists the first track of any language is used.
func (s *PlayerTranscriptScraper) Scrape(ctx context.Context, url string, _ Options) *metadata.ScrapeResult {
	return attempt(ctx, MethodTranscriptAPI, func(ctx context.Context) (*metadata.VideoMetadata, int, error) {
		videoID, ok := youtube.ExtractVideoID(url)
		if !ok {
			return nil, 0, ErrNoVideoID
		}

		player, err := s.fetchPlayer(ctx, videoID)
		if err != nil {
			return nil, 0, err
		}

		if ps := player.PlayabilityStatus; ps != nil && ps.Status == "ERROR" {
			return nil, 0, ErrVideoUnavailable
		}

		tracks := player.captionTracks()
		if len(tracks) == 0 {
			return nil, 0, ErrTranscriptsDisabled
		}

		track, ok := pickCaptionTrack(tracks)
		if !ok {
			return nil, 0, fmt.Errorf("no transcript found in requested languages: %w", ErrNoTranscript)
		}

		segments, err := s.fetchTrack(ctx, track)
		if err != nil {
			return nil, 0, err
		}

		md := metadata.New(videoID, MethodTranscriptAPI)
		if player.VideoDetails != nil {
			md.Title = player.VideoDetails.Title
		}
		md.Transcript = segments
		md.WebpageURL = youtube.WatchURL(videoID)

		var manualLangs, autoLangs []string
		for _, t := range tracks {
			md.AvailableLanguages = append(md.AvailableLanguages, t.LanguageCode)
			if t.auto() {
				autoLangs = append(autoLangs, t.LanguageCode)
			} else {
				manualLangs = append(manualLangs, t.LanguageCode)
			}
		}

		md.RawData = map[string]any{
			"transcript_language":  track.LanguageCode,
			"is_auto_generated":    track.auto(),
			"manual_languages":     manualLangs,
			"auto_languages":       autoLangs,
			"word_count":           transcriptWordCount(segments),
			"segment_count":        len(segments),
			"full_transcript_text": TranscriptText(segments, false),
		}
		return md, metadata.CountTranscriptFields(md), nil
	})
}

func (s *PlayerTranscriptScraper) fetchPlayer(ctx context.Context, videoID string) (*playerResponse, error) {
	req := playerRequest{
		Context: innertubeContext{
			Client: innertubeClient{
				ClientName:    innertubeClientName,
				ClientVersion: innertubeClientVersion,
				HL:            "en",
				GL:            "US",
			},
		},
		VideoID: videoID,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal player request: %w", err)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		"User-Agent":   innertubeUserAgent,
		"Origin":       "https://www.youtube.com",
		"Referer":      "https://www.youtube.com/",
	}

	var player *playerResponse
	err = retry.Do(ctx, s.retryConfig, playerErrorClassifier, func(ctx context.Context) error {
		resp, err := s.http.Do(ctx, http.MethodPost, s.endpoint, body, headers)
		if err != nil {
			return fmt.Errorf("player request: %w", err)
		}
		if err := json.Unmarshal(resp.Body, &player); err != nil {
			return fmt.Errorf("unmarshal player response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return player, nil
}

func (s *PlayerTranscriptScraper) fetchTrack(ctx context.Context, track captionTrack) ([]metadata.TranscriptSegment, error) {
	u := track.BaseURL
	if !strings.Contains(u, "fmt=") {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + "fmt=json3"
	}
	resp, err := s.http.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetching caption track: %w", err)
	}
	return decodeTimedtext(resp.Body)
}

// pickCaptionTrack selects the track to fetch: preferred English variants
// among manual tracks, then among auto-generated ones, then the first
// track at all.
func pickCaptionTrack(tracks []captionTrack) (captionTrack, bool) {
	for _, wantAuto := range []bool{false, true} {
		for _, lang := range preferredLangs {
			for _, t := range tracks {
				if t.auto() == wantAuto && t.LanguageCode == lang {
					return t, true
				}
			}
		}
	}
	if len(tracks) > 0 {
		return tracks[0], true
	}
	return captionTrack{}, false
}

// playerErrorClassifier retries rate limits, bot checks, and server
// errors; everything else is permanent.
func playerErrorClassifier(err error) bool {
	var rateLimitErr *ythttp.RateLimitError
	if stderrors.As(err, &rateLimitErr) {
		return true
	}
	var httpErr *ythttp.HTTPError
	if stderrors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500 || httpErr.StatusCode == 403
	}
	return retry.IsRetryable(err)
}

// playerRequest is the Innertube player request body.
type playerRequest struct {
	Context innertubeContext `json:"context"`
	VideoID string           `json:"videoId"`
}

type innertubeContext struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
	HL            string `json:"hl"`
	GL            string `json:"gl"`
}

// playerResponse is the subset of the player payload this scraper reads.
type playerResponse struct {
	PlayabilityStatus *playabilityStatus `json:"playabilityStatus,omitempty"`
	Captions          *captionsWrapper   `json:"captions,omitempty"`
	VideoDetails      *videoDetails      `json:"videoDetails,omitempty"`
}

type playabilityStatus struct {
	Status string `json:"status,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type captionsWrapper struct {
	PlayerCaptionsTracklistRenderer *captionsTracklist `json:"playerCaptionsTracklistRenderer,omitempty"`
}

type captionsTracklist struct {
	CaptionTracks []captionTrack `json:"captionTracks,omitempty"`
}

// captionTrack describes one caption track. Kind is "asr" for
// auto-generated tracks and empty for manually created ones.
type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind,omitempty"`
}

func (t captionTrack) auto() bool { return t.Kind == "asr" }

type videoDetails struct {
	VideoID string `json:"videoId,omitempty"`
	Title   string `json:"title,omitempty"`
}

func (p *playerResponse) captionTracks() []captionTrack {
	if p == nil || p.Captions == nil || p.Captions.PlayerCaptionsTracklistRenderer == nil {
		return nil
	}
	return p.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
}
