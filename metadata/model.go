// Package metadata defines the canonical video metadata model shared by
// every extraction method, along with the result envelope and comparison
// types returned to callers.
package metadata

import "time"

// MaxComments is the hard cap on comments kept from any source.
const MaxComments = 100

// Thumbnail is a single thumbnail image variant.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  *int   `json:"width,omitempty"`
	Height *int   `json:"height,omitempty"`
}

// Chapter is a named section of a video. EndTime is nil for the final
// chapter when chapters are derived from description text.
type Chapter struct {
	Title     string   `json:"title"`
	StartTime float64  `json:"start_time"`
	EndTime   *float64 `json:"end_time,omitempty"`
}

// TranscriptSegment is one timed caption line. Start and Duration are in
// seconds.
type TranscriptSegment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Comment is a single top-level comment on a video.
type Comment struct {
	Author          string `json:"author"`
	AuthorChannelID string `json:"author_channel_id,omitempty"`
	Text            string `json:"text"`
	Likes           int64  `json:"likes"`
	PublishedAt     string `json:"published_at,omitempty"`
	ReplyCount      int64  `json:"reply_count"`
}

// ChannelInfo describes the channel that owns a video. SubscriberCount is
// nil unless the source can report it (only the Data API path can).
type ChannelInfo struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	URL             string `json:"url,omitempty"`
	SubscriberCount *int64 `json:"subscriber_count,omitempty"`
}

// EngagementMetrics holds view/like/comment counters. A nil count means
// the source did not report the field, which is distinct from zero.
type EngagementMetrics struct {
	ViewCount    *int64 `json:"view_count,omitempty"`
	LikeCount    *int64 `json:"like_count,omitempty"`
	DislikeCount *int64 `json:"dislike_count,omitempty"`
	CommentCount *int64 `json:"comment_count,omitempty"`
}

// TechnicalDetails holds stream-level attributes. Each field is
// independently optional; the Data API reports only a subset of what
// yt-dlp can see.
type TechnicalDetails struct {
	Duration       *int64   `json:"duration,omitempty"`
	DurationString string   `json:"duration_string,omitempty"`
	Definition     string   `json:"definition,omitempty"`
	Dimension      string   `json:"dimension,omitempty"`
	FPS            *float64 `json:"fps,omitempty"`
	VideoCodec     string   `json:"video_codec,omitempty"`
	AudioCodec     string   `json:"audio_codec,omitempty"`
	Filesize       *int64   `json:"filesize,omitempty"`
	Bitrate        *float64 `json:"bitrate,omitempty"`
}

// ContentClassification groups category, tag, and content-flag data.
// IsMadeForKids is a three-state flag: nil means the source does not know.
type ContentClassification struct {
	Category        string   `json:"category,omitempty"`
	CategoryID      string   `json:"category_id,omitempty"`
	Tags            []string `json:"tags"`
	Hashtags        []string `json:"hashtags"`
	IsAgeRestricted bool     `json:"is_age_restricted"`
	IsMadeForKids   *bool    `json:"is_made_for_kids,omitempty"`
	IsLive          bool     `json:"is_live"`
	IsUpcoming      bool     `json:"is_upcoming"`
}

// VideoMetadata is the normalized record every extraction method produces.
// Fields a method cannot populate are left at their zero value (or nil for
// optional sub-records); VideoID is the only field required to be
// non-empty on a successful extraction.
type VideoMetadata struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	// UploadDate is a compact YYYYMMDD string; PublishDate is a full
	// timestamp. A source may know one, both, or neither.
	UploadDate  string `json:"upload_date,omitempty"`
	PublishDate string `json:"publish_date,omitempty"`

	Channel        *ChannelInfo           `json:"channel,omitempty"`
	Engagement     *EngagementMetrics     `json:"engagement,omitempty"`
	Technical      *TechnicalDetails      `json:"technical,omitempty"`
	Classification *ContentClassification `json:"classification,omitempty"`

	Thumbnails         []Thumbnail         `json:"thumbnails"`
	Chapters           []Chapter           `json:"chapters"`
	Transcript         []TranscriptSegment `json:"transcript"`
	AvailableLanguages []string            `json:"available_languages"`
	Comments           []Comment           `json:"comments"`

	WebpageURL   string `json:"webpage_url,omitempty"`
	EmbedURL     string `json:"embed_url,omitempty"`
	IsEmbeddable *bool  `json:"is_embeddable,omitempty"`
	License      string `json:"license,omitempty"`

	// RawData carries the untransformed source payload. Its shape differs
	// per method and is not part of the stable contract; transcript
	// methods also stash derived statistics here.
	RawData map[string]any `json:"raw_data,omitempty"`

	// ScraperMethod names the extraction method that produced this record.
	ScraperMethod string `json:"scraper_method"`

	// ScrapedAt is stamped once at construction and never mutated.
	ScrapedAt time.Time `json:"scraped_at"`
}

// New creates a VideoMetadata record for the given video and method with
// the scrape timestamp stamped at construction time.
func New(videoID, method string) *VideoMetadata {
	return &VideoMetadata{
		VideoID:       videoID,
		ScraperMethod: method,
		ScrapedAt:     time.Now().UTC(),
	}
}

// CapComments truncates the comment list to MaxComments entries.
func (m *VideoMetadata) CapComments() {
	if len(m.Comments) > MaxComments {
		m.Comments = m.Comments[:MaxComments]
	}
}

// BackfillChapterEnds sets each chapter's end time from the next chapter's
// start time. The final chapter's end time is left unset.
func BackfillChapterEnds(chapters []Chapter) {
	for i := 0; i+1 < len(chapters); i++ {
		end := chapters[i+1].StartTime
		chapters[i].EndTime = &end
	}
}
