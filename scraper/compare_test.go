package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytscope/metadata"
)

func makeSegments(n int) []metadata.TranscriptSegment {
	segments := make([]metadata.TranscriptSegment, n)
	for i := range segments {
		segments[i] = metadata.TranscriptSegment{Text: "seg", Start: float64(i)}
	}
	return segments
}

func TestBuildSummary(t *testing.T) {
	views := int64(1000)
	subs := int64(50000)
	fps := 29.97

	general := metadata.New("abc12345678", MethodYtdlp)
	general.Title = "a video"
	general.Description = "desc"
	general.Engagement = &metadata.EngagementMetrics{ViewCount: &views}
	general.Technical = &metadata.TechnicalDetails{FPS: &fps}
	general.Classification = &metadata.ContentClassification{Tags: []string{"a", "b", "c"}}
	general.Transcript = makeSegments(50)

	api := metadata.New("abc12345678", MethodAPI)
	api.Title = "a video"
	api.Channel = &metadata.ChannelInfo{ID: "UC1", SubscriberCount: &subs}
	api.Classification = &metadata.ContentClassification{Tags: []string{"a", "b", "c", "d", "e"}}
	api.Technical = &metadata.TechnicalDetails{VideoCodec: "avc1.640028"}

	transcript := metadata.New("abc12345678", MethodYtdlpTranscript)
	transcript.Transcript = makeSegments(10)

	results := []*metadata.ScrapeResult{
		metadata.Succeeded(MethodYtdlp, general, time.Second, 60),
		metadata.Succeeded(MethodAPI, api, time.Second, 12),
		metadata.Succeeded(MethodYtdlpTranscript, transcript, time.Second, 12),
		metadata.Failed(MethodWhisperAPI, "OPENAI_API_KEY not configured. Add it to your environment variables.", 0),
	}

	summary := BuildSummary(results)

	assert.Equal(t, []string{MethodYtdlp, MethodAPI, MethodYtdlpTranscript}, summary.MethodsSucceeded)
	require.Len(t, summary.MethodsFailed, 1)
	assert.Equal(t, MethodWhisperAPI, summary.MethodsFailed[0].Method)
	assert.Contains(t, summary.MethodsFailed[0].Error, "OPENAI_API_KEY")

	assert.True(t, summary.FieldComparison["title"][MethodYtdlp])
	assert.True(t, summary.FieldComparison["title"][MethodAPI])
	assert.False(t, summary.FieldComparison["title"][MethodYtdlpTranscript])
	assert.True(t, summary.FieldComparison["view_count"][MethodYtdlp])
	assert.False(t, summary.FieldComparison["view_count"][MethodAPI])
	assert.True(t, summary.FieldComparison["channel_subscribers"][MethodAPI])
	assert.True(t, summary.FieldComparison["technical_details"][MethodYtdlp])
	assert.True(t, summary.FieldComparison["technical_details"][MethodAPI], "a codec alone marks technical details present")
	assert.False(t, summary.FieldComparison["technical_details"][MethodYtdlpTranscript])
	assert.NotContains(t, summary.FieldComparison["title"], MethodWhisperAPI, "failed methods do not appear")

	assert.Equal(t, metadata.BestMethod{Method: MethodYtdlp, Count: 50}, summary.BestFor["transcript"])
	assert.Equal(t, metadata.BestMethod{Method: MethodAPI, Count: 5}, summary.BestFor["tags"])
	assert.Equal(t, metadata.BestMethod{Method: MethodYtdlp}, summary.BestFor["technical_details"])

	// title, description, view_count, transcript, tags, channel_subscribers,
	// technical_details
	assert.Equal(t, 7, summary.TotalUniqueFields)
}

func TestBuildSummaryTieKeepsFirstMethod(t *testing.T) {
	first := metadata.New("abc12345678", MethodYtdlp)
	first.Transcript = makeSegments(10)
	second := metadata.New("abc12345678", MethodYtdlpTranscript)
	second.Transcript = makeSegments(10)

	summary := BuildSummary([]*metadata.ScrapeResult{
		metadata.Succeeded(MethodYtdlp, first, time.Second, 10),
		metadata.Succeeded(MethodYtdlpTranscript, second, time.Second, 12),
	})

	assert.Equal(t, MethodYtdlp, summary.BestFor["transcript"].Method)
}

func TestBuildSummaryAllFailed(t *testing.T) {
	summary := BuildSummary([]*metadata.ScrapeResult{
		metadata.Failed(MethodYtdlp, "download error: boom", time.Second),
		metadata.Failed(MethodAPI, "video not found or is private", time.Second),
	})

	assert.Empty(t, summary.MethodsSucceeded)
	assert.Len(t, summary.MethodsFailed, 2)
	assert.Empty(t, summary.BestFor)
	assert.Zero(t, summary.TotalUniqueFields)
}

func TestBuildComparison(t *testing.T) {
	results := []*metadata.ScrapeResult{
		metadata.Failed(MethodYtdlp, "download error: boom", time.Second),
	}
	cmp := BuildComparison("https://youtu.be/dQw4w9WgXcQ", results)

	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", cmp.VideoURL)
	assert.Equal(t, results, cmp.Results)
	assert.Len(t, cmp.Summary.MethodsFailed, 1)
}
