package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ytdlpTranscriptPayload = `{
	"id": "dQw4w9WgXcQ",
	"title": "Test Video",
	"webpage_url": "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	"subtitles": {
		"en": [{"ext": "json3", "url": "https://example.invalid/en"}]
	},
	"automatic_captions": {
		"en": [{"ext": "json3", "url": "https://example.invalid/en-asr"}],
		"de": [{"ext": "json3", "url": "https://example.invalid/de"}]
	},
	"requested_subtitles": {
		"en": {"ext": "json3", "data": {"events": [
			{"tStartMs": 0, "dDurationMs": 2000, "segs": [{"utf8": "never gonna"}]},
			{"tStartMs": 2000, "dDurationMs": 2000, "segs": [{"utf8": "give you up"}]}
		]}}
	}
}`

func TestYtdlpTranscriptScrape(t *testing.T) {
	s := NewYtdlpTranscriptScraper(fakeYtdlp(t, ytdlpTranscriptPayload), time.Minute, nil)
	result := s.Scrape(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", Options{})

	require.True(t, result.Success, "scrape failed: %s", result.Error)
	assert.Equal(t, MethodYtdlpTranscript, result.Method)

	data := result.Data
	require.NotNil(t, data)
	assert.Equal(t, "dQw4w9WgXcQ", data.VideoID)
	assert.Equal(t, "Test Video", data.Title)
	require.Len(t, data.Transcript, 2)
	assert.Equal(t, "never gonna", data.Transcript[0].Text)
	assert.Equal(t, 2.0, data.Transcript[1].Start)
	assert.Equal(t, []string{"de", "en"}, data.AvailableLanguages)

	require.NotNil(t, data.RawData)
	assert.Equal(t, "en", data.RawData["transcript_language"])
	assert.Equal(t, false, data.RawData["is_auto_generated"], "language listed under manual subtitles")
	assert.Equal(t, 5, data.RawData["word_count"])
	assert.Equal(t, 2, data.RawData["segment_count"])

	assert.Equal(t, result.FieldsExtracted, 2+2+2, "segments + languages + 2")
}

func TestYtdlpTranscriptNoneAvailable(t *testing.T) {
	payload := `{"id": "dQw4w9WgXcQ", "title": "Silent", "subtitles": {}, "automatic_captions": {}}`
	s := NewYtdlpTranscriptScraper(fakeYtdlp(t, payload), time.Minute, nil)
	result := s.Scrape(context.Background(), "https://youtu.be/dQw4w9WgXcQ", Options{})

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "no transcript found via yt-dlp")
}

func TestYtdlpTranscriptAutoGeneratedFallback(t *testing.T) {
	payload := `{
		"id": "dQw4w9WgXcQ",
		"title": "Auto Only",
		"automatic_captions": {
			"en": [{"ext": "json3", "data": {"events": [
				{"tStartMs": 0, "dDurationMs": 1000, "segs": [{"utf8": "auto text"}]}
			]}}]
		}
	}`
	s := NewYtdlpTranscriptScraper(fakeYtdlp(t, payload), time.Minute, nil)
	result := s.Scrape(context.Background(), "https://youtu.be/dQw4w9WgXcQ", Options{})

	require.True(t, result.Success, "scrape failed: %s", result.Error)
	assert.Equal(t, true, result.Data.RawData["is_auto_generated"])
	require.Len(t, result.Data.Transcript, 1)
	assert.Equal(t, "auto text", result.Data.Transcript[0].Text)
}
