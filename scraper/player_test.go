package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ythttp "ytscope/http"
)

// newPlayerTestServer serves a canned player payload plus a json3
// timedtext endpoint. The payload is built from the server's own URL, so
// caption track baseUrls resolve back to the test server.
func newPlayerTestServer(t *testing.T, payload func(baseURL string) map[string]any) *httptest.Server {
	t.Helper()
	var serverURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/player", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var req playerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "dQw4w9WgXcQ", req.VideoID)
		assert.Equal(t, "WEB", req.Context.Client.ClientName)

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(payload(serverURL)))
	})
	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json3", r.URL.Query().Get("fmt"))
		fmt.Fprint(w, `{"events":[
			{"tStartMs":0,"dDurationMs":2000,"segs":[{"utf8":"first line"}]},
			{"tStartMs":2000,"dDurationMs":1000,"segs":[{"utf8":"second"}]}
		]}`)
	})
	srv := httptest.NewServer(mux)
	serverURL = srv.URL
	t.Cleanup(srv.Close)
	return srv
}

func newPlayerScraper(srv *httptest.Server) *PlayerTranscriptScraper {
	client := ythttp.New(nil)
	return NewPlayerTranscriptScraper(client, WithPlayerEndpoint(srv.URL+"/player"))
}

func TestPlayerTranscriptScrape(t *testing.T) {
	srv := newPlayerTestServer(t, playerPayload)
	s := newPlayerScraper(srv)
	result := s.Scrape(context.Background(), "https://youtu.be/dQw4w9WgXcQ", Options{})

	require.True(t, result.Success, "scrape failed: %s", result.Error)
	assert.Equal(t, MethodTranscriptAPI, result.Method)

	data := result.Data
	require.NotNil(t, data)
	assert.Equal(t, "dQw4w9WgXcQ", data.VideoID)
	assert.Equal(t, "Some Video", data.Title)
	require.Len(t, data.Transcript, 2)
	assert.Equal(t, "first line", data.Transcript[0].Text)
	assert.Equal(t, 2.0, data.Transcript[0].Duration)
	assert.ElementsMatch(t, []string{"en", "en", "de"}, data.AvailableLanguages)

	require.NotNil(t, data.RawData)
	assert.Equal(t, "en", data.RawData["transcript_language"])
	assert.Equal(t, false, data.RawData["is_auto_generated"], "manual track beats auto-generated")
	assert.Equal(t, 3, data.RawData["word_count"])
	assert.Equal(t, 2, data.RawData["segment_count"])
}

func playerPayload(baseURL string) map[string]any {
	return map[string]any{
		"playabilityStatus": map[string]any{"status": "OK"},
		"videoDetails":      map[string]any{"videoId": "dQw4w9WgXcQ", "title": "Some Video"},
		"captions": map[string]any{
			"playerCaptionsTracklistRenderer": map[string]any{
				"captionTracks": []map[string]any{
					{"baseUrl": baseURL + "/timedtext?lang=en&kind=asr", "languageCode": "en", "kind": "asr"},
					{"baseUrl": baseURL + "/timedtext?lang=en", "languageCode": "en"},
					{"baseUrl": baseURL + "/timedtext?lang=de", "languageCode": "de"},
				},
			},
		},
	}
}

func TestPlayerTranscriptDisabled(t *testing.T) {
	srv := newPlayerTestServer(t, func(string) map[string]any {
		return map[string]any{
			"playabilityStatus": map[string]any{"status": "OK"},
			"videoDetails":      map[string]any{"videoId": "dQw4w9WgXcQ"},
		}
	})

	s := newPlayerScraper(srv)
	result := s.Scrape(context.Background(), "https://youtu.be/dQw4w9WgXcQ", Options{})

	require.False(t, result.Success)
	assert.Equal(t, ErrTranscriptsDisabled.Error(), result.Error)
}

func TestPlayerTranscriptVideoUnavailable(t *testing.T) {
	srv := newPlayerTestServer(t, func(string) map[string]any {
		return map[string]any{
			"playabilityStatus": map[string]any{"status": "ERROR", "reason": "Video unavailable"},
		}
	})

	s := newPlayerScraper(srv)
	result := s.Scrape(context.Background(), "https://youtu.be/dQw4w9WgXcQ", Options{})

	require.False(t, result.Success)
	assert.Equal(t, ErrVideoUnavailable.Error(), result.Error)
}

func TestPlayerTranscriptBadURL(t *testing.T) {
	s := NewPlayerTranscriptScraper(ythttp.New(nil))
	result := s.Scrape(context.Background(), "https://example.com/not-youtube", Options{})

	require.False(t, result.Success)
	assert.Equal(t, ErrNoVideoID.Error(), result.Error)
}

func TestPickCaptionTrack(t *testing.T) {
	manualDE := captionTrack{BaseURL: "de", LanguageCode: "de"}
	manualEN := captionTrack{BaseURL: "en", LanguageCode: "en-GB"}
	autoEN := captionTrack{BaseURL: "asr", LanguageCode: "en", Kind: "asr"}

	track, ok := pickCaptionTrack([]captionTrack{autoEN, manualDE, manualEN})
	require.True(t, ok)
	assert.Equal(t, manualEN, track, "manual English beats auto-generated English")

	track, ok = pickCaptionTrack([]captionTrack{manualDE, autoEN})
	require.True(t, ok)
	assert.Equal(t, autoEN, track, "auto English beats manual non-English")

	track, ok = pickCaptionTrack([]captionTrack{manualDE})
	require.True(t, ok)
	assert.Equal(t, manualDE, track, "any track beats none")

	_, ok = pickCaptionTrack(nil)
	assert.False(t, ok)
}
