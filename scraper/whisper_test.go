package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWhisperAPIScraperMissingKey(t *testing.T) {
	s, err := NewWhisperAPIScraper("", "yt-dlp", time.Minute)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrOpenAIKeyMissing)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestWhisperAPIScrapeBadURL(t *testing.T) {
	s, err := NewWhisperAPIScraper("sk-test", "yt-dlp", time.Minute)
	require.NoError(t, err)

	result := s.Scrape(context.Background(), "https://example.com/nothing", Options{})
	require.False(t, result.Success)
	assert.Equal(t, ErrNoVideoID.Error(), result.Error)
}

func TestLocalWhisperAvailableInCloudEnvironment(t *testing.T) {
	t.Setenv("VERCEL", "1")
	s := NewLocalWhisperScraper("yt-dlp", "base", time.Minute)

	assert.ErrorIs(t, s.Available(), ErrCloudEnvironment)
}

func TestLocalWhisperAvailableWithoutCLI(t *testing.T) {
	for _, name := range cloudEnvVars {
		t.Setenv(name, "")
	}
	s := NewLocalWhisperScraper("yt-dlp", "base", time.Minute)
	s.lookPath = func(string) (string, error) {
		return "", errors.New("not found")
	}

	assert.ErrorIs(t, s.Available(), ErrWhisperNotInstalled)
}

func TestLocalWhisperScrapeFailsWhenUnavailable(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "fn")
	s := NewLocalWhisperScraper("yt-dlp", "base", time.Minute)

	result := s.Scrape(context.Background(), "https://youtu.be/dQw4w9WgXcQ", Options{})
	require.False(t, result.Success)
	assert.Equal(t, MethodLocalWhisper, result.Method)
	assert.Equal(t, ErrCloudEnvironment.Error(), result.Error)
}

func TestLocalWhisperMethodTag(t *testing.T) {
	s := NewLocalWhisperScraper("", "", 0)
	assert.Equal(t, "ai-whisper", s.Method())
}
