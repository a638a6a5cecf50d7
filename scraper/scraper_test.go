package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytscope/metadata"
)

func TestAttemptSuccess(t *testing.T) {
	data := metadata.New("abc12345678", MethodYtdlp)
	result := attempt(context.Background(), MethodYtdlp, func(context.Context) (*metadata.VideoMetadata, int, error) {
		return data, 7, nil
	})

	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Equal(t, MethodYtdlp, result.Method)
	assert.Same(t, data, result.Data)
	assert.Equal(t, 7, result.FieldsExtracted)
	assert.GreaterOrEqual(t, result.ExecutionTimeMs, 0.0)
}

func TestAttemptError(t *testing.T) {
	result := attempt(context.Background(), MethodAPI, func(context.Context) (*metadata.VideoMetadata, int, error) {
		return nil, 0, errors.New("video not found or is private")
	})

	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, MethodAPI, result.Method)
	assert.Nil(t, result.Data)
	assert.Equal(t, "video not found or is private", result.Error)
}

func TestAttemptPanicBecomesFailure(t *testing.T) {
	result := attempt(context.Background(), MethodYtdlp, func(context.Context) (*metadata.VideoMetadata, int, error) {
		var m map[string]int
		m["boom"] = 1
		return nil, 0, nil
	})

	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unexpected error")
}

func TestUnavailableScraper(t *testing.T) {
	s := Unavailable(MethodAPI, ErrAPIKeyMissing.Error())

	assert.Equal(t, MethodAPI, s.Method())
	result := s.Scrape(context.Background(), "https://youtu.be/dQw4w9WgXcQ", Options{})
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, ErrAPIKeyMissing.Error(), result.Error)
	assert.Zero(t, result.ExecutionTimeMs)
}
