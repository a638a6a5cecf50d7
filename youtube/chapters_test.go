package youtube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChaptersFromDescription(t *testing.T) {
	description := `Check out the breakdown below.

0:00 Intro
0:30 - The Setup
1:30:00 — Deep Dive
9:59
Thanks for watching!`

	chapters := ParseChaptersFromDescription(description)
	require.Len(t, chapters, 3)

	assert.Equal(t, "Intro", chapters[0].Title)
	assert.Equal(t, 0.0, chapters[0].StartTime)
	require.NotNil(t, chapters[0].EndTime)
	assert.Equal(t, 30.0, *chapters[0].EndTime)

	assert.Equal(t, "The Setup", chapters[1].Title)
	assert.Equal(t, 30.0, chapters[1].StartTime)
	require.NotNil(t, chapters[1].EndTime)
	assert.Equal(t, 5400.0, *chapters[1].EndTime)

	assert.Equal(t, "Deep Dive", chapters[2].Title)
	assert.Equal(t, 5400.0, chapters[2].StartTime)
	assert.Nil(t, chapters[2].EndTime, "final chapter has no end time")
}

func TestParseChaptersFromDescriptionNoChapters(t *testing.T) {
	assert.Empty(t, ParseChaptersFromDescription("just a plain description\nwith no timestamps"))
	assert.Empty(t, ParseChaptersFromDescription(""))
}
