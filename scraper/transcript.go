package scraper

import (
	"encoding/json"
	"fmt"
	"strings"

	"ytscope/metadata"
)

// Preferred English subtitle tracks, in order. "en-orig" is YouTube's tag
// for the original-language track when the video is natively English.
var preferredLangs = []string{"en", "en-US", "en-GB", "en-orig"}

// timedtextDoc is the json3 timedtext document returned by YouTube's
// subtitle endpoints.
type timedtextDoc struct {
	Events []timedtextEvent `json:"events"`
}

type timedtextEvent struct {
	TStartMs    int64          `json:"tStartMs"`
	DDurationMs int64          `json:"dDurationMs"`
	Segs        []timedtextSeg `json:"segs"`
}

type timedtextSeg struct {
	UTF8 string `json:"utf8"`
}

// decodeTimedtext parses a json3 timedtext payload into transcript
// segments. Events with no renderable text (styling markers, newlines)
// are dropped. Timings are converted from milliseconds to seconds.
func decodeTimedtext(raw []byte) ([]metadata.TranscriptSegment, error) {
	var doc timedtextDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing timedtext: %w", err)
	}

	segments := make([]metadata.TranscriptSegment, 0, len(doc.Events))
	for _, ev := range doc.Events {
		var sb strings.Builder
		for _, seg := range ev.Segs {
			sb.WriteString(seg.UTF8)
		}
		text := strings.TrimSpace(sb.String())
		if text == "" {
			continue
		}
		segments = append(segments, metadata.TranscriptSegment{
			Text:     text,
			Start:    float64(ev.TStartMs) / 1000.0,
			Duration: float64(ev.DDurationMs) / 1000.0,
		})
	}
	return segments, nil
}

// TranscriptText renders transcript segments as plain text. With
// timestamps enabled each segment is prefixed with its start offset as
// [MM:SS] on its own line; otherwise segments are joined with spaces.
func TranscriptText(segments []metadata.TranscriptSegment, includeTimestamps bool) string {
	if len(segments) == 0 {
		return ""
	}
	if !includeTimestamps {
		parts := make([]string, 0, len(segments))
		for _, seg := range segments {
			parts = append(parts, seg.Text)
		}
		return strings.Join(parts, " ")
	}
	var sb strings.Builder
	for i, seg := range segments {
		if i > 0 {
			sb.WriteByte('\n')
		}
		total := int(seg.Start)
		fmt.Fprintf(&sb, "[%02d:%02d] %s", total/60, total%60, seg.Text)
	}
	return sb.String()
}

// transcriptWordCount counts whitespace-separated words across segments.
func transcriptWordCount(segments []metadata.TranscriptSegment) int {
	n := 0
	for _, seg := range segments {
		n += len(strings.Fields(seg.Text))
	}
	return n
}
