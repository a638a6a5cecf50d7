package metadata

import (
	"math"
	"time"
)

// ScrapeResult wraps exactly one extraction attempt. Success implies Data
// is non-nil and Error is empty; failure implies the opposite.
type ScrapeResult struct {
	Success         bool           `json:"success"`
	Method          string         `json:"method"`
	Data            *VideoMetadata `json:"data,omitempty"`
	Error           string         `json:"error,omitempty"`
	ExecutionTimeMs float64        `json:"execution_time_ms"`
	FieldsExtracted int            `json:"fields_extracted"`
}

// Succeeded builds a successful envelope for the given method.
func Succeeded(method string, data *VideoMetadata, elapsed time.Duration, fields int) *ScrapeResult {
	return &ScrapeResult{
		Success:         true,
		Method:          method,
		Data:            data,
		ExecutionTimeMs: roundMillis(elapsed),
		FieldsExtracted: fields,
	}
}

// Failed builds a failed envelope for the given method.
func Failed(method, errMsg string, elapsed time.Duration) *ScrapeResult {
	return &ScrapeResult{
		Success:         false,
		Method:          method,
		Error:           errMsg,
		ExecutionTimeMs: roundMillis(elapsed),
	}
}

// roundMillis converts a duration to milliseconds rounded to two decimals.
func roundMillis(d time.Duration) float64 {
	ms := float64(d.Microseconds()) / 1000.0
	return math.Round(ms*100) / 100
}

// MethodError pairs a failed method with its error message.
type MethodError struct {
	Method string `json:"method"`
	Error  string `json:"error"`
}

// BestMethod names the method recommended for a field category. Count is
// set for categories decided by comparing item counts.
type BestMethod struct {
	Method string `json:"method"`
	Count  int    `json:"count,omitempty"`
}

// ComparisonSummary is the cross-method aggregation produced by the
// comparator. FieldComparison maps field category -> method -> whether the
// method populated that category; only successful methods appear.
type ComparisonSummary struct {
	MethodsSucceeded  []string                   `json:"methods_succeeded"`
	MethodsFailed     []MethodError              `json:"methods_failed"`
	FieldComparison   map[string]map[string]bool `json:"field_comparison"`
	BestFor           map[string]BestMethod      `json:"best_for"`
	TotalUniqueFields int                        `json:"total_unique_fields"`
}

// ComparisonResult holds every envelope produced for one compared URL
// plus the derived summary.
type ComparisonResult struct {
	VideoURL string            `json:"video_url"`
	Results  []*ScrapeResult   `json:"results"`
	Summary  ComparisonSummary `json:"comparison_summary"`
}

// CountGeneralFields scores the completeness of a record produced by the
// general-purpose extractor. The score is a heuristic count of populated
// data points, not strict schema coverage.
func CountGeneralFields(m *VideoMetadata) int {
	count := baseFieldCount(m)
	if m.Technical != nil {
		count += 5
	}
	if m.Classification != nil {
		count += len(m.Classification.Tags) + len(m.Classification.Hashtags) + 2
	}
	count += len(m.Thumbnails) + len(m.Chapters) + len(m.Transcript) + len(m.Comments)
	return count
}

// CountAPIFields scores a record produced by the Data API extractor, which
// cannot report transcripts or stream-level technical details.
func CountAPIFields(m *VideoMetadata) int {
	count := baseFieldCount(m)
	if m.Technical != nil {
		count += 3
	}
	if m.Classification != nil {
		count += len(m.Classification.Tags) + len(m.Classification.Hashtags) + 3
	}
	count += len(m.Thumbnails) + len(m.Chapters) + len(m.Comments)
	return count
}

// CountTranscriptFields scores a transcript-only record.
func CountTranscriptFields(m *VideoMetadata) int {
	return len(m.Transcript) + len(m.AvailableLanguages) + 2
}

func baseFieldCount(m *VideoMetadata) int {
	count := 0
	if m.Title != "" {
		count++
	}
	if m.Description != "" {
		count++
	}
	if m.UploadDate != "" {
		count++
	}
	if m.Channel != nil {
		count += 4
	}
	if m.Engagement != nil {
		if m.Engagement.ViewCount != nil {
			count++
		}
		if m.Engagement.LikeCount != nil {
			count++
		}
		if m.Engagement.CommentCount != nil {
			count++
		}
	}
	return count
}
