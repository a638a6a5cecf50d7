package scraper

import "ytscope/metadata"

// comparisonCategories are the field categories the comparator scores
// across methods.
var comparisonCategories = []string{
	"title",
	"description",
	"view_count",
	"like_count",
	"comment_count",
	"transcript",
	"chapters",
	"tags",
	"thumbnails",
	"channel_subscribers",
	"technical_details",
	"comments",
}

// BuildComparison bundles every envelope produced for one URL with the
// derived summary.
func BuildComparison(videoURL string, results []*metadata.ScrapeResult) metadata.ComparisonResult {
	return metadata.ComparisonResult{
		VideoURL: videoURL,
		Results:  results,
		Summary:  BuildSummary(results),
	}
}

// BuildSummary aggregates the envelopes into a cross-method comparison.
// It is pure aggregation: it performs no I/O and never re-runs a method.
// Only successful envelopes contribute to the field comparison; failed
// ones are listed with their error message.
func BuildSummary(results []*metadata.ScrapeResult) metadata.ComparisonSummary {
	summary := metadata.ComparisonSummary{
		MethodsSucceeded: []string{},
		MethodsFailed:    []metadata.MethodError{},
		FieldComparison:  make(map[string]map[string]bool, len(comparisonCategories)),
		BestFor:          make(map[string]metadata.BestMethod),
	}
	for _, cat := range comparisonCategories {
		summary.FieldComparison[cat] = map[string]bool{}
	}

	bestTranscript := 0
	bestTags := 0

	for _, r := range results {
		if r == nil {
			continue
		}
		if !r.Success {
			summary.MethodsFailed = append(summary.MethodsFailed, metadata.MethodError{
				Method: r.Method,
				Error:  r.Error,
			})
			continue
		}
		summary.MethodsSucceeded = append(summary.MethodsSucceeded, r.Method)

		data := r.Data
		if data == nil {
			continue
		}
		for cat, present := range fieldPresence(data) {
			summary.FieldComparison[cat][r.Method] = present
		}

		// Ties keep the earlier method; only a strictly better count
		// takes the recommendation.
		if n := len(data.Transcript); n > bestTranscript {
			bestTranscript = n
			summary.BestFor["transcript"] = metadata.BestMethod{Method: r.Method, Count: n}
		}
		if data.Classification != nil {
			if n := len(data.Classification.Tags); n > bestTags {
				bestTags = n
				summary.BestFor["tags"] = metadata.BestMethod{Method: r.Method, Count: n}
			}
		}
		// Stream-level detail: the last method that reports a frame rate
		// wins, since later methods refine earlier container-level data.
		if data.Technical != nil && data.Technical.FPS != nil {
			summary.BestFor["technical_details"] = metadata.BestMethod{Method: r.Method}
		}
	}

	for _, methods := range summary.FieldComparison {
		for _, present := range methods {
			if present {
				summary.TotalUniqueFields++
				break
			}
		}
	}
	return summary
}

func fieldPresence(data *metadata.VideoMetadata) map[string]bool {
	presence := map[string]bool{
		"title":       data.Title != "",
		"description": data.Description != "",
		"transcript":  len(data.Transcript) > 0,
		"chapters":    len(data.Chapters) > 0,
		"thumbnails":  len(data.Thumbnails) > 0,
		"comments":    len(data.Comments) > 0,
	}
	presence["view_count"] = data.Engagement != nil && data.Engagement.ViewCount != nil
	presence["like_count"] = data.Engagement != nil && data.Engagement.LikeCount != nil
	presence["comment_count"] = data.Engagement != nil && data.Engagement.CommentCount != nil
	presence["tags"] = data.Classification != nil && len(data.Classification.Tags) > 0
	presence["channel_subscribers"] = data.Channel != nil && data.Channel.SubscriberCount != nil
	presence["technical_details"] = data.Technical != nil &&
		(data.Technical.FPS != nil || data.Technical.VideoCodec != "" || data.Technical.Bitrate != nil)
	return presence
}
