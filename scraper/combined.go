package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ytscope/metadata"
)

// blockedHint replaces raw error noise when both transcript sources look
// blocked rather than genuinely empty.
const blockedHint = "YouTube is blocking automated requests from this server's network. " +
	"Transcript extraction typically works when the service runs on a residential connection; " +
	"retry from a local deployment."

// CombinedTranscript runs the primary transcript strategy and falls back
// to the secondary when it fails. When both fail, the result carries the
// method tag "transcript (combined)", the summed execution time, and
// either both error messages or, when the errors look like origin
// blocking, a hint about running outside the blocked network.
func CombinedTranscript(ctx context.Context, primary, fallback Scraper, url string, opts Options) *metadata.ScrapeResult {
	first := primary.Scrape(ctx, url, opts)
	if first.Success {
		return first
	}

	second := fallback.Scrape(ctx, url, opts)
	if second.Success {
		return second
	}

	elapsed := time.Duration((first.ExecutionTimeMs + second.ExecutionTimeMs) * float64(time.Millisecond))
	if looksBlocked(first.Error) || looksBlocked(second.Error) {
		return metadata.Failed(MethodCombined, blockedHint, elapsed)
	}
	msg := fmt.Sprintf("%s: %s; %s: %s", first.Method, first.Error, second.Method, second.Error)
	return metadata.Failed(MethodCombined, msg, elapsed)
}

func looksBlocked(errMsg string) bool {
	lower := strings.ToLower(errMsg)
	return strings.Contains(lower, "bot") || strings.Contains(lower, "blocking")
}
