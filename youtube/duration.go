package youtube

import (
	"fmt"
	"regexp"
	"strconv"
)

var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// ParseISODuration parses an ISO-8601 style duration of the form PT#H#M#S
// into total seconds. Each component is optional and defaults to zero.
// It returns false when the string does not match the pattern at all,
// including the empty string.
func ParseISODuration(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	m := isoDurationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	hours := atoiDefault(m[1])
	minutes := atoiDefault(m[2])
	seconds := atoiDefault(m[3])
	return hours*3600 + minutes*60 + seconds, true
}

// FormatDuration renders seconds as H:MM:SS when there is an hour
// component, and M:SS otherwise.
func FormatDuration(seconds int64) string {
	hours := seconds / 3600
	remainder := seconds % 3600
	minutes := remainder / 60
	secs := remainder % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

func atoiDefault(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
