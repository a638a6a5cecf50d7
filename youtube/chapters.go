package youtube

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"ytscope/metadata"
)

// chapterLinePattern matches a line starting with an optional-hours
// timestamp ([H:]M:SS) followed by an optional dash separator and a title.
var chapterLinePattern = regexp.MustCompile(`^\s*(?:(\d{1,2}):)?(\d{1,2}):(\d{2})\s*[-–—]?\s*(.+)$`)

// ParseChaptersFromDescription scans description text for chapter list
// markers, one per line. Candidate lines whose title is empty or a single
// character are treated as noise (bare timestamps) and skipped. Each
// chapter's end time is back-filled from the next chapter's start time;
// the final chapter's end time is left unset.
func ParseChaptersFromDescription(text string) []metadata.Chapter {
	if text == "" {
		return nil
	}

	var chapters []metadata.Chapter
	for _, line := range strings.Split(text, "\n") {
		m := chapterLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		title := strings.TrimSpace(m[4])
		if utf8.RuneCountInString(title) <= 1 {
			continue
		}

		start := atoiDefault(m[1])*3600 + atoiDefault(m[2])*60 + atoiDefault(m[3])
		chapters = append(chapters, metadata.Chapter{
			Title:     title,
			StartTime: float64(start),
		})
	}

	metadata.BackfillChapterEnds(chapters)
	return chapters
}
