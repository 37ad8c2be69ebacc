package application

import (
	"fmt"
	"regexp"
	"strings"
)

var summarySectionPatterns = map[string]*regexp.Regexp{
	"executive":  sectionPattern("EXECUTIVE_SUMMARY"),
	"decisions":  sectionPattern("KEY_DECISIONS"),
	"actions":    sectionPattern("ACTION_ITEMS_SUMMARY"),
	"discussion": sectionPattern("DISCUSSION_POINTS"),
}

func sectionPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`(?is)\[%s\](.*?)\[/%s\]`, name, name))
}

// ParseSummarySections extracts the four tagged sections from generated
// summary text. Sections the text does not carry come back empty; the raw
// text is never discarded, so nothing is lost when the tagging is off.
func ParseSummarySections(text string) Summary {
	return Summary{
		ExecutiveSummary: extractSection(text, summarySectionPatterns["executive"]),
		KeyDecisions:     extractSection(text, summarySectionPatterns["decisions"]),
		ActionItems:      extractSection(text, summarySectionPatterns["actions"]),
		DiscussionPoints: extractSection(text, summarySectionPatterns["discussion"]),
	}
}

func extractSection(text string, pattern *regexp.Regexp) string {
	match := pattern.FindStringSubmatch(text)
	if len(match) < 2 {
		return ""
	}
	return strings.TrimSpace(match[1])
}
