package domain

import (
	"slices"
	"strings"
)

// Schedule is the weekly slot a course occupies.
type Schedule struct {
	Day     Weekday `json:"day"     yaml:"day"`
	Periods []int   `json:"periods" yaml:"periods"`
}

// HasPeriod reports whether the schedule occupies period p.
func (s Schedule) HasPeriod(p int) bool {
	return slices.Contains(s.Periods, p)
}

// Course is one catalog record. ID is stable across fetches and is the
// only deduplication key.
type Course struct {
	ID         string   `json:"id"         yaml:"id"`
	Title      string   `json:"title"      yaml:"title"`
	Instructor string   `json:"instructor" yaml:"instructor"`
	Category   string   `json:"category"   yaml:"category"`
	Campus     []string `json:"campus"     yaml:"campus"`
	Grade      string   `json:"grade"      yaml:"grade"`
	Term       string   `json:"term"       yaml:"term"`
	Schedule   Schedule `json:"schedule"   yaml:"schedule"`
	Tokens     []string `json:"tokens"     yaml:"tokens,omitempty"`
}

// bracket pairs recognized as a trailing title marker.
var markerBrackets = map[rune]rune{
	']': '[',
	')': '(',
	'】': '【',
	'）': '（',
	'〕': '〔',
}

var onlineMarkers = []string{
	"online", "on-demand", "ondemand", "remote", "virtual",
	"オンライン", "オンデマンド", "遠隔",
}

// TrailingMarker returns the text inside a bracketed marker at the end of
// title, or "" when the title does not end with one.
func TrailingMarker(title string) string {
	runes := []rune(strings.TrimSpace(title))
	if len(runes) == 0 {
		return ""
	}
	open, ok := markerBrackets[runes[len(runes)-1]]
	if !ok {
		return ""
	}
	for i := len(runes) - 2; i >= 0; i-- {
		if runes[i] == open {
			return strings.TrimSpace(string(runes[i+1 : len(runes)-1]))
		}
	}
	return ""
}

// DeliveryModeOf infers the delivery mode from the title's trailing marker.
// No marker, or a marker that does not name an online format, means in person.
func DeliveryModeOf(title string) DeliveryMode {
	marker := strings.ToLower(TrailingMarker(title))
	if marker == "" {
		return DeliveryModeInPerson
	}
	for _, m := range onlineMarkers {
		if strings.Contains(marker, m) {
			return DeliveryModeOnline
		}
	}
	return DeliveryModeInPerson
}
