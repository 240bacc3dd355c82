package domain

import (
	"strings"
)

// NormalizeText prepares a label for comparison:
//   - trims leading/trailing whitespace (including the ideographic space)
//   - converts to lowercase
//   - compresses inner whitespace runs into one ASCII space
//
// Diacritics, hyphens, and brackets are preserved.
func NormalizeText(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(strings.Join(fields, " "))
}

// ContainsText reports whether needle occurs in haystack after both are
// normalized. An empty needle always matches.
func ContainsText(haystack, needle string) bool {
	return strings.Contains(NormalizeText(haystack), NormalizeText(needle))
}
