// Package textindex produces the 2-gram token sets used for keyword search.
// The same tokenizer runs at ingestion time (tokens stored on each course)
// and at query time.
package textindex

import (
	"sort"
	"strings"
	"unicode"

	"github.com/heartmarshall/course-catalog/internal/domain"
)

// GramSize is the n-gram length.
const GramSize = 2

// Normalize lowercases s and removes all whitespace.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Tokenize returns the sorted set of overlapping 2-rune substrings of the
// normalized input. A single-rune input yields itself; an empty one yields nil.
func Tokenize(s string) []string {
	runes := []rune(Normalize(s))
	switch len(runes) {
	case 0:
		return nil
	case 1:
		return []string{string(runes)}
	}

	set := make(map[string]struct{}, len(runes)-1)
	for i := 0; i+GramSize <= len(runes); i++ {
		set[string(runes[i:i+GramSize])] = struct{}{}
	}
	return sortedKeys(set)
}

// IndexCourse returns the token set stored on a course: the union of its
// title and instructor tokens.
func IndexCourse(c domain.Course) []string {
	set := make(map[string]struct{})
	for _, field := range []string{c.Title, c.Instructor} {
		for _, tok := range Tokenize(field) {
			set[tok] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// ContainsAll reports whether every token in want appears in have.
func ContainsAll(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(have))
	for _, t := range have {
		set[t] = struct{}{}
	}
	for _, t := range want {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
