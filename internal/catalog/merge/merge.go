// Package merge combines pages from several descriptors into one
// duplicate-free batch.
package merge

import "github.com/heartmarshall/course-catalog/internal/domain"

// Set holds record ids already seen.
type Set map[string]struct{}

// NewSet returns an empty Set.
func NewSet() Set { return make(Set) }

// Has reports whether id was seen.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add records id and reports whether it was new.
func (s Set) Add(id string) bool {
	if s.Has(id) {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Merge concatenates pages in input order and keeps the first occurrence of
// each id.
func Merge(pages []domain.Page) []domain.Course {
	return MergeInto(NewSet(), pages)
}

// MergeInto is Merge against ids already in seen; seen is updated with
// every id returned.
func MergeInto(seen Set, pages []domain.Page) []domain.Course {
	var out []domain.Course
	for _, p := range pages {
		for _, r := range p.Records {
			if seen.Add(r.ID) {
				out = append(out, r)
			}
		}
	}
	return out
}
