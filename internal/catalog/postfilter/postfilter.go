// Package postfilter re-checks fetched records against the full criteria.
// Backend queries only approximate the criteria; this is where the exact
// semantics live.
package postfilter

import (
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/course-catalog/internal/catalog/textindex"
	"github.com/heartmarshall/course-catalog/internal/domain"
)

// Taxonomy resolves category expansions and campus aliases.
type Taxonomy interface {
	Expand(coarse string) []string
	CanonicalCampus(label string) string
}

// Filter is stateless and safe for concurrent use.
type Filter struct {
	tax Taxonomy
}

// New creates a Filter.
func New(tax Taxonomy) *Filter {
	return &Filter{tax: tax}
}

// Apply returns the records that match c, in their original order.
func (f *Filter) Apply(records []domain.Course, c domain.Criteria) []domain.Course {
	var out []domain.Course
	for _, r := range records {
		if f.Matches(r, c) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether r satisfies every criterion in c.
func (f *Filter) Matches(r domain.Course, c domain.Criteria) bool {
	return matchKeyword(r, c.Keyword) &&
		f.matchCategory(r, c) &&
		f.matchCampus(r, c.Campus) &&
		matchDelivery(r, c.DeliveryMode) &&
		matchGrade(r, c.Grade) &&
		matchSlots(r, c.DaySlots) &&
		matchTerm(r, c.Term)
}

func matchKeyword(r domain.Course, keyword string) bool {
	want := textindex.Normalize(keyword)
	if want == "" {
		return true
	}
	if strings.Contains(textindex.Normalize(r.Title), want) ||
		strings.Contains(textindex.Normalize(r.Instructor), want) {
		return true
	}
	if utf8.RuneCountInString(want) < textindex.GramSize || len(r.Tokens) == 0 {
		return false
	}
	return textindex.ContainsAll(r.Tokens, textindex.Tokenize(want))
}

func (f *Filter) matchCategory(r domain.Course, c domain.Criteria) bool {
	got := domain.NormalizeText(r.Category)
	if c.CategoryFine != "" {
		return got == domain.NormalizeText(c.CategoryFine)
	}
	if c.CategoryCoarse == "" {
		return true
	}
	for _, label := range f.tax.Expand(c.CategoryCoarse) {
		if got == domain.NormalizeText(label) {
			return true
		}
	}
	return false
}

func (f *Filter) matchCampus(r domain.Course, campus string) bool {
	if strings.TrimSpace(campus) == "" {
		return true
	}
	want := f.tax.CanonicalCampus(campus)
	for _, label := range r.Campus {
		if f.tax.CanonicalCampus(label) == want {
			return true
		}
	}
	return false
}

func matchDelivery(r domain.Course, mode domain.DeliveryMode) bool {
	return mode == domain.DeliveryModeAny || domain.DeliveryModeOf(r.Title) == mode
}

func matchGrade(r domain.Course, grade string) bool {
	want := domain.NormalizeText(grade)
	if want == "" {
		return true
	}
	return strings.Contains(domain.NormalizeText(r.Grade), want)
}

// matchSlots is true when the record meets any requested slot.
func matchSlots(r domain.Course, slots []domain.DaySlot) bool {
	if len(slots) == 0 {
		return true
	}
	for _, s := range slots {
		if r.Schedule.Day == s.Day && r.Schedule.HasPeriod(s.Period) {
			return true
		}
	}
	return false
}

func matchTerm(r domain.Course, term string) bool {
	if strings.TrimSpace(term) == "" {
		return true
	}
	if want := domain.CanonicalTerm(term); want != domain.TermUnknown {
		return domain.CanonicalTerm(r.Term) == want
	}
	return domain.NormalizeText(r.Term) == domain.NormalizeText(term)
}
