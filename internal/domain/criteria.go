package domain

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	// MaxPeriod is the highest teaching period of a day.
	MaxPeriod = 12

	maxKeywordLen = 200
)

// DaySlot is one (day, period) pair the caller is interested in.
type DaySlot struct {
	Day    Weekday
	Period int
}

// Criteria describes one search request. Treat it as a value: the search
// service copies it on submit and never shares its slices.
type Criteria struct {
	Keyword        string
	CategoryCoarse string
	// CategoryFine overrides the expansion of CategoryCoarse when set.
	CategoryFine string
	Campus       string
	DeliveryMode DeliveryMode
	Grade        string
	// DaySlots are alternatives: a course matches if it meets any of them.
	// Empty means unconstrained.
	DaySlots []DaySlot
	Term     string
	PageSize int
	// Cursor is an opaque resume token produced by a previous session.
	Cursor string
}

// Validate checks all fields and collects all errors.
func (c Criteria) Validate() error {
	var errs []FieldError

	if utf8.RuneCountInString(c.Keyword) > maxKeywordLen {
		errs = append(errs, FieldError{Field: "keyword", Message: fmt.Sprintf("too long (max %d)", maxKeywordLen)})
	}
	if !c.DeliveryMode.IsValid() {
		errs = append(errs, FieldError{Field: "delivery_mode", Message: "invalid value"})
	}
	for i, s := range c.DaySlots {
		if !s.Day.IsValid() {
			errs = append(errs, FieldError{Field: fmt.Sprintf("day_slots[%d].day", i), Message: "invalid value"})
		}
		if s.Period < 1 || s.Period > MaxPeriod {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("day_slots[%d].period", i),
				Message: fmt.Sprintf("must be between 1 and %d", MaxPeriod),
			})
		}
	}
	if c.PageSize < 0 {
		errs = append(errs, FieldError{Field: "page_size", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// Normalized returns a copy with trimmed text fields and de-duplicated day
// slots sorted by (day, period). The receiver is not modified.
func (c Criteria) Normalized() Criteria {
	out := c
	out.Keyword = strings.TrimSpace(c.Keyword)
	out.CategoryCoarse = strings.TrimSpace(c.CategoryCoarse)
	out.CategoryFine = strings.TrimSpace(c.CategoryFine)
	out.Campus = strings.TrimSpace(c.Campus)
	out.Grade = strings.TrimSpace(c.Grade)
	out.Term = strings.TrimSpace(c.Term)
	out.Cursor = strings.TrimSpace(c.Cursor)

	out.DaySlots = nil
	if len(c.DaySlots) > 0 {
		slots := slices.Clone(c.DaySlots)
		slices.SortFunc(slots, func(a, b DaySlot) int {
			if d := a.Day.Index() - b.Day.Index(); d != 0 {
				return d
			}
			return a.Period - b.Period
		})
		out.DaySlots = slices.Compact(slots)
	}
	return out
}

// DistinctDays returns the days named by DaySlots in calendar order.
func (c Criteria) DistinctDays() []Weekday {
	var days []Weekday
	for _, w := range Weekdays {
		for _, s := range c.DaySlots {
			if s.Day == w {
				days = append(days, w)
				break
			}
		}
	}
	return days
}

// IsEmpty reports whether the criteria constrain nothing.
func (c Criteria) IsEmpty() bool {
	return c.Keyword == "" && c.CategoryCoarse == "" && c.CategoryFine == "" &&
		c.Campus == "" && c.DeliveryMode == DeliveryModeAny && c.Grade == "" &&
		len(c.DaySlots) == 0 && c.Term == ""
}
