package domain

import (
	"fmt"
	"strings"
)

// Field names a record attribute the backend can filter or sort on.
type Field string

const (
	FieldID         Field = "id"
	FieldTitle      Field = "title"
	FieldInstructor Field = "instructor"
	FieldCategory   Field = "category"
	FieldCampus     Field = "campus"
	FieldGrade      Field = "grade"
	FieldTerm       Field = "term"
	FieldDay        Field = "schedule.day"
	FieldPeriods    Field = "schedule.periods"
	FieldTokens     Field = "tokens"
)

// IsArray reports whether the field holds a list on the record.
func (f Field) IsArray() bool {
	return f == FieldCampus || f == FieldPeriods || f == FieldTokens
}

func (f Field) isKnown() bool {
	switch f {
	case FieldID, FieldTitle, FieldInstructor, FieldCategory, FieldCampus,
		FieldGrade, FieldTerm, FieldDay, FieldPeriods, FieldTokens:
		return true
	}
	return false
}

// Op is a filter operator the backend executes natively.
type Op string

const (
	OpEqual            Op = "=="
	OpIn               Op = "in"
	OpArrayContains    Op = "array-contains"
	OpArrayContainsAny Op = "array-contains-any"
	OpGreaterOrEqual   Op = ">="
	OpLess             Op = "<"
)

func (o Op) isRange() bool { return o == OpGreaterOrEqual || o == OpLess }

func (o Op) isArray() bool { return o == OpArrayContains || o == OpArrayContainsAny }

// FieldFilter is one (field, operator, value) triple.
// Value is a string for scalar ops, []string for set ops, and an int for
// array-contains on periods.
type FieldFilter struct {
	Field Field
	Op    Op
	Value any
}

func (f FieldFilter) String() string {
	return fmt.Sprintf("%s %s %v", f.Field, f.Op, f.Value)
}

// Capabilities describes the limits of the backend query contract.
type Capabilities struct {
	// MaxSetWidth caps the values of one "in" or "array-contains-any" filter.
	MaxSetWidth int
	// MaxInFilters caps "in" filters per query.
	MaxInFilters int
	// MaxArrayFilters caps "array-contains"/"array-contains-any" filters per query.
	MaxArrayFilters int
}

// DefaultCapabilities matches the narrow document-store contract.
func DefaultCapabilities() Capabilities {
	return Capabilities{MaxSetWidth: 10, MaxInFilters: 1, MaxArrayFilters: 1}
}

// QueryDescriptor is one backend-legal query.
type QueryDescriptor struct {
	// Name labels the descriptor in logs and cursors; it is not sent to the backend.
	Name    string
	Filters []FieldFilter
	OrderBy Field
	Limit   int
}

// Fingerprint identifies the query shape, independent of Name and Limit.
func (q QueryDescriptor) Fingerprint() string {
	parts := make([]string, 0, len(q.Filters)+1)
	for _, f := range q.Filters {
		parts = append(parts, f.String())
	}
	parts = append(parts, "order:"+string(q.OrderBy))
	return strings.Join(parts, ";")
}

// HasFilters reports whether the descriptor narrows the result set at all.
func (q QueryDescriptor) HasFilters() bool { return len(q.Filters) > 0 }

// Validate checks the descriptor against the backend contract.
func (q QueryDescriptor) Validate(caps Capabilities) error {
	if q.Limit <= 0 {
		return fmt.Errorf("query %q: limit must be positive", q.Name)
	}
	if !q.OrderBy.isKnown() {
		return fmt.Errorf("query %q: unknown order field %q", q.Name, q.OrderBy)
	}

	var inCount, arrayCount int
	var rangeField Field
	for _, f := range q.Filters {
		if !f.Field.isKnown() {
			return fmt.Errorf("query %q: unknown field %q", q.Name, f.Field)
		}
		switch f.Op {
		case OpEqual:
		case OpIn, OpArrayContainsAny:
			values, ok := f.Value.([]string)
			if !ok || len(values) == 0 {
				return fmt.Errorf("query %q: %s needs a non-empty []string", q.Name, f)
			}
			if len(values) > caps.MaxSetWidth {
				return fmt.Errorf("query %q: %s has %d values (max %d)", q.Name, f.Op, len(values), caps.MaxSetWidth)
			}
			if f.Op == OpIn {
				inCount++
			}
		case OpArrayContains:
		case OpGreaterOrEqual, OpLess:
			if rangeField != "" && rangeField != f.Field {
				return fmt.Errorf("query %q: range filters on %s and %s", q.Name, rangeField, f.Field)
			}
			rangeField = f.Field
		default:
			return fmt.Errorf("query %q: unknown operator %q", q.Name, f.Op)
		}
		if f.Op.isArray() {
			if !f.Field.IsArray() {
				return fmt.Errorf("query %q: %s on scalar field", q.Name, f)
			}
			arrayCount++
		}
	}

	if inCount > caps.MaxInFilters {
		return fmt.Errorf("query %q: %d in-filters (max %d)", q.Name, inCount, caps.MaxInFilters)
	}
	if arrayCount > caps.MaxArrayFilters {
		return fmt.Errorf("query %q: %d array filters (max %d)", q.Name, arrayCount, caps.MaxArrayFilters)
	}
	if rangeField != "" && rangeField != q.OrderBy {
		return fmt.Errorf("query %q: range field %s must be the order field (got %s)", q.Name, rangeField, q.OrderBy)
	}
	return nil
}

// Page is one batch of raw records from the backend.
type Page struct {
	Records []Course
	// Next resumes after the last record; nil when the backend is exhausted.
	Next *string
}
