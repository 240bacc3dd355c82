// Package memstore is an in-memory catalog backend. It enforces the same
// narrow query contract as the document store, which makes it the backend
// of choice for tests and for searching a seed file without a database.
package memstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/heartmarshall/course-catalog/internal/domain"
)

// Store is safe for concurrent use.
type Store struct {
	caps domain.Capabilities

	mu      sync.RWMutex
	courses map[string]domain.Course

	fetches atomic.Int64
}

// New creates an empty Store enforcing caps.
func New(caps domain.Capabilities) *Store {
	return &Store{caps: caps, courses: make(map[string]domain.Course)}
}

// Upsert stores courses, replacing any with the same id.
func (s *Store) Upsert(ctx context.Context, courses []domain.Course) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range courses {
		if c.ID == "" {
			return 0, domain.NewValidationError("id", "required")
		}
		s.courses[c.ID] = c
	}
	return len(courses), nil
}

// Len returns the number of stored courses.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.courses)
}

// Fetches returns how many Fetch calls were served.
func (s *Store) Fetches() int64 { return s.fetches.Load() }

// Fetch runs q and returns at most q.Limit records after cursor, ordered by
// (q.OrderBy, id). Next is set only when the page is full.
func (s *Store) Fetch(ctx context.Context, q domain.QueryDescriptor, cursor *string) (domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return domain.Page{}, err
	}
	if err := q.Validate(s.caps); err != nil {
		return domain.Page{}, fmt.Errorf("memstore: %w", err)
	}
	s.fetches.Add(1)

	var afterValue, afterID string
	if cursor != nil {
		var err error
		afterValue, afterID, err = domain.DecodeCursor(*cursor)
		if err != nil {
			return domain.Page{}, fmt.Errorf("memstore: %w", err)
		}
	}

	s.mu.RLock()
	matched := make([]domain.Course, 0)
	for _, c := range s.courses {
		if matchesAll(c, q.Filters) {
			matched = append(matched, c)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b domain.Course) int {
		return cmp.Or(
			cmp.Compare(a.SortValue(q.OrderBy), b.SortValue(q.OrderBy)),
			cmp.Compare(a.ID, b.ID),
		)
	})

	start := 0
	if cursor != nil {
		start, _ = slices.BinarySearchFunc(matched, afterValue, func(c domain.Course, v string) int {
			if d := cmp.Compare(c.SortValue(q.OrderBy), v); d != 0 {
				return d
			}
			if c.ID <= afterID {
				return -1
			}
			return 1
		})
	}

	end := min(start+q.Limit, len(matched))
	page := domain.Page{Records: slices.Clone(matched[start:end])}
	if end-start == q.Limit && end > start {
		last := matched[end-1]
		next := domain.EncodeCursor(last.SortValue(q.OrderBy), last.ID)
		page.Next = &next
	}
	return page, nil
}

func matchesAll(c domain.Course, filters []domain.FieldFilter) bool {
	for _, f := range filters {
		if !matches(c, f) {
			return false
		}
	}
	return true
}

func matches(c domain.Course, f domain.FieldFilter) bool {
	switch f.Op {
	case domain.OpEqual:
		v, ok := f.Value.(string)
		return ok && c.SortValue(f.Field) == v
	case domain.OpIn:
		values, _ := f.Value.([]string)
		return slices.Contains(values, c.SortValue(f.Field))
	case domain.OpGreaterOrEqual:
		v, _ := f.Value.(string)
		return c.SortValue(f.Field) >= v
	case domain.OpLess:
		v, _ := f.Value.(string)
		return c.SortValue(f.Field) < v
	case domain.OpArrayContains:
		if f.Field == domain.FieldPeriods {
			p, ok := f.Value.(int)
			return ok && c.Schedule.HasPeriod(p)
		}
		v, _ := f.Value.(string)
		return slices.Contains(arrayField(c, f.Field), v)
	case domain.OpArrayContainsAny:
		values, _ := f.Value.([]string)
		for _, have := range arrayField(c, f.Field) {
			if slices.Contains(values, have) {
				return true
			}
		}
		return false
	}
	return false
}

func arrayField(c domain.Course, f domain.Field) []string {
	switch f {
	case domain.FieldCampus:
		return c.Campus
	case domain.FieldTokens:
		return c.Tokens
	}
	return nil
}
