package search

import "github.com/heartmarshall/course-catalog/internal/domain"

// LoadResult is the outcome of one LoadMore call.
type LoadResult struct {
	// Records are the matches new to this session, at most n.
	Records []domain.Course
	// Exhausted is terminal: no later call will return records.
	Exhausted bool
	// Truncated is set when a full scan hit its page cap.
	Truncated bool
	// Advisories report lossy planning; results may be incomplete.
	Advisories []domain.Advisory
	// Failures hold per-descriptor backend errors of this call. Failed
	// descriptors keep their cursor and are retried by the next call.
	Failures []error
}
