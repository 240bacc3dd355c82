package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCriteria    = errors.New("invalid criteria")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrPlanningDegraded   = errors.New("planning degraded")
	ErrBusy               = errors.New("load already in progress")
	ErrSessionInvalidated = errors.New("search session invalidated")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidCriteria }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// AdvisoryKind names a lossy simplification made while planning.
type AdvisoryKind string

const (
	AdvisoryCategoryTruncated AdvisoryKind = "category_truncated"
	AdvisoryTokensCapped      AdvisoryKind = "tokens_capped"
)

// Advisory is a non-fatal notice that results may be incomplete.
// It is returned alongside results, never instead of them.
type Advisory struct {
	Kind    AdvisoryKind
	Dropped int
	Detail  string
}

func (a Advisory) Error() string {
	return fmt.Sprintf("planning degraded: %s (dropped %d): %s", a.Kind, a.Dropped, a.Detail)
}

func (a Advisory) Unwrap() error { return ErrPlanningDegraded }
