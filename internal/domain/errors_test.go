package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_SingleField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("keyword", "too long (max 200)")

	if got := err.Error(); got != "validation: keyword: too long (max 200)" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrInvalidCriteria) {
		t.Fatal("errors.Is(err, ErrInvalidCriteria) = false")
	}
}

func TestValidationError_MultipleFields(t *testing.T) {
	t.Parallel()

	err := NewValidationErrors([]FieldError{
		{Field: "day_slots[0].day", Message: "invalid value"},
		{Field: "page_size", Message: "must not be negative"},
	})

	if got := err.Error(); got != "validation: 2 errors" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrInvalidCriteria) {
		t.Fatal("errors.Is(err, ErrInvalidCriteria) = false")
	}
	if len(err.Errors) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(err.Errors))
	}
}

func TestAdvisory_UnwrapsToPlanningDegraded(t *testing.T) {
	t.Parallel()

	var err error = Advisory{Kind: AdvisoryTokensCapped, Dropped: 3, Detail: "kept 10 of 13 tokens"}
	if !errors.Is(err, ErrPlanningDegraded) {
		t.Fatal("Advisory should unwrap to ErrPlanningDegraded")
	}

	wrapped := fmt.Errorf("plan: %w", err)
	var adv Advisory
	if !errors.As(wrapped, &adv) {
		t.Fatal("errors.As should find the Advisory")
	}
	if adv.Dropped != 3 {
		t.Errorf("Dropped = %d, want 3", adv.Dropped)
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrNotFound, ErrInvalidCriteria, ErrBackendUnavailable,
		ErrPlanningDegraded, ErrBusy, ErrSessionInvalidated,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel errors %d and %d should not match", i, j)
			}
		}
	}
}
