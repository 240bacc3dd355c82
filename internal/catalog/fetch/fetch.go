// Package fetch runs a single query descriptor against the backend.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/heartmarshall/course-catalog/internal/domain"
)

// Backend executes one backend-legal query. cursor is nil for the first
// page; otherwise it is the Next value of the previous page.
type Backend interface {
	Fetch(ctx context.Context, q domain.QueryDescriptor, cursor *string) (domain.Page, error)
}

// Executor is stateless apart from its configuration.
type Executor struct {
	backend Backend
	caps    domain.Capabilities
	timeout time.Duration
}

// NewExecutor creates an Executor. A zero timeout disables the per-call
// deadline.
func NewExecutor(backend Backend, caps domain.Capabilities, timeout time.Duration) *Executor {
	return &Executor{backend: backend, caps: caps, timeout: timeout}
}

// Execute fetches one page. Backend failures are wrapped with
// domain.ErrBackendUnavailable; cancellation of ctx itself is returned
// unchanged so callers can tell it apart.
func (e *Executor) Execute(ctx context.Context, q domain.QueryDescriptor, cursor *string) (domain.Page, error) {
	if err := q.Validate(e.caps); err != nil {
		return domain.Page{}, fmt.Errorf("fetch %s: %w", q.Name, err)
	}

	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	page, err := e.backend.Fetch(callCtx, q, cursor)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Page{}, ctxErr
		}
		if errors.Is(err, domain.ErrBackendUnavailable) {
			return domain.Page{}, fmt.Errorf("fetch %s: %w", q.Name, err)
		}
		return domain.Page{}, fmt.Errorf("fetch %s: %w: %w", q.Name, domain.ErrBackendUnavailable, err)
	}
	return page, nil
}
