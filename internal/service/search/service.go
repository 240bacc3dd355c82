package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/heartmarshall/course-catalog/internal/catalog/planner"
	"github.com/heartmarshall/course-catalog/internal/config"
	"github.com/heartmarshall/course-catalog/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type fetcher interface {
	Execute(ctx context.Context, q domain.QueryDescriptor, cursor *string) (domain.Page, error)
}

type queryPlanner interface {
	Plan(c domain.Criteria) (planner.Plan, error)
}

type postFilter interface {
	Apply(records []domain.Course, c domain.Criteria) []domain.Course
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service runs search sessions for one caller. At most one session is
// current; submitting new criteria invalidates the previous one.
type Service struct {
	log     *slog.Logger
	fetcher fetcher
	planner queryPlanner
	filter  postFilter
	cfg     config.SearchConfig

	mu      sync.Mutex
	current *Session
}

// NewService creates a new search Service.
func NewService(
	logger *slog.Logger,
	fetcher fetcher,
	qp queryPlanner,
	filter postFilter,
	cfg config.SearchConfig,
) *Service {
	return &Service{
		log:     logger.With("service", "search"),
		fetcher: fetcher,
		planner: qp,
		filter:  filter,
		cfg:     cfg,
	}
}

// Submit validates c, plans it and makes the resulting session current.
// The previous session is invalidated and its in-flight load cancelled.
func (s *Service) Submit(ctx context.Context, c domain.Criteria) (*Session, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c = c.Normalized()

	plan, err := s.planner.Plan(c)
	if err != nil {
		return nil, fmt.Errorf("plan criteria: %w", err)
	}

	session := newSession(c, plan)
	if c.Cursor != "" {
		if err := session.restore(c.Cursor); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	prev := s.current
	s.current = session
	s.mu.Unlock()

	if prev != nil {
		prev.invalidate()
	}

	s.log.InfoContext(ctx, "session submitted",
		slog.String("session_id", session.ID().String()),
		slog.Int("descriptors", len(plan.Descriptors)),
		slog.Bool("full_scan", plan.FullScan),
		slog.Int("advisories", len(plan.Advisories)),
		slog.Bool("resumed", c.Cursor != ""),
	)
	for _, adv := range plan.Advisories {
		s.log.WarnContext(ctx, "planning degraded",
			slog.String("session_id", session.ID().String()),
			slog.String("kind", string(adv.Kind)),
			slog.String("detail", adv.Detail),
		)
	}
	return session, nil
}

// Current returns the current session, or nil before the first Submit.
func (s *Service) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Cancel aborts the in-flight load of session, if any. The session stays
// usable and unchanged.
func (s *Service) Cancel(session *Session) {
	if session != nil {
		session.cancelLoad()
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// clampLimit ensures a limit is within [min, max], defaulting from 0 to defaultVal.
func clampLimit(limit, min, max, defaultVal int) int {
	if limit <= 0 {
		return defaultVal
	}
	if limit < min {
		return min
	}
	if limit > max {
		return max
	}
	return limit
}
