package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/course-catalog/internal/catalog/merge"
	"github.com/heartmarshall/course-catalog/internal/domain"
	"github.com/heartmarshall/course-catalog/pkg/ctxutil"
)

// LoadMore returns up to n matches not returned before, fetching as many
// backend pages as needed. It returns domain.ErrBusy while another load of
// the same session runs and domain.ErrSessionInvalidated once a newer
// session was submitted. A cancelled call leaves the session unchanged.
func (s *Service) LoadMore(ctx context.Context, session *Session, n int) (*LoadResult, error) {
	n = clampLimit(n, 1, s.cfg.MaxLoadSize, s.cfg.DefaultPageSize)

	session.mu.Lock()
	switch {
	case session.invalidated:
		session.mu.Unlock()
		return nil, domain.ErrSessionInvalidated
	case session.state == StateFetching:
		session.mu.Unlock()
		return nil, domain.ErrBusy
	case session.state == StateExhausted:
		res := &LoadResult{
			Exhausted:  true,
			Truncated:  session.progress.truncated,
			Advisories: slices.Clone(session.plan.Advisories),
		}
		session.mu.Unlock()
		return res, nil
	}
	loadCtx, cancel := context.WithCancel(ctx)
	session.state = StateFetching
	session.cancel = cancel
	staged := session.progress.clone()
	session.mu.Unlock()

	loadCtx, requestID := ctxutil.EnsureRequestID(ctxutil.WithSessionID(loadCtx, session.id))
	log := s.log.With(
		slog.String("session_id", session.id.String()),
		slog.String("request_id", requestID),
	)

	res, err := s.load(loadCtx, log, session, &staged, n)

	session.mu.Lock()
	defer session.mu.Unlock()
	cancel()
	session.cancel = nil

	if session.invalidated {
		session.state = StateIdle
		log.DebugContext(ctx, "discarding load of invalidated session")
		return nil, domain.ErrSessionInvalidated
	}
	if err != nil {
		session.state = StateIdle
		if ctxErr := loadCtx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			log.InfoContext(ctx, "load cancelled")
		} else {
			log.WarnContext(ctx, "load failed", slog.String("error", err.Error()))
		}
		return nil, err
	}

	session.progress = staged
	session.results = append(session.results, res.Records...)
	if res.Exhausted {
		session.state = StateExhausted
	} else {
		session.state = StateIdle
	}

	log.DebugContext(ctx, "load completed",
		slog.Int("records", len(res.Records)),
		slog.Int("buffered", len(staged.buffer)),
		slog.Int("pages_fetched", staged.pagesFetched),
		slog.Int("failures", len(res.Failures)),
		slog.Bool("exhausted", res.Exhausted),
		slog.Bool("truncated", res.Truncated),
	)
	return res, nil
}

// load runs fetch rounds against p until n matches are collected or no
// further round may run. It never touches the session's mutable state.
func (s *Service) load(ctx context.Context, log *slog.Logger, session *Session, p *progress, n int) (*LoadResult, error) {
	res := &LoadResult{Advisories: slices.Clone(session.plan.Advisories)}

	take := min(n, len(p.buffer))
	res.Records = append(res.Records, p.buffer[:take]...)
	p.buffer = p.buffer[take:]

	fetched := false
	for round := 0; len(res.Records) < n && !p.streamsDone() && round < s.cfg.MaxRoundsPerLoad; round++ {
		failures, ok, err := s.round(ctx, session, p, n-len(res.Records), &res.Records)
		if err != nil {
			return nil, err
		}
		res.Failures = append(res.Failures, failures...)
		fetched = fetched || ok > 0

		if session.plan.FullScan && p.pagesFetched >= s.cfg.MaxFullScanPages && !p.streamsDone() {
			log.WarnContext(ctx, "full scan truncated", slog.Int("pages_fetched", p.pagesFetched))
			p.truncated = true
			for i := range p.streams {
				p.streams[i].exhausted = true
			}
		}
		if len(failures) > 0 {
			break
		}
	}

	if !fetched && len(res.Failures) > 0 && len(res.Records) == 0 {
		return nil, fmt.Errorf("load more: %w", errors.Join(res.Failures...))
	}

	res.Exhausted = p.done()
	res.Truncated = p.truncated
	return res, nil
}

// round fetches the next page of every live descriptor concurrently,
// merges and filters them, and appends up to need matches to out. The
// surplus is buffered. It returns the per-descriptor failures and how many
// descriptors succeeded.
func (s *Service) round(ctx context.Context, session *Session, p *progress, need int, out *[]domain.Course) ([]error, int, error) {
	var live []int
	for i, st := range p.streams {
		if !st.exhausted {
			live = append(live, i)
		}
	}

	pages := make([]domain.Page, len(live))
	errs := make([]error, len(live))
	var g errgroup.Group
	for i, idx := range live {
		st := p.streams[idx]
		g.Go(func() error {
			pages[i], errs[i] = s.fetcher.Execute(ctx, st.desc, st.cursor)
			return nil
		})
	}

	// In-flight fetches are abandoned on cancellation; they only write to
	// this round's slices.
	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	var failures []error
	var ok []domain.Page
	for i, idx := range live {
		if errs[i] != nil {
			failures = append(failures, errs[i])
			continue
		}
		st := &p.streams[idx]
		page := pages[i]
		p.pagesFetched++
		ok = append(ok, page)
		if page.Next == nil || len(page.Records) < st.desc.Limit {
			st.exhausted = true
		} else {
			st.cursor = page.Next
		}
	}

	fresh := merge.MergeInto(p.seen, ok)
	matches := s.filter.Apply(fresh, session.criteria)
	take := min(need, len(matches))
	*out = append(*out, matches[:take]...)
	p.buffer = append(p.buffer, matches[take:]...)

	return failures, len(ok), nil
}
