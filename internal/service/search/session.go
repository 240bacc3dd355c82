package search

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/course-catalog/internal/catalog/merge"
	"github.com/heartmarshall/course-catalog/internal/catalog/planner"
	"github.com/heartmarshall/course-catalog/internal/domain"
)

// State is the lifecycle state of a Session.
type State string

const (
	StateIdle      State = "idle"
	StateFetching  State = "fetching"
	StateExhausted State = "exhausted"
)

// stream is the pagination state of one descriptor.
type stream struct {
	desc      domain.QueryDescriptor
	cursor    *string
	exhausted bool
}

// progress is everything a load may change. LoadMore works on a copy and
// swaps it in only when the call completes.
type progress struct {
	streams      []stream
	seen         merge.Set
	buffer       []domain.Course
	pagesFetched int
	truncated    bool
}

func (p progress) clone() progress {
	out := p
	out.streams = slices.Clone(p.streams)
	out.seen = p.seen.Clone()
	out.buffer = slices.Clone(p.buffer)
	return out
}

func (p progress) streamsDone() bool {
	for _, st := range p.streams {
		if !st.exhausted {
			return false
		}
	}
	return true
}

// done is true once nothing is left to fetch or hand out.
func (p progress) done() bool {
	return p.streamsDone() && len(p.buffer) == 0
}

// Session is the state of one submitted criteria across LoadMore calls.
type Session struct {
	id        uuid.UUID
	criteria  domain.Criteria
	plan      planner.Plan
	createdAt time.Time

	mu          sync.Mutex
	state       State
	progress    progress
	results     []domain.Course
	invalidated bool
	cancel      context.CancelFunc
}

func newSession(c domain.Criteria, plan planner.Plan) *Session {
	streams := make([]stream, len(plan.Descriptors))
	for i, d := range plan.Descriptors {
		streams[i] = stream{desc: d}
	}
	return &Session{
		id:        uuid.New(),
		criteria:  c,
		plan:      plan,
		createdAt: time.Now(),
		state:     StateIdle,
		progress:  progress{streams: streams, seen: merge.NewSet()},
	}
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID { return s.id }

// Criteria returns the normalized criteria the session was built from.
func (s *Session) Criteria() domain.Criteria { return s.criteria }

// Plan returns a copy of the query plan of the session.
func (s *Session) Plan() planner.Plan {
	p := s.plan
	p.Descriptors = slices.Clone(p.Descriptors)
	p.Advisories = slices.Clone(p.Advisories)
	return p
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Results returns a copy of every record handed out by LoadMore so far.
func (s *Session) Results() []domain.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.results)
}

// Truncated reports whether a full scan stopped at its page cap.
func (s *Session) Truncated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.truncated
}

// Invalidated reports whether a later Submit replaced this session.
func (s *Session) Invalidated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invalidated
}

func (s *Session) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated = true
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Session) cancelLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// ---------------------------------------------------------------------------
// Resume tokens
// ---------------------------------------------------------------------------

type resumeToken struct {
	Plan    string          `json:"p"`
	Streams []resumeStream  `json:"s"`
	Buffer  []domain.Course `json:"b,omitempty"`
}

type resumeStream struct {
	Cursor *string `json:"c,omitempty"`
	Done   bool    `json:"d,omitempty"`
}

func planDigest(p planner.Plan) string {
	sum := sha256.Sum256([]byte(p.Fingerprint()))
	return hex.EncodeToString(sum[:8])
}

// Cursor returns an opaque token that resumes this session's pagination
// when passed back as Criteria.Cursor with the same criteria. Matches
// fetched but not yet handed out travel inside the token.
func (s *Session) Cursor() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok := resumeToken{Plan: planDigest(s.plan), Buffer: s.progress.buffer}
	for _, st := range s.progress.streams {
		tok.Streams = append(tok.Streams, resumeStream{Cursor: st.cursor, Done: st.exhausted})
	}
	raw, err := json.Marshal(tok)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// restore applies a resume token. It runs before the session is published.
func (s *Session) restore(cursor string) error {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return domain.NewValidationError("cursor", "malformed")
	}
	var tok resumeToken
	if err := json.Unmarshal(raw, &tok); err != nil {
		return domain.NewValidationError("cursor", "malformed")
	}
	if tok.Plan != planDigest(s.plan) || len(tok.Streams) != len(s.progress.streams) {
		return domain.NewValidationError("cursor", "does not match the criteria")
	}

	for i, rs := range tok.Streams {
		s.progress.streams[i].cursor = rs.Cursor
		s.progress.streams[i].exhausted = rs.Done
	}
	s.progress.buffer = tok.Buffer
	for _, r := range tok.Buffer {
		s.progress.seen.Add(r.ID)
	}
	if s.progress.done() {
		s.state = StateExhausted
	}
	return nil
}
