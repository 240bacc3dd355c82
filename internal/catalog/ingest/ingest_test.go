package ingest

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/course-catalog/internal/domain"
)

type courseWriterMock struct {
	UpsertFunc func(ctx context.Context, courses []domain.Course) (int, error)
	batches    [][]domain.Course
}

func (m *courseWriterMock) Upsert(ctx context.Context, courses []domain.Course) (int, error) {
	m.batches = append(m.batches, courses)
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, courses)
	}
	return len(courses), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

const seedYAML = `
courses:
  - id: phys-101
    title: "Mechanics"
    instructor: "Sato"
    category: Physics
    campus: [North Campus]
    grade: "1"
    term: Spring
    schedule:
      day: MON
      periods: [3]
  - title: "  Statistics (Online) "
    instructor: Ito
    category: Economics
    campus: [South]
    term: Fall
    schedule:
      day: FRI
      periods: [1, 2]
`

func TestParse(t *testing.T) {
	t.Parallel()

	courses, err := Parse([]byte(seedYAML))
	require.NoError(t, err)
	require.Len(t, courses, 2)

	mech := courses[0]
	assert.Equal(t, "phys-101", mech.ID)
	assert.Equal(t, domain.Monday, mech.Schedule.Day)
	assert.Equal(t, []int{3}, mech.Schedule.Periods)
	assert.Equal(t, []string{"North Campus"}, mech.Campus)
	assert.Contains(t, mech.Tokens, "me")
	assert.Contains(t, mech.Tokens, "sa")

	stats := courses[1]
	assert.NotEmpty(t, stats.ID)
	assert.Equal(t, "Statistics (Online)", stats.Title)
	assert.Equal(t, domain.DeliveryModeOnline, domain.DeliveryModeOf(stats.Title))
}

func TestParse_GeneratedIDsAreStable(t *testing.T) {
	t.Parallel()

	first, err := Parse([]byte(seedYAML))
	require.NoError(t, err)
	second, err := Parse([]byte(seedYAML))
	require.NoError(t, err)

	assert.Equal(t, first[1].ID, second[1].ID)
}

func TestPrepare_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		courses []domain.Course
	}{
		{name: "missing title", courses: []domain.Course{{ID: "a", Title: "  "}}},
		{name: "duplicate id", courses: []domain.Course{{ID: "a", Title: "x"}, {ID: "a", Title: "y"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Prepare(tt.courses)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidCriteria)
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("courses: 42"))
	require.Error(t, err)
}

func TestPipeline_Run_Batches(t *testing.T) {
	t.Parallel()

	courses := make([]domain.Course, 5)
	for i := range courses {
		courses[i] = domain.Course{ID: string(rune('a' + i)), Title: "t"}
	}
	repo := &courseWriterMock{}

	res, err := NewPipeline(testLogger(), repo, Config{BatchSize: 2}).Run(context.Background(), courses)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Written)
	require.Len(t, repo.batches, 3)
	assert.Len(t, repo.batches[2], 1)
}

func TestPipeline_Run_DryRun(t *testing.T) {
	t.Parallel()

	repo := &courseWriterMock{}
	res, err := NewPipeline(testLogger(), repo, Config{DryRun: true}).Run(context.Background(), []domain.Course{{ID: "a"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, repo.batches)
}

func TestPipeline_Run_StopsOnError(t *testing.T) {
	t.Parallel()

	boom := errors.New("db down")
	calls := 0
	repo := &courseWriterMock{UpsertFunc: func(_ context.Context, c []domain.Course) (int, error) {
		calls++
		if calls == 2 {
			return 0, boom
		}
		return len(c), nil
	}}
	courses := []domain.Course{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	res, err := NewPipeline(testLogger(), repo, Config{BatchSize: 1}).Run(context.Background(), courses)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, res.Written)
	assert.Equal(t, 2, calls)
}
