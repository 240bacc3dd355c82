package course_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	postgres "github.com/heartmarshall/course-catalog/internal/adapter/postgres"
	"github.com/heartmarshall/course-catalog/internal/adapter/postgres/course"
	"github.com/heartmarshall/course-catalog/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/course-catalog/internal/domain"
)

func TestRepo_Integration_PaginatesInKeyOrder(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := course.New(pool, postgres.NewTxManager(pool), domain.DefaultCapabilities())
	ctx := context.Background()

	term := "it-" + testhelper.UniqueSuffix()
	titles := []string{"Optics", "Algebra", "Mechanics", "Algebra", "Zoology"}
	for i, title := range titles {
		testhelper.SeedCourse(t, pool, domain.Course{
			ID:       term + "-" + string(rune('a'+i)),
			Title:    title,
			Term:     term,
			Campus:   []string{"North"},
			Schedule: domain.Schedule{Day: domain.Monday, Periods: []int{i + 1}},
		})
	}

	q := domain.QueryDescriptor{
		Name:    "primary",
		Filters: []domain.FieldFilter{{Field: domain.FieldTerm, Op: domain.OpEqual, Value: term}},
		OrderBy: domain.FieldTitle,
		Limit:   2,
	}

	var got []string
	var cursor *string
	for range 10 {
		page, err := repo.Fetch(ctx, q, cursor)
		require.NoError(t, err)
		for _, c := range page.Records {
			got = append(got, c.Title)
		}
		if page.Next == nil {
			break
		}
		cursor = page.Next
	}
	assert.Equal(t, []string{"Algebra", "Algebra", "Mechanics", "Optics", "Zoology"}, got)
}

func TestRepo_Integration_ArrayFilters(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := course.New(pool, postgres.NewTxManager(pool), domain.DefaultCapabilities())
	ctx := context.Background()

	term := "it-" + testhelper.UniqueSuffix()
	testhelper.SeedCourse(t, pool, domain.Course{ID: term + "-1", Title: "A", Term: term,
		Campus: []string{"North"}, Schedule: domain.Schedule{Day: domain.Monday, Periods: []int{3}}})
	testhelper.SeedCourse(t, pool, domain.Course{ID: term + "-2", Title: "B", Term: term,
		Campus: []string{"South"}, Schedule: domain.Schedule{Day: domain.Monday, Periods: []int{4}}})

	byPeriod := domain.QueryDescriptor{
		Name: "period",
		Filters: []domain.FieldFilter{
			{Field: domain.FieldTerm, Op: domain.OpEqual, Value: term},
			{Field: domain.FieldPeriods, Op: domain.OpArrayContains, Value: 3},
		},
		OrderBy: domain.FieldTitle,
		Limit:   10,
	}
	page, err := repo.Fetch(ctx, byPeriod, nil)
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, term+"-1", page.Records[0].ID)

	byCampus := domain.QueryDescriptor{
		Name: "campus",
		Filters: []domain.FieldFilter{
			{Field: domain.FieldTerm, Op: domain.OpEqual, Value: term},
			{Field: domain.FieldCampus, Op: domain.OpArrayContainsAny, Value: []string{"South", "Minami"}},
		},
		OrderBy: domain.FieldTitle,
		Limit:   10,
	}
	page, err = repo.Fetch(ctx, byCampus, nil)
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, term+"-2", page.Records[0].ID)
}

func TestRepo_Integration_Upsert(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := course.New(pool, postgres.NewTxManager(pool), domain.DefaultCapabilities())
	ctx := context.Background()

	term := "it-" + testhelper.UniqueSuffix()
	c := domain.Course{ID: term + "-1", Title: "Draft", Term: term, Tokens: []string{"dr"}}

	n, err := repo.Upsert(ctx, []domain.Course{c})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	c.Title = "Final"
	_, err = repo.Upsert(ctx, []domain.Course{c})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, []string{"dr"}, got.Tokens)
	assert.Equal(t, 1, testhelper.CountCourses(t, pool, term))

	_, err = repo.GetByID(ctx, term+"-missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
