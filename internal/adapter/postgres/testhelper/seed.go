package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/course-catalog/internal/domain"
)

// UniqueSuffix returns a short unique string for generating non-conflicting
// test data in the shared database.
func UniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedCourse inserts c as is and returns it. An empty ID is filled with a
// unique one.
func SeedCourse(t *testing.T, pool *pgxpool.Pool, c domain.Course) domain.Course {
	t.Helper()

	if c.ID == "" {
		c.ID = "seed-" + UniqueSuffix()
	}
	if c.Campus == nil {
		c.Campus = []string{}
	}
	if c.Tokens == nil {
		c.Tokens = []string{}
	}
	periods := make([]int32, len(c.Schedule.Periods))
	for i, p := range c.Schedule.Periods {
		periods[i] = int32(p)
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO courses (id, title, instructor, category, campus, grade, term, day, periods, tokens)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.Title, c.Instructor, c.Category, c.Campus, c.Grade, c.Term,
		string(c.Schedule.Day), periods, c.Tokens,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedCourse insert %s: %v", c.ID, err)
	}
	return c
}

// CountCourses returns the number of rows in courses whose term equals term.
func CountCourses(t *testing.T, pool *pgxpool.Pool, term string) int {
	t.Helper()

	var n int
	err := pool.QueryRow(context.Background(),
		`SELECT count(*) FROM courses WHERE term = $1`, term,
	).Scan(&n)
	if err != nil {
		t.Fatalf("testhelper: CountCourses: %v", err)
	}
	return n
}
