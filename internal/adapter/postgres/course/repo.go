// Package course implements the course store backend on PostgreSQL.
// Query descriptors are translated into keyset-paginated SELECTs built with
// squirrel; ingestion upserts in batches inside one transaction.
package course

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/course-catalog/internal/adapter/postgres"
	"github.com/heartmarshall/course-catalog/internal/domain"
)

type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repo is the PostgreSQL course store.
type Repo struct {
	db   postgres.Querier
	tx   txRunner
	caps domain.Capabilities
}

// New creates a new course repository. db is usually a *pgxpool.Pool.
func New(db postgres.Querier, tx txRunner, caps domain.Capabilities) *Repo {
	return &Repo{db: db, tx: tx, caps: caps}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var courseColumns = []string{
	"id", "title", "instructor", "category", "campus",
	"grade", "term", "day", "periods", "tokens",
}

var fieldColumns = map[domain.Field]string{
	domain.FieldID:         "id",
	domain.FieldTitle:      "title",
	domain.FieldInstructor: "instructor",
	domain.FieldCategory:   "category",
	domain.FieldCampus:     "campus",
	domain.FieldGrade:      "grade",
	domain.FieldTerm:       "term",
	domain.FieldDay:        "day",
	domain.FieldPeriods:    "periods",
	domain.FieldTokens:     "tokens",
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Fetch returns the page of q that follows cursor. Next is set only when
// the page is full.
func (r *Repo) Fetch(ctx context.Context, q domain.QueryDescriptor, cursor *string) (domain.Page, error) {
	query, err := r.buildFetch(q, cursor)
	if err != nil {
		return domain.Page{}, err
	}
	sql, args, err := query.ToSql()
	if err != nil {
		return domain.Page{}, fmt.Errorf("build query %s: %w", q.Name, err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return domain.Page{}, postgres.MapError(err, "fetch "+q.Name)
	}
	defer rows.Close()

	records := make([]domain.Course, 0, q.Limit)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return domain.Page{}, postgres.MapError(err, "scan "+q.Name)
		}
		records = append(records, c)
	}
	if err := rows.Err(); err != nil {
		return domain.Page{}, postgres.MapError(err, "fetch "+q.Name)
	}

	page := domain.Page{Records: records}
	if len(records) == q.Limit {
		last := records[len(records)-1]
		next := domain.EncodeCursor(last.SortValue(q.OrderBy), last.ID)
		page.Next = &next
	}
	return page, nil
}

// GetByID returns one course. Returns domain.ErrNotFound if it does not exist.
func (r *Repo) GetByID(ctx context.Context, id string) (domain.Course, error) {
	sql, args, err := psql.Select(courseColumns...).
		From("courses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Course{}, fmt.Errorf("build query: %w", err)
	}

	c, err := scanCourse(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		return domain.Course{}, postgres.MapError(err, "course "+id)
	}
	return c, nil
}

func (r *Repo) buildFetch(q domain.QueryDescriptor, cursor *string) (squirrel.SelectBuilder, error) {
	if err := q.Validate(r.caps); err != nil {
		return squirrel.SelectBuilder{}, fmt.Errorf("%w: %w", domain.ErrInvalidCriteria, err)
	}
	orderCol := fieldColumns[q.OrderBy]

	query := psql.Select(courseColumns...).From("courses")
	for _, f := range q.Filters {
		pred, err := predicate(f)
		if err != nil {
			return squirrel.SelectBuilder{}, fmt.Errorf("query %s: %w", q.Name, err)
		}
		query = query.Where(pred)
	}

	if cursor != nil {
		sortValue, id, err := domain.DecodeCursor(*cursor)
		if err != nil {
			return squirrel.SelectBuilder{}, fmt.Errorf("%w: %w", domain.ErrInvalidCriteria, err)
		}
		if orderCol == "id" {
			query = query.Where(squirrel.Gt{"id": id})
		} else {
			query = query.Where(squirrel.Expr("("+orderCol+", id) > (?, ?)", sortValue, id))
		}
	}

	orderBy := []string{orderCol}
	if orderCol != "id" {
		orderBy = append(orderBy, "id")
	}
	return query.OrderBy(orderBy...).Limit(uint64(q.Limit)), nil
}

// predicate translates one descriptor filter into SQL.
func predicate(f domain.FieldFilter) (squirrel.Sqlizer, error) {
	col, ok := fieldColumns[f.Field]
	if !ok {
		return nil, fmt.Errorf("unknown field %q", f.Field)
	}

	switch f.Op {
	case domain.OpEqual:
		return squirrel.Eq{col: f.Value}, nil
	case domain.OpIn:
		// squirrel renders a slice value as IN (...).
		return squirrel.Eq{col: f.Value}, nil
	case domain.OpGreaterOrEqual:
		return squirrel.GtOrEq{col: f.Value}, nil
	case domain.OpLess:
		return squirrel.Lt{col: f.Value}, nil
	case domain.OpArrayContains:
		if f.Field == domain.FieldPeriods {
			p, ok := f.Value.(int)
			if !ok {
				return nil, fmt.Errorf("%s needs an int", f)
			}
			return squirrel.Expr(col+" @> ?", []int32{int32(p)}), nil
		}
		s, ok := f.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%s needs a string", f)
		}
		return squirrel.Expr(col+" @> ?", []string{s}), nil
	case domain.OpArrayContainsAny:
		values, ok := f.Value.([]string)
		if !ok {
			return nil, fmt.Errorf("%s needs a []string", f)
		}
		if f.Field == domain.FieldPeriods {
			return nil, fmt.Errorf("%s: unsupported on periods", f)
		}
		return squirrel.Expr(col+" && ?", values), nil
	}
	return nil, fmt.Errorf("unknown operator %q", f.Op)
}

func scanCourse(row pgx.Row) (domain.Course, error) {
	var (
		c       domain.Course
		day     string
		periods []int32
	)
	if err := row.Scan(
		&c.ID, &c.Title, &c.Instructor, &c.Category, &c.Campus,
		&c.Grade, &c.Term, &day, &periods, &c.Tokens,
	); err != nil {
		return domain.Course{}, err
	}
	c.Schedule.Day = domain.Weekday(day)
	if len(periods) > 0 {
		c.Schedule.Periods = make([]int, len(periods))
		for i, p := range periods {
			c.Schedule.Periods[i] = int(p)
		}
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

var upsertSuffix = "ON CONFLICT (id) DO UPDATE SET " + strings.Join([]string{
	"title = EXCLUDED.title",
	"instructor = EXCLUDED.instructor",
	"category = EXCLUDED.category",
	"campus = EXCLUDED.campus",
	"grade = EXCLUDED.grade",
	"term = EXCLUDED.term",
	"day = EXCLUDED.day",
	"periods = EXCLUDED.periods",
	"tokens = EXCLUDED.tokens",
	"updated_at = now()",
}, ", ")

// Upsert inserts or replaces courses by id in one transaction and returns
// the number of rows written.
func (r *Repo) Upsert(ctx context.Context, courses []domain.Course) (int, error) {
	if len(courses) == 0 {
		return 0, nil
	}

	query := psql.Insert("courses").Columns(courseColumns...)
	for _, c := range courses {
		if c.ID == "" {
			return 0, domain.NewValidationError("id", "required")
		}
		query = query.Values(
			c.ID, c.Title, c.Instructor, c.Category, nonNil(c.Campus),
			c.Grade, c.Term, string(c.Schedule.Day), toInt32(c.Schedule.Periods), nonNil(c.Tokens),
		)
	}
	sql, args, err := query.Suffix(upsertSuffix).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build upsert: %w", err)
	}

	var written int
	err = r.tx.RunInTx(ctx, func(ctx context.Context) error {
		tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, sql, args...)
		if err != nil {
			return postgres.MapError(err, "upsert courses")
		}
		written = int(tag.RowsAffected())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toInt32(periods []int) []int32 {
	out := make([]int32, len(periods))
	for i, p := range periods {
		out[i] = int32(p)
	}
	return out
}
