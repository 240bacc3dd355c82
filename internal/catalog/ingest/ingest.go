// Package ingest loads course records from YAML seed files and writes them
// to a catalog store in batches.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/heartmarshall/course-catalog/internal/catalog/textindex"
	"github.com/heartmarshall/course-catalog/internal/domain"
)

// courseNamespace scopes generated ids so re-seeding the same course keeps
// its id.
var courseNamespace = uuid.MustParse("6f1c7a52-2d8e-4b0c-9a51-3e2f6d9b8c41")

// File is the on-disk seed shape.
type File struct {
	Courses []domain.Course `yaml:"courses"`
}

// Load reads and prepares a seed file.
func Load(path string) ([]domain.Course, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes seed YAML and prepares every course.
func Parse(raw []byte) ([]domain.Course, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("ingest: parse: %w", err)
	}
	return Prepare(f.Courses)
}

// Prepare fills in ids and search tokens. Courses without a title or with
// a duplicate id are rejected.
func Prepare(courses []domain.Course) ([]domain.Course, error) {
	out := make([]domain.Course, 0, len(courses))
	seen := make(map[string]int, len(courses))
	for i, c := range courses {
		c.Title = strings.TrimSpace(c.Title)
		c.Instructor = strings.TrimSpace(c.Instructor)
		if c.Title == "" {
			return nil, fmt.Errorf("ingest: course %d: %w", i, domain.NewValidationError("title", "required"))
		}
		if c.ID == "" {
			c.ID = uuid.NewSHA1(courseNamespace, []byte(c.Title+"\x00"+c.Instructor+"\x00"+c.Term)).String()
		}
		if j, ok := seen[c.ID]; ok {
			return nil, fmt.Errorf("ingest: course %d: %w", i,
				domain.NewValidationError("id", fmt.Sprintf("duplicate of course %d", j)))
		}
		seen[c.ID] = i
		c.Tokens = textindex.IndexCourse(c)
		out = append(out, c)
	}
	return out, nil
}

// CourseWriter persists courses, replacing records with the same id.
type CourseWriter interface {
	Upsert(ctx context.Context, courses []domain.Course) (int, error)
}

// Config holds pipeline settings.
type Config struct {
	BatchSize int
	DryRun    bool
}

// Result summarizes one run.
type Result struct {
	Written  int
	Skipped  int
	Duration time.Duration
}

// Pipeline writes prepared courses to a CourseWriter.
type Pipeline struct {
	log  *slog.Logger
	repo CourseWriter
	cfg  Config
}

// NewPipeline creates a new Pipeline.
func NewPipeline(log *slog.Logger, repo CourseWriter, cfg Config) *Pipeline {
	return &Pipeline{
		log:  log.With("service", "ingest"),
		repo: repo,
		cfg:  cfg,
	}
}

// Run upserts courses in batches. It stops at the first failing batch.
func (p *Pipeline) Run(ctx context.Context, courses []domain.Course) (Result, error) {
	start := time.Now()

	if p.cfg.DryRun {
		p.log.Info("dry run, nothing written", slog.Int("courses", len(courses)))
		return Result{Skipped: len(courses), Duration: time.Since(start)}, nil
	}

	written, err := batchProcess(courses, p.cfg.BatchSize, func(batch []domain.Course) (int, error) {
		return p.repo.Upsert(ctx, batch)
	})
	result := Result{Written: written, Duration: time.Since(start)}
	if err != nil {
		p.log.Warn("ingest failed",
			slog.Int("written", written),
			slog.String("error", err.Error()),
		)
		return result, fmt.Errorf("upsert courses: %w", err)
	}

	p.log.Info("ingest completed",
		slog.Int("written", written),
		slog.Duration("duration", result.Duration),
	)
	return result, nil
}

func batchProcess[T any](items []T, batchSize int, fn func([]T) (int, error)) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 500
	}

	total := 0
	for i := 0; i < len(items); i += batchSize {
		end := min(i+batchSize, len(items))
		n, err := fn(items[i:end])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
