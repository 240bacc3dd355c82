package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql

	"github.com/heartmarshall/course-catalog/internal/adapter/memstore"
	"github.com/heartmarshall/course-catalog/internal/adapter/pagecache"
	"github.com/heartmarshall/course-catalog/internal/adapter/postgres"
	"github.com/heartmarshall/course-catalog/internal/adapter/postgres/course"
	"github.com/heartmarshall/course-catalog/internal/catalog/fetch"
	"github.com/heartmarshall/course-catalog/internal/catalog/hierarchy"
	"github.com/heartmarshall/course-catalog/internal/catalog/ingest"
	"github.com/heartmarshall/course-catalog/internal/catalog/planner"
	"github.com/heartmarshall/course-catalog/internal/catalog/postfilter"
	"github.com/heartmarshall/course-catalog/internal/config"
	"github.com/heartmarshall/course-catalog/internal/domain"
	"github.com/heartmarshall/course-catalog/internal/service/search"
	"github.com/heartmarshall/course-catalog/migrations"
)

// Compile-time interface assertions.
var (
	_ fetch.Backend       = (*course.Repo)(nil)
	_ fetch.Backend       = (*memstore.Store)(nil)
	_ fetch.Backend       = (*pagecache.Cache)(nil)
	_ ingest.CourseWriter = (*course.Repo)(nil)
	_ ingest.CourseWriter = (*memstore.Store)(nil)
)

// Catalog is the wired query engine over one configured store.
type Catalog struct {
	Config  *config.Config
	Logger  *slog.Logger
	Search  *search.Service
	Backend fetch.Backend
	Writer  ingest.CourseWriter

	finder  courseFinder
	closers []func()
}

type courseFinder interface {
	GetByID(ctx context.Context, id string) (domain.Course, error)
}

// New connects the configured store, optionally behind the Redis page
// cache, and builds the search service on top of it. The caller must Close
// the returned Catalog.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *Catalog, err error) {
	c := &Catalog{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	caps := cfg.Search.Capabilities()

	switch cfg.Store.Backend {
	case config.BackendMemory:
		store := memstore.New(caps)
		c.Backend, c.Writer = store, store
		if cfg.Store.SeedPath != "" {
			if _, err := c.Ingest(ctx, cfg.Store.SeedPath, false); err != nil {
				return nil, err
			}
		}
	default:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, pool.Close)
		repo := course.New(pool, postgres.NewTxManager(pool), caps)
		c.Backend, c.Writer, c.finder = repo, repo, repo
	}

	if cfg.Redis.Enabled() {
		client, err := pagecache.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		cache := pagecache.New(logger, client, c.Backend, cfg.Redis.PageTTL, cfg.Redis.KeyPrefix)
		c.closers = append(c.closers, func() { _ = cache.Close() })
		c.Backend = cache
	}

	tax := hierarchy.New(nil, nil)
	if cfg.Search.TaxonomyPath != "" {
		if tax, err = hierarchy.Load(cfg.Search.TaxonomyPath); err != nil {
			return nil, err
		}
	}

	qp := planner.New(tax, planner.Options{
		Caps:                caps,
		MaxTokens:           cfg.Search.MaxTokens,
		DefaultPageSize:     cfg.Search.DefaultPageSize,
		MaxPageSize:         cfg.Search.MaxPageSize,
		ChunkWideCategories: cfg.Search.ChunkWideCategories,
	})
	exec := fetch.NewExecutor(c.Backend, caps, cfg.Search.FetchTimeout)
	c.Search = search.NewService(logger, exec, qp, postfilter.New(tax), cfg.Search)

	logger.InfoContext(ctx, "catalog ready",
		slog.String("backend", cfg.Store.Backend),
		slog.Bool("page_cache", cfg.Redis.Enabled()),
		slog.String("version", BuildVersion()),
	)
	return c, nil
}

// Ingest loads a seed file and writes it to the store.
func (c *Catalog) Ingest(ctx context.Context, path string, dryRun bool) (ingest.Result, error) {
	courses, err := ingest.Load(path)
	if err != nil {
		return ingest.Result{}, err
	}
	pipeline := ingest.NewPipeline(c.Logger, c.Writer, ingest.Config{
		BatchSize: c.Config.Ingest.BatchSize,
		DryRun:    dryRun || c.Config.Ingest.DryRun,
	})
	return pipeline.Run(ctx, courses)
}

// Course returns one stored course by id. The memory store has no point
// lookup, so it is only available on Postgres.
func (c *Catalog) Course(ctx context.Context, id string) (domain.Course, error) {
	if c.finder == nil {
		return domain.Course{}, fmt.Errorf("course lookup needs the %s backend", config.BackendPostgres)
	}
	return c.finder.GetByID(ctx, id)
}

// Close releases connections in reverse order of acquisition.
func (c *Catalog) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Migrate applies the embedded goose migrations to the configured database.
func Migrate(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) error {
	// goose requires *sql.DB.
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	n, err := migrations.Up(ctx, db)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "migrations applied", slog.Int("count", n))
	return nil
}
