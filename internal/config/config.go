package config

import (
	"time"

	"github.com/heartmarshall/course-catalog/internal/domain"
)

// Backend names accepted in StoreConfig.Backend.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config is the root application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Search   SearchConfig   `yaml:"search"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Log      LogConfig      `yaml:"log"`
}

// StoreConfig selects the catalog backend.
type StoreConfig struct {
	Backend string `yaml:"backend"   env:"STORE_BACKEND"   env-default:"postgres"`
	// SeedPath is loaded into the memory backend at startup.
	SeedPath string `yaml:"seed_path" env:"STORE_SEED_PATH"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// RedisConfig holds the page cache settings. An empty URL disables the cache.
type RedisConfig struct {
	URL       string        `yaml:"url"        env:"REDIS_URL"`
	PageTTL   time.Duration `yaml:"page_ttl"   env:"REDIS_PAGE_TTL"   env-default:"5m"`
	KeyPrefix string        `yaml:"key_prefix" env:"REDIS_KEY_PREFIX" env-default:"catalog:page:"`
}

// Enabled reports whether the page cache should be used.
func (c RedisConfig) Enabled() bool { return c.URL != "" }

// SearchConfig holds query planning and pagination settings.
type SearchConfig struct {
	DefaultPageSize     int           `yaml:"default_page_size"     env:"SEARCH_DEFAULT_PAGE_SIZE"     env-default:"20"`
	MaxPageSize         int           `yaml:"max_page_size"         env:"SEARCH_MAX_PAGE_SIZE"         env-default:"100"`
	MaxSetWidth         int           `yaml:"max_set_width"         env:"SEARCH_MAX_SET_WIDTH"         env-default:"10"`
	MaxInFilters        int           `yaml:"max_in_filters"        env:"SEARCH_MAX_IN_FILTERS"        env-default:"1"`
	MaxArrayFilters     int           `yaml:"max_array_filters"     env:"SEARCH_MAX_ARRAY_FILTERS"     env-default:"1"`
	MaxTokens           int           `yaml:"max_tokens"            env:"SEARCH_MAX_TOKENS"            env-default:"10"`
	MaxFullScanPages    int           `yaml:"max_full_scan_pages"   env:"SEARCH_MAX_FULL_SCAN_PAGES"   env-default:"50"`
	MaxRoundsPerLoad    int           `yaml:"max_rounds_per_load"   env:"SEARCH_MAX_ROUNDS_PER_LOAD"   env-default:"20"`
	MaxLoadSize         int           `yaml:"max_load_size"         env:"SEARCH_MAX_LOAD_SIZE"         env-default:"200"`
	FetchTimeout        time.Duration `yaml:"fetch_timeout"         env:"SEARCH_FETCH_TIMEOUT"         env-default:"5s"`
	ChunkWideCategories bool          `yaml:"chunk_wide_categories" env:"SEARCH_CHUNK_WIDE_CATEGORIES" env-default:"false"`
	TaxonomyPath        string        `yaml:"taxonomy_path"         env:"SEARCH_TAXONOMY_PATH"`
}

// Capabilities returns the backend query limits described by the config.
func (c SearchConfig) Capabilities() domain.Capabilities {
	return domain.Capabilities{
		MaxSetWidth:     c.MaxSetWidth,
		MaxInFilters:    c.MaxInFilters,
		MaxArrayFilters: c.MaxArrayFilters,
	}
}

// IngestConfig holds seeding settings.
type IngestConfig struct {
	BatchSize int  `yaml:"batch_size" env:"INGEST_BATCH_SIZE" env-default:"500"`
	DryRun    bool `yaml:"dry_run"    env:"INGEST_DRY_RUN"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
