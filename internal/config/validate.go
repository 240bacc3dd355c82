package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("database.dsn is required for the %s backend", BackendPostgres)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("store.backend must be %q or %q (got %q)", BackendPostgres, BackendMemory, c.Store.Backend)
	}

	if c.Redis.Enabled() && c.Redis.PageTTL <= 0 {
		return fmt.Errorf("redis.page_ttl must be > 0 (got %s)", c.Redis.PageTTL)
	}

	if err := c.Search.validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}

	return nil
}

func (s *SearchConfig) validate() error {
	if s.MaxPageSize <= 0 {
		return fmt.Errorf("max_page_size must be > 0 (got %d)", s.MaxPageSize)
	}
	if s.DefaultPageSize <= 0 || s.DefaultPageSize > s.MaxPageSize {
		return fmt.Errorf("default_page_size must be in [1, %d] (got %d)", s.MaxPageSize, s.DefaultPageSize)
	}
	if s.MaxSetWidth <= 0 {
		return fmt.Errorf("max_set_width must be > 0 (got %d)", s.MaxSetWidth)
	}
	if s.MaxInFilters <= 0 {
		return fmt.Errorf("max_in_filters must be > 0 (got %d)", s.MaxInFilters)
	}
	if s.MaxArrayFilters <= 0 {
		return fmt.Errorf("max_array_filters must be > 0 (got %d)", s.MaxArrayFilters)
	}
	if s.MaxTokens <= 0 || s.MaxTokens > s.MaxSetWidth {
		return fmt.Errorf("max_tokens must be in [1, %d] (got %d)", s.MaxSetWidth, s.MaxTokens)
	}
	if s.MaxFullScanPages <= 0 {
		return fmt.Errorf("max_full_scan_pages must be > 0 (got %d)", s.MaxFullScanPages)
	}
	if s.MaxRoundsPerLoad <= 0 {
		return fmt.Errorf("max_rounds_per_load must be > 0 (got %d)", s.MaxRoundsPerLoad)
	}
	if s.MaxLoadSize <= 0 {
		return fmt.Errorf("max_load_size must be > 0 (got %d)", s.MaxLoadSize)
	}
	if s.FetchTimeout < 0 {
		return fmt.Errorf("fetch_timeout must be >= 0 (got %s)", s.FetchTimeout)
	}
	return nil
}
