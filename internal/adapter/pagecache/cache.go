// Package pagecache is a Redis read-through cache in front of a course
// store backend. Pages are keyed by query shape, page size and cursor, so
// identical descriptors issued by different sessions share entries.
package pagecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/heartmarshall/course-catalog/internal/domain"
	"github.com/heartmarshall/course-catalog/pkg/ctxutil"
)

type backend interface {
	Fetch(ctx context.Context, q domain.QueryDescriptor, cursor *string) (domain.Page, error)
}

// Cache decorates a backend. Redis failures are logged and never fail a
// fetch; the backend is queried instead.
type Cache struct {
	log    *slog.Logger
	client *redis.Client
	next   backend
	ttl    time.Duration
	prefix string
}

// NewClient parses url, connects and pings Redis.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// New creates a Cache over next.
func New(logger *slog.Logger, client *redis.Client, next backend, ttl time.Duration, prefix string) *Cache {
	return &Cache{
		log:    logger.With("component", "pagecache"),
		client: client,
		next:   next,
		ttl:    ttl,
		prefix: prefix,
	}
}

// Key returns the Redis key of the page of q after cursor.
func (c *Cache) Key(q domain.QueryDescriptor, cursor *string) string {
	h := sha256.New()
	h.Write([]byte(q.Fingerprint()))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(q.Limit)))
	h.Write([]byte{0})
	if cursor != nil {
		h.Write([]byte(*cursor))
	}
	return c.prefix + hex.EncodeToString(h.Sum(nil))
}

// Fetch serves the page from Redis when present, otherwise from the
// backend, storing the result for the configured TTL.
func (c *Cache) Fetch(ctx context.Context, q domain.QueryDescriptor, cursor *string) (domain.Page, error) {
	key := c.Key(q, cursor)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var page domain.Page
		if err := json.Unmarshal(raw, &page); err == nil {
			c.log.DebugContext(ctx, "page cache hit", slog.String("query", q.Name))
			return page, nil
		}
		c.log.WarnContext(ctx, "page cache entry corrupt",
			slog.String("key", key),
			slog.String("request_id", ctxutil.RequestIDFromCtx(ctx)),
		)
	case errors.Is(err, redis.Nil):
	case ctx.Err() != nil:
		return domain.Page{}, ctx.Err()
	default:
		c.log.WarnContext(ctx, "page cache read failed",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.RequestIDFromCtx(ctx)),
		)
	}

	page, err := c.next.Fetch(ctx, q, cursor)
	if err != nil {
		return domain.Page{}, err
	}

	data, err := json.Marshal(page)
	if err != nil {
		return page, nil
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil && ctx.Err() == nil {
		c.log.WarnContext(ctx, "page cache write failed",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.RequestIDFromCtx(ctx)),
		)
	}
	return page, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
