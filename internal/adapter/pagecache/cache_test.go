package pagecache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/course-catalog/internal/domain"
)

type backendMock struct {
	FetchFunc func(ctx context.Context, q domain.QueryDescriptor, cursor *string) (domain.Page, error)
	calls     int
}

func (m *backendMock) Fetch(ctx context.Context, q domain.QueryDescriptor, cursor *string) (domain.Page, error) {
	m.calls++
	return m.FetchFunc(ctx, q, cursor)
}

func pageOf(ids ...string) domain.Page {
	next := domain.EncodeCursor("t", ids[len(ids)-1])
	p := domain.Page{Next: &next}
	for _, id := range ids {
		p.Records = append(p.Records, domain.Course{ID: id, Title: "Course " + id, Campus: []string{"North"}})
	}
	return p
}

func setupCache(t *testing.T, next backend) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client, err := NewClient(context.Background(), "redis://"+s.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(logger, client, next, time.Minute, "catalog:page:"), s
}

var testQuery = domain.QueryDescriptor{
	Name:    "primary",
	Filters: []domain.FieldFilter{{Field: domain.FieldCategory, Op: domain.OpEqual, Value: "Physics"}},
	OrderBy: domain.FieldTitle,
	Limit:   2,
}

func TestCache_Fetch_MissThenHit(t *testing.T) {
	t.Parallel()
	b := &backendMock{FetchFunc: func(context.Context, domain.QueryDescriptor, *string) (domain.Page, error) {
		return pageOf("c-1", "c-2"), nil
	}}
	cache, s := setupCache(t, b)
	ctx := context.Background()

	first, err := cache.Fetch(ctx, testQuery, nil)
	require.NoError(t, err)
	second, err := cache.Fetch(ctx, testQuery, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, b.calls)
	assert.Equal(t, first, second)
	assert.True(t, s.Exists(cache.Key(testQuery, nil)))
	assert.Equal(t, time.Minute, s.TTL(cache.Key(testQuery, nil)))
}

func TestCache_Fetch_Expires(t *testing.T) {
	t.Parallel()
	b := &backendMock{FetchFunc: func(context.Context, domain.QueryDescriptor, *string) (domain.Page, error) {
		return pageOf("c-1"), nil
	}}
	cache, s := setupCache(t, b)
	ctx := context.Background()

	_, err := cache.Fetch(ctx, testQuery, nil)
	require.NoError(t, err)
	s.FastForward(2 * time.Minute)
	_, err = cache.Fetch(ctx, testQuery, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, b.calls)
}

func TestCache_Key(t *testing.T) {
	t.Parallel()
	cache := &Cache{prefix: "catalog:page:"}
	cursor := domain.EncodeCursor("Optics", "c-9")

	base := cache.Key(testQuery, nil)
	assert.Contains(t, base, "catalog:page:")
	assert.NotEqual(t, base, cache.Key(testQuery, &cursor))

	bigger := testQuery
	bigger.Limit = 50
	assert.NotEqual(t, base, cache.Key(bigger, nil))

	renamed := testQuery
	renamed.Name = "other"
	assert.Equal(t, base, cache.Key(renamed, nil))
}

func TestCache_Fetch_BackendErrorNotCached(t *testing.T) {
	t.Parallel()
	b := &backendMock{FetchFunc: func(context.Context, domain.QueryDescriptor, *string) (domain.Page, error) {
		return domain.Page{}, domain.ErrBackendUnavailable
	}}
	cache, s := setupCache(t, b)

	_, err := cache.Fetch(context.Background(), testQuery, nil)
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.False(t, s.Exists(cache.Key(testQuery, nil)))
}

func TestCache_Fetch_RedisDownFallsThrough(t *testing.T) {
	t.Parallel()
	b := &backendMock{FetchFunc: func(context.Context, domain.QueryDescriptor, *string) (domain.Page, error) {
		return pageOf("c-1"), nil
	}}
	cache, s := setupCache(t, b)
	s.Close()

	page, err := cache.Fetch(context.Background(), testQuery, nil)
	require.NoError(t, err)
	assert.Len(t, page.Records, 1)
	assert.Equal(t, 1, b.calls)
}

func TestCache_Fetch_CorruptEntry(t *testing.T) {
	t.Parallel()
	b := &backendMock{FetchFunc: func(context.Context, domain.QueryDescriptor, *string) (domain.Page, error) {
		return pageOf("c-1"), nil
	}}
	cache, s := setupCache(t, b)
	require.NoError(t, s.Set(cache.Key(testQuery, nil), "{not json"))

	page, err := cache.Fetch(context.Background(), testQuery, nil)
	require.NoError(t, err)
	assert.Equal(t, "c-1", page.Records[0].ID)
	assert.Equal(t, 1, b.calls)
}

func TestNewClient_BadURL(t *testing.T) {
	t.Parallel()
	_, err := NewClient(context.Background(), "not-a-url://")
	assert.Error(t, err)
}
