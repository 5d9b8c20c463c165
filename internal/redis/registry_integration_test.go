package redis

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

var (
	testRedisURL string
	redContainer testcontainers.Container
)

func TestMain(m *testing.M) {
	// Parse flags to check for -short
	flag.Parse()

	// Skip container setup if running in short mode
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	var err error
	redContainer, err = tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start redis container: %v\n", err)
		os.Exit(1)
	}

	endpoint, err := redContainer.Endpoint(ctx, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get redis endpoint: %v\n", err)
		os.Exit(1)
	}
	testRedisURL = "redis://" + endpoint

	code := m.Run()

	_ = redContainer.Terminate(ctx)
	os.Exit(code)
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	opts, err := goredis.ParseURL(testRedisURL)
	require.NoError(t, err)
	rdb := goredis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })

	key := fmt.Sprintf("snipcast:test:%s:connections", t.Name())
	t.Cleanup(func() { rdb.Del(context.Background(), key) })

	return NewRegistry(rdb, key)
}

func TestRegistry_PutIsIdempotent(t *testing.T) {
	registry := testRegistry(t)
	ctx := context.Background()

	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Minute)

	require.NoError(t, registry.Put(ctx, "abc123", first))
	require.NoError(t, registry.Put(ctx, "abc123", second))

	records, err := registry.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "abc123", records[0].ConnectionID)
	assert.True(t, records[0].ConnectedAt.Equal(second))
}

func TestRegistry_DeleteAbsentKeySucceeds(t *testing.T) {
	registry := testRegistry(t)
	ctx := context.Background()

	require.NoError(t, registry.Delete(ctx, "never-existed"))
}

func TestRegistry_DeleteRemovesRecord(t *testing.T) {
	registry := testRegistry(t)
	ctx := context.Background()

	require.NoError(t, registry.Put(ctx, "abc123", time.Now()))
	require.NoError(t, registry.Delete(ctx, "abc123"))

	records, err := registry.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRegistry_ListAllReturnsEveryRecord(t *testing.T) {
	registry := testRegistry(t)
	ctx := context.Background()

	now := time.Now()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, registry.Put(ctx, id, now))
	}

	records, err := registry.ListAll(ctx)
	require.NoError(t, err)

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ConnectionID)
	}
	assert.ElementsMatch(t, []string{"a", "b", "c"}, ids)
}

func TestRegistry_ListAllSkipsCorruptEntries(t *testing.T) {
	registry := testRegistry(t)
	ctx := context.Background()

	require.NoError(t, registry.Put(ctx, "good", time.Now()))
	require.NoError(t, registry.rdb.HSet(ctx, registry.key, "bad", "not-a-timestamp").Err())

	records, err := registry.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "good", records[0].ConnectionID)
}
