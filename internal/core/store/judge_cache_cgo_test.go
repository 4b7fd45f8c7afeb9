//go:build cgo

package store

import (
	"context"
	"testing"
	"time"

	"github.com/promptlens/promptlens/internal/config"
	"github.com/stretchr/testify/require"
)

func openMigrated(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	store, err := Open(ctx, config.StoreConfig{Driver: "libsql", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))
	return store
}

func TestJudgeCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openMigrated(t)

	_, ok, err := store.GetJudgeCache(ctx, "k1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.SetJudgeCache(ctx, "k1", "openai", "gpt-4-turbo", []byte(`{"content":[]}`), time.Hour))

	raw, ok, err := store.GetJudgeCache(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"content":[]}`, string(raw))

	// upsert replaces the payload
	require.NoError(t, store.SetJudgeCache(ctx, "k1", "openai", "gpt-4-turbo", []byte(`{"content":null}`), time.Hour))
	raw, ok, err = store.GetJudgeCache(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"content":null}`, string(raw))
}

func TestJudgeCacheExpiry(t *testing.T) {
	ctx := context.Background()
	store := openMigrated(t)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.Clock = func() time.Time { return now }
	require.NoError(t, store.SetJudgeCache(ctx, "k", "llamacpp", "", []byte(`{}`), time.Minute))

	now = now.Add(2 * time.Minute)
	_, ok, err := store.GetJudgeCache(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	stats, err := store.JudgeCacheStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Entries)
	require.Equal(t, 1, stats.Expired)

	removed, err := store.PurgeJudgeCache(ctx, false)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)
}

func TestJudgeCacheZeroTTLIsNoop(t *testing.T) {
	ctx := context.Background()
	store := openMigrated(t)

	require.NoError(t, store.SetJudgeCache(ctx, "k", "openai", "m", []byte(`{}`), 0))
	_, ok, err := store.GetJudgeCache(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestJudgeCacheStats(t *testing.T) {
	ctx := context.Background()
	store := openMigrated(t)

	require.NoError(t, store.SetJudgeCache(ctx, "a", "openai", "gpt-4-turbo", []byte(`{}`), time.Hour))
	require.NoError(t, store.SetJudgeCache(ctx, "b", "openai", "gpt-4-turbo", []byte(`{}`), time.Hour))
	require.NoError(t, store.SetJudgeCache(ctx, "c", "llamacpp", "", []byte(`{}`), time.Hour))

	_, _, err := store.GetJudgeCache(ctx, "a")
	require.NoError(t, err)

	stats, err := store.JudgeCacheStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Entries)
	require.Equal(t, 1, stats.Hits)
	require.Equal(t, map[string]int{"openai/gpt-4-turbo": 2, "llamacpp": 1}, stats.Drivers)

	removed, err := store.PurgeJudgeCache(ctx, true)
	require.NoError(t, err)
	require.EqualValues(t, 3, removed)
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := openMigrated(t)
	require.NoError(t, store.Migrate(context.Background()))
}
