package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/codyseavey/mtg-oracle/internal/database"
	"github.com/codyseavey/mtg-oracle/internal/models"
)

type fakeStore struct {
	mu      sync.Mutex
	entries map[string]models.TranslationCacheEntry
	getErr  error
	setErr  error
	gets    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]models.TranslationCacheEntry)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return "", f.getErr
	}
	e, ok := f.entries[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return e.Output, nil
}

func (f *fakeStore) Set(_ context.Context, entry models.TranslationCacheEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[entry.Key] = entry
	return nil
}

func newTestCache(t *testing.T, store TranslationStore) *TranslationCache {
	t.Helper()
	c, err := NewTranslationCache(store, 16, time.Hour, "v1", zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestTranslationCache_KeyFoldsInput(t *testing.T) {
	c := newTestCache(t, nil)
	assert.Equal(t, c.Key("Red  Burn"), c.Key("red burn"))
	assert.Equal(t, c.Key("Lim-Dûl's zombies"), c.Key("lim-dul's zombies"))
	assert.NotEqual(t, c.Key("red burn"), c.Key("blue burn"))

	other, err := NewTranslationCache(nil, 16, time.Hour, "v2", zap.NewNop())
	require.NoError(t, err)
	assert.NotEqual(t, c.Key("red burn"), other.Key("red burn"), "prompt version is part of the key")
}

func TestTranslationCache_MemoryOnly(t *testing.T) {
	c := newTestCache(t, nil)
	ctx := context.Background()

	_, ok := c.Get(ctx, "red burn")
	assert.False(t, ok)

	c.Put(ctx, "red burn", "c:r o:damage")
	out, ok := c.Get(ctx, "RED BURN")
	assert.True(t, ok)
	assert.Equal(t, "c:r o:damage", out)
	assert.Equal(t, 1, c.Len())
}

func TestTranslationCache_IgnoresEmptyOutput(t *testing.T) {
	c := newTestCache(t, nil)
	c.Put(context.Background(), "red burn", "")
	assert.Equal(t, 0, c.Len())
}

func TestTranslationCache_Expiry(t *testing.T) {
	c := newTestCache(t, nil)
	ctx := context.Background()
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Put(ctx, "red burn", "c:r o:damage")

	c.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, ok := c.Get(ctx, "red burn")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTranslationCache_StoreWriteThroughAndReadBack(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	first := newTestCache(t, store)
	first.Put(ctx, "mana dorks", "type:creature o:\"add {g}\"")

	entry, ok := store.entries[first.Key("mana dorks")]
	require.True(t, ok)
	assert.Equal(t, "v1", entry.PromptVersion)
	assert.Equal(t, "mana dorks", entry.Input)

	// A fresh process with an empty memory tier finds it in the store, then
	// serves it from memory.
	second := newTestCache(t, store)
	out, ok := second.Get(ctx, "Mana Dorks")
	require.True(t, ok)
	assert.Equal(t, "type:creature o:\"add {g}\"", out)

	gets := store.gets
	_, ok = second.Get(ctx, "mana dorks")
	assert.True(t, ok)
	assert.Equal(t, gets, store.gets, "second read is served from memory")
}

func TestTranslationCache_StoreErrorsAreMisses(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("disk on fire")
	store.setErr = errors.New("disk on fire")
	c := newTestCache(t, store)
	ctx := context.Background()

	_, ok := c.Get(ctx, "red burn")
	assert.False(t, ok)

	// Memory tier still works when the store rejects writes.
	c.Put(ctx, "red burn", "c:r o:damage")
	_, ok = c.Get(ctx, "red burn")
	assert.True(t, ok)
}

func TestSQLTranslationStore(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "oracle.db"), "v1", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	store := NewSQLTranslationStore(db)
	ctx := context.Background()
	now := time.Now()

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, store.Set(ctx, models.TranslationCacheEntry{
		Key: "live", PromptVersion: "v1", Input: "a", Output: "o:draw", ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, store.Set(ctx, models.TranslationCacheEntry{
		Key: "stale", PromptVersion: "v1", Input: "b", Output: "o:mill", ExpiresAt: now.Add(-time.Hour),
	}))

	out, err := store.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "o:draw", out)

	_, err = store.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrCacheMiss, "expired rows are not served")

	// Upsert replaces the output.
	require.NoError(t, store.Set(ctx, models.TranslationCacheEntry{
		Key: "live", PromptVersion: "v1", Input: "a", Output: "o:\"draw a card\"", ExpiresAt: now.Add(time.Hour),
	}))
	out, err = store.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "o:\"draw a card\"", out)

	pruned, err := store.Prune(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)
}
