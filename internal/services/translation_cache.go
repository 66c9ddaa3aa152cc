package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/codyseavey/mtg-oracle/internal/metrics"
	"github.com/codyseavey/mtg-oracle/internal/models"
	"github.com/codyseavey/mtg-oracle/internal/query"
)

// ErrCacheMiss is returned by a TranslationStore when the key is absent or
// expired.
var ErrCacheMiss = errors.New("translation cache miss")

// TranslationStore is the durable tier behind the in-memory cache.
type TranslationStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, entry models.TranslationCacheEntry) error
}

type cachedTranslation struct {
	output    string
	expiresAt time.Time
}

// TranslationCache remembers raw model replies for descriptive queries. Keys
// combine the prompt version with the folded query, so "Red  Burn" and
// "red burn" share an entry and a prompt change invalidates everything.
type TranslationCache struct {
	mem     *lru.Cache[string, cachedTranslation]
	store   TranslationStore
	ttl     time.Duration
	version string
	log     *zap.Logger
	now     func() time.Time
}

// NewTranslationCache creates a two-tier cache. store may be nil for a
// memory-only cache.
func NewTranslationCache(store TranslationStore, size int, ttl time.Duration, promptVersion string, log *zap.Logger) (*TranslationCache, error) {
	if size <= 0 {
		size = 1024
	}
	mem, err := lru.New[string, cachedTranslation](size)
	if err != nil {
		return nil, err
	}
	return &TranslationCache{
		mem:     mem,
		store:   store,
		ttl:     ttl,
		version: promptVersion,
		log:     log,
		now:     time.Now,
	}, nil
}

// Key returns the cache key for a raw query.
func (c *TranslationCache) Key(raw string) string {
	h := sha256.Sum256([]byte(c.version + "\x00" + query.Fold(raw)))
	return hex.EncodeToString(h[:])
}

// Get returns the cached model reply for raw. Store errors are logged and
// treated as a miss.
func (c *TranslationCache) Get(ctx context.Context, raw string) (string, bool) {
	key := c.Key(raw)
	now := c.now()

	if e, ok := c.mem.Get(key); ok {
		if now.Before(e.expiresAt) {
			metrics.TranslationCacheHits.WithLabelValues("memory").Inc()
			return e.output, true
		}
		c.mem.Remove(key)
	}

	if c.store != nil {
		out, err := c.store.Get(ctx, key)
		switch {
		case err == nil && out != "":
			metrics.TranslationCacheHits.WithLabelValues("store").Inc()
			c.mem.Add(key, cachedTranslation{output: out, expiresAt: now.Add(c.ttl)})
			return out, true
		case err != nil && !errors.Is(err, ErrCacheMiss):
			metrics.TranslationCacheErrors.WithLabelValues("get").Inc()
			c.log.Warn("failed to read cached translation", zap.String("key", key), zap.Error(err))
		}
	}

	metrics.TranslationCacheMisses.Inc()
	return "", false
}

// Put stores a model reply. Only replies that produced a usable query should
// be cached.
func (c *TranslationCache) Put(ctx context.Context, raw, output string) {
	if output == "" {
		return
	}
	key := c.Key(raw)
	now := c.now()
	expires := now.Add(c.ttl)

	c.mem.Add(key, cachedTranslation{output: output, expiresAt: expires})

	if c.store == nil {
		return
	}
	err := c.store.Set(ctx, models.TranslationCacheEntry{
		Key:           key,
		PromptVersion: c.version,
		Input:         query.Fold(raw),
		Output:        output,
		ExpiresAt:     expires,
		CreatedAt:     now,
	})
	if err != nil {
		metrics.TranslationCacheErrors.WithLabelValues("set").Inc()
		c.log.Warn("failed to cache translation", zap.String("key", key), zap.Error(err))
	}
}

// Len reports the number of in-memory entries.
func (c *TranslationCache) Len() int {
	return c.mem.Len()
}
