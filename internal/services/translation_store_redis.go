package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/codyseavey/mtg-oracle/internal/config"
	"github.com/codyseavey/mtg-oracle/internal/models"
)

const redisTranslationPrefix = "oracle:translation:"

// RedisTranslationStore keeps cached translations in Redis, relying on key
// expiry instead of the janitor.
type RedisTranslationStore struct {
	client rueidis.Client
}

func NewRedisTranslationStore(cfg config.RedisConfig) (*RedisTranslationStore, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("redis addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	return &RedisTranslationStore{client: client}, nil
}

func (s *RedisTranslationStore) Get(ctx context.Context, key string) (string, error) {
	cmd := s.client.B().Get().Key(redisTranslationPrefix + key).Build()
	out, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", ErrCacheMiss
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return out, nil
}

func (s *RedisTranslationStore) Set(ctx context.Context, entry models.TranslationCacheEntry) error {
	ttl := time.Until(entry.ExpiresAt)
	if ttl < time.Second {
		return nil
	}
	cmd := s.client.B().Set().Key(redisTranslationPrefix + entry.Key).Value(entry.Output).Ex(ttl).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (s *RedisTranslationStore) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (s *RedisTranslationStore) Close() {
	s.client.Close()
}
