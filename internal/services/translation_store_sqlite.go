package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codyseavey/mtg-oracle/internal/models"
)

// SQLTranslationStore keeps cached translations in the sqlite database.
type SQLTranslationStore struct {
	db *gorm.DB
}

func NewSQLTranslationStore(db *gorm.DB) *SQLTranslationStore {
	return &SQLTranslationStore{db: db}
}

func (s *SQLTranslationStore) Get(ctx context.Context, key string) (string, error) {
	var entry models.TranslationCacheEntry
	err := s.db.WithContext(ctx).
		Where(&models.TranslationCacheEntry{Key: key}).
		Where("expires_at > ?", time.Now()).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	return entry.Output, nil
}

func (s *SQLTranslationStore) Set(ctx context.Context, entry models.TranslationCacheEntry) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&entry).Error
}

// Prune deletes rows that expired before now and reports how many went.
func (s *SQLTranslationStore) Prune(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&models.TranslationCacheEntry{})
	return result.RowsAffected, result.Error
}
