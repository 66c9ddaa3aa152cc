package models

import "time"

// TranslationCacheEntry is a persisted model translation. Output is the raw
// model reply; it is re-canonicalized on every read so normalizer changes
// apply to old entries too.
type TranslationCacheEntry struct {
	Key           string    `gorm:"primaryKey"`
	PromptVersion string    `gorm:"not null;index"`
	Input         string    `gorm:"not null"`
	Output        string    `gorm:"not null"`
	ExpiresAt     time.Time `gorm:"index"`
	CreatedAt     time.Time
}

func (TranslationCacheEntry) TableName() string {
	return "translation_cache"
}
