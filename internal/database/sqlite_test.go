package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/codyseavey/mtg-oracle/internal/models"
)

func TestOpen_MigratesSchema(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "oracle.db"), "v1", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	assert.True(t, db.Migrator().HasTable("translation_cache"))
	assert.True(t, db.Migrator().HasTable(&models.GeneratedDeck{}))
}

func TestRunMigrations_PurgesStaleTranslations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oracle.db")

	db, err := Open(path, "v1", zap.NewNop())
	require.NoError(t, err)

	expires := time.Now().Add(time.Hour)
	rows := []models.TranslationCacheEntry{
		{Key: "keep", PromptVersion: "v2", Input: "a", Output: "o:draw", ExpiresAt: expires},
		{Key: "old", PromptVersion: "v1", Input: "b", Output: "o:draw", ExpiresAt: expires},
		{Key: "blank", PromptVersion: "v2", Input: "c", Output: "   ", ExpiresAt: expires},
	}
	require.NoError(t, db.Create(&rows).Error)
	require.NoError(t, Close(db))

	db, err = Open(path, "v2", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	var keys []string
	require.NoError(t, db.Model(&models.TranslationCacheEntry{}).Pluck("key", &keys).Error)
	assert.Equal(t, []string{"keep"}, keys)
}
