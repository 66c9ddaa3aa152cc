package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunMigrations runs data migrations after schema changes. Safe to run on
// every start.
func RunMigrations(db *gorm.DB, promptVersion string, log *zap.Logger) error {
	return purgeStaleTranslations(db, promptVersion, log)
}

// purgeStaleTranslations removes cached translations produced under a
// different prompt version, and any row whose output is blank.
func purgeStaleTranslations(db *gorm.DB, promptVersion string, log *zap.Logger) error {
	if !db.Migrator().HasTable("translation_cache") {
		return nil
	}

	result := db.Exec(`DELETE FROM translation_cache WHERE output IS NULL OR TRIM(output) = ''`)
	if result.Error != nil {
		return fmt.Errorf("purge empty translations: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Info("removed empty cached translations", zap.Int64("rows", result.RowsAffected))
	}

	if promptVersion == "" {
		return nil
	}

	result = db.Exec(`DELETE FROM translation_cache WHERE prompt_version <> ?`, promptVersion)
	if result.Error != nil {
		return fmt.Errorf("purge stale translations: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Info("removed translations from older prompt versions",
			zap.Int64("rows", result.RowsAffected),
			zap.String("prompt_version", promptVersion))
	}
	return nil
}
