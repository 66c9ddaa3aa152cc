package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codyseavey/mtg-oracle/internal/models"
)

// Open connects to the sqlite database at dbPath and migrates the schema.
// promptVersion identifies the current translation contract; cached
// translations made under any other version are dropped.
func Open(dbPath, promptVersion string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	log.Info("database connected", zap.String("path", dbPath))

	if err := db.AutoMigrate(&models.TranslationCacheEntry{}, &models.GeneratedDeck{}); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	if err := RunMigrations(db, promptVersion, log); err != nil {
		return nil, err
	}

	log.Info("database migration completed")
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
