package db

import (
	"fmt"

	"github.com/zulandar/wadash/internal/models"
	"gorm.io/gorm"
)

// AllModels returns the GORM models owned by wadash.
func AllModels() []interface{} {
	return []interface{}{
		&models.JournalEntry{},
	}
}

// AutoMigrate creates or updates the journal tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
