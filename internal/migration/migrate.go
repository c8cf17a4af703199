package migration

import (
	"github.com/campusmarket/campusmarket-backend/internal/domain"
	"gorm.io/gorm"
)

// Run creates or updates the schema. AutoMigrate adds missing tables,
// columns and indexes and never drops anything, so it is safe to run on
// every startup.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Listing{},
		&domain.Thread{},
		&domain.Message{},
		&domain.Report{},
	)
}
