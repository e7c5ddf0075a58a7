package database

import (
	"fmt"

	"bizdir_backend/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate brings the schema up to date. The uuid-ossp extension
// backs the uuid_generate_v4() column defaults.
func AutoMigrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to create uuid-ossp extension: %w", err)
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.Notification{},
		&models.Delivery{},
	)
	if err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	return nil
}
