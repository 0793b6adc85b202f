package database

import (
	"tradewizard_backend/internal/logger"
	"tradewizard_backend/internal/models"

	"gorm.io/gorm"
)

// Migrate runs the schema migration for every model. The uuid defaults on
// primary keys need the uuid-ossp extension, so it is created first.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.Robot{},
		&models.RobotRequest{},
		&models.Transaction{},
		&models.SubscriptionPlan{},
		&models.Notification{},
		&models.Conversation{},
		&models.Message{},
	)
	if err != nil {
		return err
	}

	logger.Info("database migration completed")
	return nil
}
