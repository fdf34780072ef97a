package setup

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
)

// MigrateDB creates or updates the schema for every persistent model.
func MigrateDB(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Campaign{},
		&domain.Entity{},
		&domain.Conversation{},
		&domain.Message{},
		&domain.Session{},
		&domain.LiveNote{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate schema: %w", err)
	}
	return nil
}
