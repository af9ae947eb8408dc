package db

import (
	"fmt"

	"github.com/pantheonlabs/zeta/internal/models"
	"gorm.io/gorm"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Project{},
		&models.ProjectSummary{},
		&models.Goal{},
		&models.EventLog{},
		&models.CalendarItem{},
		&models.TaskItem{},
		&models.Document{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
