package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"taskplanner/internal/config"
	"taskplanner/internal/models"
)

// Open connects to postgres and applies the pool settings from config.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

// MigrateAuth creates the auth service schema.
func MigrateAuth(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

// MigrateTask creates the task service schema, including the task_tags
// join table with its cascade constraints.
func MigrateTask(db *gorm.DB) error {
	return db.AutoMigrate(&models.Task{}, &models.Tag{})
}
