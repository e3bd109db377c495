package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskplanner/internal/database"
	"taskplanner/internal/models"
	"taskplanner/internal/services"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection pins every statement to the same in-memory DB.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	return db
}

func newAuthDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := openSQLite(t)
	require.NoError(t, database.MigrateAuth(db))
	return db
}

func newTaskDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := openSQLite(t)
	require.NoError(t, database.MigrateTask(db))
	return db
}

func futureTime(d time.Duration) *time.Time {
	ts := time.Now().Add(d).UTC().Truncate(time.Second)
	return &ts
}

func mustCreateTask(t *testing.T, db *gorm.DB, authorID uint, req services.TaskCreateRequest) *models.Task {
	t.Helper()
	task, err := services.NewTaskService().Create(db, authorID, req)
	require.NoError(t, err)
	return task
}

func mustCreateTag(t *testing.T, db *gorm.DB, authorID uint, name string) *models.Tag {
	t.Helper()
	tag, err := services.NewTagService().Create(db, authorID, name)
	require.NoError(t, err)
	return tag
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(i int) *int {
	return &i
}
