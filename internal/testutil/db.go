// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"dealflow_backend/internal/database"
	"dealflow_backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory database private to the test.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Discard,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CreateUser inserts a user with the given role.
func CreateUser(t testing.TB, db *gorm.DB, role models.UserRole, optIn bool) *models.User {
	t.Helper()

	u := &models.User{
		Email:            uuid.NewString() + "@example.com",
		Name:             string(role) + " user",
		Role:             role,
		Status:           models.UserStatusActive,
		AutoArrangeOptIn: optIn,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}
