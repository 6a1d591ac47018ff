// Package testutil wires an in-memory sqlite database and the service graph
// for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"fwf/config"
	"fwf/internal/database"
	"fwf/internal/domain"
	"fwf/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory database with every table migrated. A
// single connection keeps sqlite from reporting "database is locked".
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// Config returns the built-in defaults with a fixed JWT secret.
func Config() *config.Config {
	cfg := config.Default()
	cfg.JWT.Secret = "test-secret"
	cfg.Server.Env = "test"
	return cfg
}

// CreateMember inserts an active member with the given referral code.
// Password hashes are not valid bcrypt; use the auth service when a test
// needs to log in.
func CreateMember(t testing.TB, db *gorm.DB, memberID, referralCode string) *models.User {
	t.Helper()
	email := memberID + "@example.org"
	u := &models.User{
		MemberID:         memberID,
		Name:             "Member " + memberID,
		Email:            &email,
		PasswordHash:     "x",
		Role:             domain.RoleMember,
		MembershipActive: true,
	}
	if referralCode != "" {
		u.ReferralCode = &referralCode
	}
	require.NoError(t, db.WithContext(context.Background()).Create(u).Error)
	return u
}

// Reload reads u back from the database.
func Reload(t testing.TB, db *gorm.DB, id uint) *models.User {
	t.Helper()
	var u models.User
	require.NoError(t, db.First(&u, id).Error)
	return &u
}

// LedgerRows returns every ledger row of userID, oldest first.
func LedgerRows(t testing.TB, db *gorm.DB, userID uint) []models.PointsLedger {
	t.Helper()
	var rows []models.PointsLedger
	require.NoError(t, db.Where("user_id = ?", userID).Order("id").Find(&rows).Error)
	return rows
}
