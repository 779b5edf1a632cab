// Package testdb opens migrated SQLite databases for tests and seeds them.
package testdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/beesaferoot/rental-engine/internal/database"
	"github.com/beesaferoot/rental-engine/internal/migration"
	"github.com/beesaferoot/rental-engine/internal/models"
)

// Open returns a file-backed SQLite database in t.TempDir with every
// migration applied. It is closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	_, err = migration.NewMigrator(db).Up()
	require.NoError(t, err)
	return db
}

// User inserts a user with a placeholder password hash.
func User(t testing.TB, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Firstname:    "Test",
		Lastname:     role.String(),
		Email:        email,
		PasswordHash: "not-a-real-hash",
		Role:         role,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(u).Error)
	return u
}

// Property inserts a property owned by ownerID.
func Property(t testing.TB, db *gorm.DB, ownerID uint, price string, status models.PropertyStatus) *models.Property {
	t.Helper()
	p := &models.Property{
		OwnerID:       ownerID,
		Title:         "Flat",
		Address:       "1 Main Street, Lyon",
		PricePerNight: decimal.RequireFromString(price),
		Status:        status,
	}
	require.NoError(t, db.Omit("Images").Create(p).Error)
	return p
}

// Booking inserts a booking without any admission checks.
func Booking(t testing.TB, db *gorm.DB, propertyID, renterID uint, start, end models.Date, status models.BookingStatus) *models.Booking {
	t.Helper()
	b := &models.Booking{
		PropertyID: propertyID,
		RenterID:   renterID,
		StartDate:  start,
		EndDate:    end,
		TotalPrice: decimal.Zero,
		Status:     status,
	}
	require.NoError(t, db.Create(b).Error)
	return b
}
