package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/beesaferoot/rental-engine/internal/models"
)

func setupPostgresMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewStore(db), mock
}

func TestPropertyRepository_GetForUpdateLocksRow(t *testing.T) {
	store, mock := setupPostgresMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "properties" WHERE "properties"."id" = \$1 .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "title", "price_per_night", "status"}).
			AddRow(7, 3, "Loft", "120.00", "AVAILABLE"))
	mock.ExpectCommit()

	var got *models.Property
	err := store.Transaction(ctx, func(tx Repositories) error {
		var err error
		got, err = tx.Properties().GetForUpdate(ctx, 7)
		return err
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint(3), got.OwnerID)
	assert.Equal(t, "120", got.PricePerNight.String())
	assert.Equal(t, models.PropertyAvailable, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPropertyRepository_GetForUpdateMissing(t *testing.T) {
	store, mock := setupPostgresMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := store.Transaction(ctx, func(tx Repositories) error {
		p, err := tx.Properties().GetForUpdate(ctx, 99)
		require.NoError(t, err)
		assert.Nil(t, p)
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_FindActiveForPropertyQuery(t *testing.T) {
	store, mock := setupPostgresMock(t)

	mock.ExpectQuery(`SELECT \* FROM "bookings" WHERE .*property_id = \$1 AND end_date > \$2 AND status <> \$3.* ORDER BY start_date`).
		WithArgs(7, "2024-06-10", "CANCELLED").
		WillReturnRows(sqlmock.NewRows([]string{"id", "property_id", "start_date", "end_date", "status"}).
			AddRow(1, 7, "2024-06-09", "2024-06-12", "CONFIRMED"))

	found, err := store.Bookings().FindActiveForProperty(context.Background(), 7, june(10))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, june(9), found[0].StartDate)
	assert.Equal(t, models.BookingConfirmed, found[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
