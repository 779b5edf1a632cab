package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/beesaferoot/rental-engine/internal/models"
)

type BookingRepository struct {
	db *gorm.DB
}

func (r *BookingRepository) Save(ctx context.Context, booking *models.Booking) error {
	db := r.db.WithContext(ctx)
	var err error
	if booking.ID == 0 {
		err = db.Create(booking).Error
	} else {
		err = db.Save(booking).Error
	}
	if err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// FindActiveForProperty returns the non-cancelled bookings of a property
// whose end date is strictly after the given date, ordered by start date.
// These are the only bookings that can overlap a stay beginning on after.
func (r *BookingRepository) FindActiveForProperty(ctx context.Context, propertyID uint, after models.Date) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("property_id = ? AND end_date > ? AND status <> ?", propertyID, after, models.BookingCancelled).
		Order("start_date").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find active bookings for property %d: %w", propertyID, err)
	}
	return bookings, nil
}

func (r *BookingRepository) FindByRenter(ctx context.Context, renterID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := r.db.WithContext(ctx).Where("renter_id = ?", renterID).Order("start_date, id").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to find bookings for renter %d: %w", renterID, err)
	}
	return bookings, nil
}

func (r *BookingRepository) FindByProperty(ctx context.Context, propertyID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := r.db.WithContext(ctx).Where("property_id = ?", propertyID).Order("start_date, id").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to find bookings for property %d: %w", propertyID, err)
	}
	return bookings, nil
}
