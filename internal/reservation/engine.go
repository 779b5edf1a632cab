// Package reservation admits bookings against a property's existing
// bookings. The conflict check and the insert of a new booking happen under
// one exclusive hold per property: an in-process lock plus a transaction that
// row-locks the property, so concurrent requests for the same dates cannot
// both succeed.
package reservation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/beesaferoot/rental-engine/internal/apperr"
	"github.com/beesaferoot/rental-engine/internal/clock"
	"github.com/beesaferoot/rental-engine/internal/logging"
	"github.com/beesaferoot/rental-engine/internal/models"
	"github.com/beesaferoot/rental-engine/internal/policy"
	"github.com/beesaferoot/rental-engine/internal/repository"
)

// Request asks for the half-open stay [StartDate, EndDate) at a property.
type Request struct {
	PropertyID uint
	StartDate  models.Date
	EndDate    models.Date
}

type Engine struct {
	store    repository.Repositories
	clock    clock.Clock
	location *time.Location
	locks    *keyedMutex
	logger   *slog.Logger
}

type Option func(*Engine)

func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLocation sets the zone in which "today" is evaluated. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.location = loc
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func NewEngine(store repository.Repositories, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		clock:    clock.Real(),
		location: time.UTC,
		locks:    newKeyedMutex(),
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Today is the current calendar day in the engine's location.
func (e *Engine) Today() models.Date {
	return models.DateOf(e.clock.Now().In(e.location))
}

// Quote is the exact price of staying from start to end at price per night.
func Quote(pricePerNight decimal.Decimal, start, end models.Date) decimal.Decimal {
	return pricePerNight.Mul(decimal.NewFromInt(int64(models.NightsBetween(start, end))))
}

// ValidateDates checks the requested range against today. It never touches
// storage.
func (e *Engine) ValidateDates(start, end models.Date) error {
	if start.IsZero() || end.IsZero() {
		return apperr.InvalidInput("start and end dates are required")
	}
	if start.Before(e.Today()) || end.Before(start.AddDays(1)) {
		return apperr.ErrInvalidDateRange
	}
	return nil
}

// CreateBooking admits a booking for caller. Checks run in a fixed order and
// the first failure is returned: date range, property existence, self
// booking, property status, then date conflicts. The caller's role is
// expected to have been authorized already.
func (e *Engine) CreateBooking(ctx context.Context, caller policy.Identity, req Request) (*models.Booking, error) {
	if err := e.ValidateDates(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	unlock, err := e.locks.Lock(ctx, req.PropertyID)
	if err != nil {
		return nil, apperr.Internal(err, "waiting for property lock")
	}
	defer unlock()

	var booking *models.Booking
	err = e.store.Transaction(ctx, func(tx repository.Repositories) error {
		property, err := tx.Properties().GetForUpdate(ctx, req.PropertyID)
		if err != nil {
			return apperr.Internal(err, "loading property %d", req.PropertyID)
		}
		if property == nil {
			return apperr.ErrPropertyNotFound
		}
		if property.IsOwnedBy(caller.UserID) {
			return apperr.ErrSelfBookingForbidden
		}
		if property.Status != models.PropertyAvailable {
			return apperr.ErrPropertyUnavailable
		}

		existing, err := tx.Bookings().FindActiveForProperty(ctx, property.ID, req.StartDate)
		if err != nil {
			return apperr.Internal(err, "loading bookings of property %d", property.ID)
		}
		for i := range existing {
			if existing[i].Overlaps(req.StartDate, req.EndDate) {
				e.logger.InfoContext(ctx, "booking rejected",
					"property_id", property.ID,
					"conflicting_booking_id", existing[i].ID,
					"start", req.StartDate.String(),
					"end", req.EndDate.String(),
				)
				return apperr.ErrDateConflict
			}
		}

		booking = &models.Booking{
			PropertyID: property.ID,
			RenterID:   caller.UserID,
			StartDate:  req.StartDate,
			EndDate:    req.EndDate,
			TotalPrice: Quote(property.PricePerNight, req.StartDate, req.EndDate),
			Status:     models.BookingPendingConfirmation,
		}
		if err := tx.Bookings().Save(ctx, booking); err != nil {
			return apperr.Internal(err, "saving booking")
		}
		return nil
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperr.Internal(err, "booking transaction")
	}

	e.logger.InfoContext(ctx, "booking created",
		"booking_id", booking.ID,
		"property_id", booking.PropertyID,
		"renter_id", booking.RenterID,
		"nights", booking.Nights(),
		"total_price", booking.TotalPrice.String(),
	)
	return booking, nil
}

// ListForRenter returns the caller's own bookings.
func (e *Engine) ListForRenter(ctx context.Context, caller policy.Identity) ([]models.Booking, error) {
	bookings, err := e.store.Bookings().FindByRenter(ctx, caller.UserID)
	if err != nil {
		return nil, apperr.Internal(err, "listing bookings of renter %d", caller.UserID)
	}
	return bookings, nil
}

// ListForProperty returns every booking of a property. Only the owner and
// administrators may see them.
func (e *Engine) ListForProperty(ctx context.Context, caller policy.Identity, propertyID uint) ([]models.Booking, error) {
	property, err := e.store.Properties().Get(ctx, propertyID)
	if err != nil {
		return nil, apperr.Internal(err, "loading property %d", propertyID)
	}
	if property == nil {
		return nil, apperr.ErrPropertyNotFound
	}
	if err := policy.Check(ctx, e.logger, caller, policy.ActionViewPropertyBookings, property.OwnerID); err != nil {
		return nil, err
	}
	bookings, err := e.store.Bookings().FindByProperty(ctx, propertyID)
	if err != nil {
		return nil, apperr.Internal(err, "listing bookings of property %d", propertyID)
	}
	return bookings, nil
}
