// Package repository implements the persistence contracts of the rental
// engine on gorm. Lookups that find nothing return (nil, nil); callers decide
// whether absence is an error.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/beesaferoot/rental-engine/internal/models"
)

// UserStore is the credential repository.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByRole(ctx context.Context, role models.Role) ([]models.User, error)
	Save(ctx context.Context, user *models.User) error
}

// PropertyStore is the property repository.
type PropertyStore interface {
	Get(ctx context.Context, id uint) (*models.Property, error)
	GetForUpdate(ctx context.Context, id uint) (*models.Property, error)
	Save(ctx context.Context, property *models.Property) error
	Delete(ctx context.Context, id uint) error
	FindByOwner(ctx context.Context, ownerID uint) ([]models.Property, error)
	FindByStatus(ctx context.Context, status models.PropertyStatus) ([]models.Property, error)
	Search(ctx context.Context, filter PropertyFilter) ([]models.Property, error)
}

// BookingStore is the booking repository.
type BookingStore interface {
	Save(ctx context.Context, booking *models.Booking) error
	FindActiveForProperty(ctx context.Context, propertyID uint, after models.Date) ([]models.Booking, error)
	FindByRenter(ctx context.Context, renterID uint) ([]models.Booking, error)
	FindByProperty(ctx context.Context, propertyID uint) ([]models.Booking, error)
}

// Repositories groups the stores and the unit-of-work boundary.
type Repositories interface {
	Users() UserStore
	Properties() PropertyStore
	Bookings() BookingStore
	// Transaction runs fn against stores bound to one database transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(tx Repositories) error) error
}

// Store is the gorm-backed Repositories.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for migrations and health checks.
func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Users() UserStore          { return &UserRepository{db: s.db} }
func (s *Store) Properties() PropertyStore { return &PropertyRepository{db: s.db} }
func (s *Store) Bookings() BookingStore    { return &BookingRepository{db: s.db} }

func (s *Store) Transaction(ctx context.Context, fn func(tx Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
