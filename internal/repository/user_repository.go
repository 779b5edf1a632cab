package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/beesaferoot/rental-engine/internal/apperr"
	"github.com/beesaferoot/rental-engine/internal/models"
)

type UserRepository struct {
	db *gorm.DB
}

// FindByEmail matches the stored email exactly.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user %d: %w", id, err)
	}
	return &user, nil
}

func (r *UserRepository) FindByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Where("role = ?", role).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to find users by role: %w", err)
	}
	return users, nil
}

// Save inserts a new user or updates an existing one. A unique-index
// violation on email is reported as apperr.ErrDuplicateEmail.
func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	db := r.db.WithContext(ctx)
	var err error
	if user.ID == 0 {
		err = db.Create(user).Error
	} else {
		err = db.Save(user).Error
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.ErrDuplicateEmail.Wrap(err)
	}
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}
