package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/beesaferoot/rental-engine/internal/models"
)

// PropertyFilter narrows Search. Zero values match everything.
type PropertyFilter struct {
	Status *models.PropertyStatus
	// Query is matched case-insensitively against the address.
	Query string
}

type PropertyRepository struct {
	db *gorm.DB
}

func (r *PropertyRepository) Get(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("images.id") }).
		First(&property, id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property %d: %w", id, err)
	}
	return &property, nil
}

// GetForUpdate loads the property row with a row lock (SELECT ... FOR UPDATE)
// held until the surrounding transaction ends. Databases without row locks
// (SQLite) ignore the clause; the caller provides exclusion there.
func (r *PropertyRepository) GetForUpdate(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&property, id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock property %d: %w", id, err)
	}
	return &property, nil
}

// Save writes the property and replaces its image set.
func (r *PropertyRepository) Save(ctx context.Context, property *models.Property) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		images := property.Images
		if property.ID == 0 {
			if err := tx.Omit(clause.Associations).Create(property).Error; err != nil {
				return fmt.Errorf("failed to create property: %w", err)
			}
		} else {
			if err := tx.Omit(clause.Associations).Save(property).Error; err != nil {
				return fmt.Errorf("failed to update property %d: %w", property.ID, err)
			}
			if err := tx.Where("property_id = ?", property.ID).Delete(&models.Image{}).Error; err != nil {
				return fmt.Errorf("failed to clear images of property %d: %w", property.ID, err)
			}
		}

		saved := make([]models.Image, 0, len(images))
		for _, img := range images {
			saved = append(saved, models.Image{PropertyID: property.ID, URL: img.URL})
		}
		if len(saved) > 0 {
			if err := tx.Create(&saved).Error; err != nil {
				return fmt.Errorf("failed to save images of property %d: %w", property.ID, err)
			}
		}
		property.Images = saved
		return nil
	})
}

// Delete removes the property together with its bookings and images.
func (r *PropertyRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("property_id = ?", id).Delete(&models.Booking{}).Error; err != nil {
			return fmt.Errorf("failed to delete bookings of property %d: %w", id, err)
		}
		if err := tx.Where("property_id = ?", id).Delete(&models.Image{}).Error; err != nil {
			return fmt.Errorf("failed to delete images of property %d: %w", id, err)
		}
		if err := tx.Unscoped().Delete(&models.Property{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete property %d: %w", id, err)
		}
		return nil
	})
}

func (r *PropertyRepository) FindByOwner(ctx context.Context, ownerID uint) ([]models.Property, error) {
	return r.find(ctx, r.db.Where("owner_id = ?", ownerID))
}

func (r *PropertyRepository) FindByStatus(ctx context.Context, status models.PropertyStatus) ([]models.Property, error) {
	return r.find(ctx, r.db.Where("status = ?", status))
}

func (r *PropertyRepository) Search(ctx context.Context, filter PropertyFilter) ([]models.Property, error) {
	query := r.db
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		query = query.Where("LOWER(address) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	return r.find(ctx, query)
}

func (r *PropertyRepository) find(ctx context.Context, query *gorm.DB) ([]models.Property, error) {
	var properties []models.Property
	err := query.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("images.id") }).
		Order("id").
		Find(&properties).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}
