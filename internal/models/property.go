package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Property is a rentable listing. It owns its images and bookings: both are
// removed in the same transaction as the property.
type Property struct {
	gorm.Model
	OwnerID       uint            `json:"ownerId" gorm:"not null;index"`
	Title         string          `json:"title" gorm:"not null"`
	Description   string          `json:"description" gorm:"type:text"`
	Address       string          `json:"address"`
	Latitude      *float64        `json:"latitude"`
	Longitude     *float64        `json:"longitude"`
	PricePerNight decimal.Decimal `json:"pricePerNight" gorm:"type:numeric(12,2);not null"`
	Status        PropertyStatus  `json:"status" gorm:"type:varchar(32);not null;index"`
	Images        []Image         `json:"images" gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
}

// IsOwnedBy reports whether userID is the owner of record.
func (p *Property) IsOwnedBy(userID uint) bool {
	return p.OwnerID != 0 && p.OwnerID == userID
}

// ImageURLs flattens the image rows.
func (p *Property) ImageURLs() []string {
	urls := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		urls = append(urls, img.URL)
	}
	return urls
}

// Image is a picture of a property, addressed by id and owned by the property.
type Image struct {
	ID         uint   `json:"id" gorm:"primarykey"`
	PropertyID uint   `json:"-" gorm:"not null;index"`
	URL        string `json:"url" gorm:"size:1024;not null"`
}
