package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Booking reserves the half-open date range [StartDate, EndDate) of a
// property. EndDate is the checkout day and is never occupied.
type Booking struct {
	gorm.Model
	PropertyID           uint            `json:"propertyId" gorm:"not null;index:idx_bookings_property_end,priority:1"`
	RenterID             uint            `json:"renterId" gorm:"not null;index"`
	StartDate            Date            `json:"startDate" gorm:"type:date;not null"`
	EndDate              Date            `json:"endDate" gorm:"type:date;not null;index:idx_bookings_property_end,priority:2"`
	TotalPrice           decimal.Decimal `json:"totalPrice" gorm:"type:numeric(12,2);not null"`
	Status               BookingStatus   `json:"status" gorm:"type:varchar(32);not null;index"`
	SmartContractAddress *string         `json:"smartContractAddress,omitempty" gorm:"size:128"`
}

// Overlaps applies the half-open interval rule: [s1,e1) and [s2,e2)
// intersect iff s1 < e2 and s2 < e1.
func (b *Booking) Overlaps(start, end Date) bool {
	return b.StartDate.Before(end) && start.Before(b.EndDate)
}

// Nights is the number of nights covered by the booking.
func (b *Booking) Nights() int {
	return NightsBetween(b.StartDate, b.EndDate)
}
