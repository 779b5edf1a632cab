package models

import (
	"fmt"
	"strings"
)

// PropertyStatus is the listing-level lifecycle of a property.
type PropertyStatus string

const (
	PropertyPendingValidation PropertyStatus = "PENDING_VALIDATION"
	PropertyAvailable         PropertyStatus = "AVAILABLE"
	PropertyRented            PropertyStatus = "RENTED"
)

// ParsePropertyStatus is case-insensitive.
func ParsePropertyStatus(s string) (PropertyStatus, error) {
	status := PropertyStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("invalid property status %q", s)
	}
	return status, nil
}

func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyPendingValidation, PropertyAvailable, PropertyRented:
		return true
	}
	return false
}

// BookingStatus tracks a booking after admission. Only
// BookingPendingConfirmation is produced by the reservation engine.
type BookingStatus string

const (
	BookingPendingConfirmation BookingStatus = "PENDING_CONFIRMATION"
	BookingConfirmed           BookingStatus = "CONFIRMED"
	BookingCancelled           BookingStatus = "CANCELLED"
	BookingCompleted           BookingStatus = "COMPLETED"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPendingConfirmation, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}
