package gateway

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/beesaferoot/rental-engine/internal/auth"
	"github.com/beesaferoot/rental-engine/internal/models"
)

type registerRequest struct {
	Email         string  `json:"email" binding:"required,email"`
	Password      string  `json:"password" binding:"required,min=8"`
	Role          string  `json:"role" binding:"omitempty,role"`
	Firstname     string  `json:"firstname"`
	Lastname      string  `json:"lastname"`
	WalletAddress *string `json:"walletAddress"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type propertyRequest struct {
	Title         string          `json:"title" binding:"required"`
	Description   string          `json:"description"`
	Address       string          `json:"address"`
	Latitude      *float64        `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude     *float64        `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	PricePerNight decimal.Decimal `json:"pricePerNight"`
	Images        []string        `json:"images" binding:"omitempty,dive,required"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type rentalRequest struct {
	PropertyID uint   `json:"propertyId" binding:"required"`
	StartDate  string `json:"startDate" binding:"required,isodate"`
	EndDate    string `json:"endDate" binding:"required,isodate"`
}

type userResponse struct {
	ID            uint    `json:"id"`
	Email         string  `json:"email"`
	Firstname     string  `json:"firstname"`
	Lastname      string  `json:"lastname"`
	Role          string  `json:"role"`
	WalletAddress *string `json:"walletAddress,omitempty"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

type propertyResponse struct {
	ID            uint            `json:"id"`
	OwnerID       uint            `json:"ownerId"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Address       string          `json:"address"`
	Latitude      *float64        `json:"latitude"`
	Longitude     *float64        `json:"longitude"`
	PricePerNight decimal.Decimal `json:"pricePerNight"`
	Status        string          `json:"status"`
	Images        []string        `json:"images"`
}

type bookingResponse struct {
	ID         uint            `json:"id"`
	PropertyID uint            `json:"propertyId"`
	RenterID   uint            `json:"renterId"`
	StartDate  models.Date     `json:"startDate"`
	EndDate    models.Date     `json:"endDate"`
	Nights     int             `json:"nights"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Status     string          `json:"status"`
}

func toUser(u *models.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Email:         u.Email,
		Firstname:     u.Firstname,
		Lastname:      u.Lastname,
		Role:          u.Role.String(),
		WalletAddress: u.WalletAddress,
	}
}

func toSession(s *auth.Session) sessionResponse {
	return sessionResponse{Token: s.Token, ExpiresAt: s.ExpiresAt, User: toUser(s.User)}
}

func toProperty(p *models.Property) propertyResponse {
	return propertyResponse{
		ID:            p.ID,
		OwnerID:       p.OwnerID,
		Title:         p.Title,
		Description:   p.Description,
		Address:       p.Address,
		Latitude:      p.Latitude,
		Longitude:     p.Longitude,
		PricePerNight: p.PricePerNight,
		Status:        string(p.Status),
		Images:        p.ImageURLs(),
	}
}

func toProperties(ps []models.Property) []propertyResponse {
	out := make([]propertyResponse, 0, len(ps))
	for i := range ps {
		out = append(out, toProperty(&ps[i]))
	}
	return out
}

func toBooking(b *models.Booking) bookingResponse {
	return bookingResponse{
		ID:         b.ID,
		PropertyID: b.PropertyID,
		RenterID:   b.RenterID,
		StartDate:  b.StartDate,
		EndDate:    b.EndDate,
		Nights:     b.Nights(),
		TotalPrice: b.TotalPrice,
		Status:     string(b.Status),
	}
}

func toBookings(bs []models.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bs))
	for i := range bs {
		out = append(out, toBooking(&bs[i]))
	}
	return out
}
