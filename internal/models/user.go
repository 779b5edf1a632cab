package models

import "gorm.io/gorm"

// User is an account. Email is the login identity and the token subject;
// it is stored normalised (trimmed, lower-case).
type User struct {
	gorm.Model
	Firstname     string  `json:"firstname"`
	Lastname      string  `json:"lastname"`
	Email         string  `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash  string  `json:"-" gorm:"not null"`
	Role          Role    `json:"role" gorm:"type:varchar(20);not null;index"`
	WalletAddress *string `json:"walletAddress,omitempty" gorm:"size:128"`
}
