package models

import "time"

// VerificationCode is the database fallback for pending email verification codes.
type VerificationCode struct {
	Email     string    `gorm:"primaryKey;size:255"`
	Code      string    `gorm:"size:6;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	UpdatedAt time.Time
}
