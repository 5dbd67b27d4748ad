// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"
)

// User represents a registered account. Users are never deleted.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password     string    `gorm:"column:hashed_password;not null" json:"-"`
	Username     string    `gorm:"size:50" json:"username"`
	Bio          string    `gorm:"type:text" json:"bio"`
	PersonalLink string    `gorm:"size:255" json:"personal_link"`
	CreatedAt    time.Time `json:"created_at"`
}

// DisplayName is the username, or the local part of the email when no username is set.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}
