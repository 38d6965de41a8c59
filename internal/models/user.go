package models

import "time"

// User represents the user model in the database
type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Password     string `gorm:"not null" json:"-"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	HomeCurrency string `gorm:"size:3;not null;default:'USD'" json:"home_currency"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`

	// Security lockout state
	RefreshTokenHash    string     `gorm:"size:64" json:"-"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`

	// Gamification counters
	Points           int        `gorm:"default:0" json:"points"`
	Level            int        `gorm:"default:1" json:"level"`
	Streak           int        `gorm:"default:0" json:"streak"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`

	Categories   []Category    `gorm:"foreignKey:UserID" json:"categories,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
}
