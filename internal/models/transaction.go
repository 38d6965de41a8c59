package models

import (
	"time"

	"gorm.io/gorm"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// TransactionStatus represents the lifecycle status of a transaction.
// Only completed transactions count towards analytics.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// RecurringFrequency represents how often a recurring transaction repeats.
type RecurringFrequency string

const (
	FrequencyDaily   RecurringFrequency = "daily"
	FrequencyWeekly  RecurringFrequency = "weekly"
	FrequencyMonthly RecurringFrequency = "monthly"
	FrequencyYearly  RecurringFrequency = "yearly"
)

// Recurring holds the recurrence sub-record embedded in a transaction.
// ParentTransactionID links generated occurrences back to the head of the
// chain; the chain stays flat, children never become parents themselves.
type Recurring struct {
	IsRecurring         bool               `gorm:"default:false" json:"is_recurring"`
	Frequency           RecurringFrequency `json:"frequency,omitempty"`
	Interval            int                `gorm:"default:1" json:"interval,omitempty"`
	NextDate            *time.Time         `json:"next_date,omitempty"`
	ParentTransactionID *string            `gorm:"type:uuid;index" json:"parent_transaction_id,omitempty"`
}

// Transaction represents a financial transaction in the system.
// Amount and BaseAmount are in cents; BaseAmount is the value converted to
// the user's home currency and is what every aggregate sums over.
type Transaction struct {
	Base
	UserID      string            `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID  string            `gorm:"type:uuid;not null;index" json:"category_id"`
	Title       string            `gorm:"not null" json:"title"`
	Description string            `json:"description"`
	Type        TransactionType   `gorm:"not null" json:"type"`
	Status      TransactionStatus `gorm:"not null;default:'completed'" json:"status"`

	Amount       int64   `gorm:"not null" json:"amount"`
	Currency     string  `gorm:"size:3;not null;default:'USD'" json:"currency"`
	ExchangeRate float64 `gorm:"not null;default:1" json:"exchange_rate"`
	BaseAmount   int64   `gorm:"not null" json:"base_amount"`

	PaymentMethod string    `json:"payment_method,omitempty"`
	Tags          []string  `gorm:"serializer:json" json:"tags,omitempty"`
	Date          time.Time `gorm:"not null;index" json:"date"`
	Notes         string    `json:"notes,omitempty"`

	Recurring Recurring `gorm:"embedded;embeddedPrefix:recurring_" json:"recurring"`

	// Version is incremented on every update for optimistic client reconciliation.
	Version int `gorm:"default:1" json:"version"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// BeforeUpdate hook bumps the version counter on every update.
func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	tx.Statement.SetColumn("version", t.Version+1)
	return nil
}
