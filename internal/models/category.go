package models

import "time"

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category represents a transaction category. A category with a nil UserID is
// a system default visible to every user; user-owned categories shadow nothing
// and are simply listed alongside the defaults.
type Category struct {
	Base
	UserID      *string      `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Name        string       `gorm:"not null" json:"name"`
	Type        CategoryType `gorm:"not null" json:"type"`
	Description string       `json:"description"`
	Icon        string       `json:"icon"`
	Color       string       `json:"color"`

	// Keywords drive category suggestion for free-text matching.
	Keywords []string `gorm:"serializer:json" json:"keywords,omitempty"`

	// Budget thresholds, in cents of the user's home currency.
	MonthlyBudget  int64 `gorm:"default:0" json:"monthly_budget"`
	AlertThreshold int   `gorm:"default:80" json:"alert_threshold"`

	// Usage counters, maintained alongside transaction writes.
	TransactionCount int64      `gorm:"default:0" json:"transaction_count"`
	TotalAmount      int64      `gorm:"default:0" json:"total_amount"`
	LastUsedAt       *time.Time `json:"last_used_at,omitempty"`

	Transactions []Transaction `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
}

// IsDefault reports whether the category is a system default rather than
// a user-owned one.
func (c *Category) IsDefault() bool {
	return c.UserID == nil
}
