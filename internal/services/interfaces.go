package services

import (
	"time"

	"gorm.io/gorm"

	"moneta/internal/models"
	"moneta/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName, homeCurrency string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	AwardPoints(tx *gorm.DB, userID string, points int) error
	StoreRefreshTokenHash(userID string, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID string, name string, categoryType models.CategoryType, description, icon, color string, keywords []string, monthlyBudget int64) (*models.Category, error)
	SeedDefaultCategories(tx *gorm.DB, userID string) error
	GetUserCategories(userID string, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, name, description, icon, color string, keywords []string, monthlyBudget *int64) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
	SuggestCategories(userID, query string, categoryType models.CategoryType) ([]models.Category, error)
	RecordUsage(tx *gorm.DB, categoryID string, baseAmount int64, usedAt time.Time) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate      *time.Time
	ToDate        *time.Time
	Type          *models.TransactionType
	Status        *models.TransactionStatus
	CategoryID    *string
	PaymentMethod *string
	Search        *string
	Tags          []string
	MinAmount     *int64
	MaxAmount     *int64
}

// TransactionInput carries the fields accepted when creating or importing
// a transaction.
type TransactionInput struct {
	CategoryID    string
	Title         string
	Description   string
	Type          models.TransactionType
	Status        models.TransactionStatus
	Amount        int64
	Currency      string
	ExchangeRate  float64
	PaymentMethod string
	Tags          []string
	Date          time.Time
	Notes         string
	IsRecurring   bool
	Frequency     models.RecurringFrequency
	Interval      int
}

// TransactionUpdate carries optional fields for updating a transaction.
// Nil fields are left unchanged.
type TransactionUpdate struct {
	CategoryID    *string
	Title         *string
	Description   *string
	Amount        *int64
	Currency      *string
	ExchangeRate  *float64
	Status        *models.TransactionStatus
	PaymentMethod *string
	Tags          []string
	Date          *time.Time
	Notes         *string
}

// ImportResult reports the outcome of a bulk import.
type ImportResult struct {
	Imported int           `json:"imported"`
	Failed   int           `json:"failed"`
	Errors   []ImportError `json:"errors,omitempty"`
}

// ImportError describes why a single row of a bulk import was rejected.
type ImportError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, input TransactionInput) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, update TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	RestoreTransaction(userID, transactionID string) (*models.Transaction, error)
	BulkImport(userID string, inputs []TransactionInput) (*ImportResult, error)
}

// RecurringServicer defines the contract for recurring-transaction advancement.
type RecurringServicer interface {
	NextDate(from time.Time, frequency models.RecurringFrequency, interval int) *time.Time
	CreateNextOccurrence(userID, transactionID string) (*models.Transaction, error)
	ProcessDue(now time.Time) (int, error)
}

// CategoryTotal is one row of the category-wise breakdown, joined with the
// category's display metadata.
type CategoryTotal struct {
	CategoryID       string `json:"category_id"`
	Name             string `json:"name"`
	Icon             string `json:"icon"`
	Color            string `json:"color"`
	TotalAmount      int64  `json:"total_amount"`
	TransactionCount int64  `json:"transaction_count"`
}

// Overview aggregates a date range into headline totals plus per-category
// breakdowns. All sums are over base_amount.
type Overview struct {
	TotalIncome       int64           `json:"total_income"`
	TotalExpenses     int64           `json:"total_expenses"`
	Net               int64           `json:"net"`
	IncomeCount       int64           `json:"income_count"`
	ExpenseCount      int64           `json:"expense_count"`
	CategoryBreakdown []CategoryTotal `json:"category_breakdown"`
	IncomeBreakdown   []CategoryTotal `json:"income_breakdown"`
}

// MonthlyTotal is one (type, year, month) bucket of the trends series.
type MonthlyTotal struct {
	Type    models.TransactionType `json:"type"`
	Year    int                    `json:"year"`
	Month   int                    `json:"month"`
	Total   int64                  `json:"total"`
	Count   int64                  `json:"count"`
	Average float64                `json:"average"`
}

// AnalyticsServicer defines the contract for transaction aggregation.
type AnalyticsServicer interface {
	GetOverview(userID string, from, to time.Time) (*Overview, error)
	GetTrends(userID string, from, to time.Time, txType *models.TransactionType) ([]MonthlyTotal, error)
	GetCategoryTotals(userID string, txType models.TransactionType, from, to time.Time) ([]CategoryTotal, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID string, action, resourceType string, resourceID string, ipAddress string, changes map[string]interface{})
}
