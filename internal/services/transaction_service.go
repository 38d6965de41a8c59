package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/events"
	"moneta/internal/models"
	"moneta/internal/money"
	"moneta/internal/pagination"
)

// pointsPerTransaction is awarded for every recorded transaction.
const pointsPerTransaction = 10

// transactionService handles transaction-related business logic.
type transactionService struct {
	db              *gorm.DB
	categoryService CategoryServicer
	userService     UserServicer
	publisher       events.Publisher
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, categoryService CategoryServicer, userService UserServicer, publisher events.Publisher) TransactionServicer {
	return &transactionService{
		db:              db,
		categoryService: categoryService,
		userService:     userService,
		publisher:       publisher,
	}
}

// CreateTransaction records a new transaction. The transaction row, the
// category usage counters, and the user's activity points are written in
// one database transaction; the change event is published only after the
// commit succeeds.
func (s *transactionService) CreateTransaction(userID string, input TransactionInput) (*models.Transaction, error) {
	user, err := s.userService.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	transaction, err := s.buildTransaction(userID, user.HomeCurrency, input)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.createWithinTx(tx, userID, transaction)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishTransactionEvent(userID, events.TransactionAdded, transaction.ID, transaction.Version)
	return transaction, nil
}

// createWithinTx persists a prepared transaction and its side effects
// inside an open database transaction.
func (s *transactionService) createWithinTx(tx *gorm.DB, userID string, transaction *models.Transaction) error {
	if err := tx.Create(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.categoryService.RecordUsage(tx, transaction.CategoryID, transaction.BaseAmount, transaction.Date); err != nil {
		return err
	}
	return s.userService.AwardPoints(tx, userID, pointsPerTransaction)
}

// buildTransaction validates an input and assembles an unsaved transaction
// with its base amount and recurring schedule computed.
func (s *transactionService) buildTransaction(userID, homeCurrency string, input TransactionInput) (*models.Transaction, error) {
	if input.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if input.Title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}
	if input.Type != models.TransactionTypeIncome && input.Type != models.TransactionTypeExpense {
		return nil, apperrors.ErrInvalidTransactionType
	}

	status := input.Status
	if status == "" {
		status = models.TransactionStatusCompleted
	}
	switch status {
	case models.TransactionStatusCompleted, models.TransactionStatusPending, models.TransactionStatusCancelled:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid transaction status")
	}

	category, err := s.categoryService.GetCategoryByID(userID, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if string(category.Type) != string(input.Type) {
		return nil, apperrors.ErrCategoryTypeMatch
	}

	currency := input.Currency
	if currency == "" {
		currency = homeCurrency
	}
	rate := input.ExchangeRate
	if rate == 0 {
		rate = 1
	}
	if rate < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "exchange rate must be positive")
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	transaction := &models.Transaction{
		UserID:        userID,
		CategoryID:    category.ID,
		Title:         input.Title,
		Description:   input.Description,
		Type:          input.Type,
		Status:        status,
		Amount:        input.Amount,
		Currency:      currency,
		ExchangeRate:  rate,
		BaseAmount:    money.BaseAmount(input.Amount, currency, homeCurrency, rate),
		PaymentMethod: input.PaymentMethod,
		Tags:          input.Tags,
		Date:          date,
		Notes:         input.Notes,
		Version:       1,
	}

	if input.IsRecurring {
		interval := input.Interval
		if interval < 1 {
			interval = 1
		}
		transaction.Recurring = models.Recurring{
			IsRecurring: true,
			Frequency:   input.Frequency,
			Interval:    interval,
			NextDate:    nextOccurrence(date, input.Frequency, interval),
		}
	}

	return transaction, nil
}

// GetUserTransactions retrieves a paginated, filtered list of the user's
// transactions, newest first. Soft-deleted rows are excluded.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Preload("Category").Scopes(pagination.Paginate(page)).
		Order("date DESC, created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.PaymentMethod != nil {
		q = q.Where("payment_method = ?", *f.PaymentMethod)
	}
	if f.Search != nil && *f.Search != "" {
		needle := "%" + strings.ToLower(*f.Search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", needle, needle)
	}
	for _, tag := range f.Tags {
		// Tags are stored as a JSON array of strings.
		q = q.Where("tags LIKE ?", fmt.Sprintf(`%%"%s"%%`, tag))
	}
	if f.MinAmount != nil {
		q = q.Where("base_amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("base_amount <= ?", *f.MaxAmount)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Category").
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies a partial update, recomputing the base amount
// and bumping the version.
func (s *transactionService) UpdateTransaction(userID, transactionID string, update TransactionUpdate) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	user, err := s.userService.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if update.CategoryID != nil && *update.CategoryID != transaction.CategoryID {
		category, err := s.categoryService.GetCategoryByID(userID, *update.CategoryID)
		if err != nil {
			return nil, err
		}
		if string(category.Type) != string(transaction.Type) {
			return nil, apperrors.ErrCategoryTypeMatch
		}
		updates["category_id"] = category.ID
	}
	if update.Title != nil {
		if *update.Title == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title cannot be empty")
		}
		updates["title"] = *update.Title
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.Status != nil {
		updates["status"] = *update.Status
	}
	if update.PaymentMethod != nil {
		updates["payment_method"] = *update.PaymentMethod
	}
	if update.Tags != nil {
		// Map-based updates skip the model's JSON serializer.
		tagsJSON, err := json.Marshal(update.Tags)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		updates["tags"] = string(tagsJSON)
	}
	if update.Date != nil {
		updates["date"] = *update.Date
	}
	if update.Notes != nil {
		updates["notes"] = *update.Notes
	}

	// Monetary fields: any change recomputes the base amount.
	amount := transaction.Amount
	currency := transaction.Currency
	rate := transaction.ExchangeRate
	if update.Amount != nil {
		if *update.Amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		amount = *update.Amount
		updates["amount"] = amount
	}
	if update.Currency != nil {
		currency = *update.Currency
		updates["currency"] = currency
	}
	if update.ExchangeRate != nil {
		if *update.ExchangeRate <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "exchange rate must be positive")
		}
		rate = *update.ExchangeRate
		updates["exchange_rate"] = rate
	}
	updates["base_amount"] = money.BaseAmount(amount, currency, user.HomeCurrency, rate)

	if err := s.db.Model(transaction).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	updated, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishTransactionEvent(userID, events.TransactionUpdated, updated.ID, updated.Version)
	return updated, nil
}

// DeleteTransaction soft-deletes a transaction. The row is retained and
// can be restored.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publisher.PublishTransactionEvent(userID, events.TransactionDeleted, transaction.ID, transaction.Version)
	return nil
}

// RestoreTransaction reinstates a soft-deleted transaction exactly as it
// was before deletion.
func (s *transactionService) RestoreTransaction(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Unscoped().
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !transaction.DeletedAt.Valid {
		return nil, apperrors.ErrTransactionNotDeleted
	}

	// UpdateColumn skips hooks so the version stays untouched.
	if err := s.db.Unscoped().Model(&transaction).UpdateColumn("deleted_at", nil).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	restored, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishTransactionEvent(userID, events.TransactionAdded, restored.ID, restored.Version)
	return restored, nil
}

// BulkImport validates each input row, then inserts every valid row in a
// single database transaction. Row failures do not abort the import; they
// are reported per index in the result.
func (s *transactionService) BulkImport(userID string, inputs []TransactionInput) (*ImportResult, error) {
	if len(inputs) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "no transactions to import")
	}

	user, err := s.userService.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	valid := make([]*models.Transaction, 0, len(inputs))
	for i, input := range inputs {
		transaction, err := s.buildTransaction(userID, user.HomeCurrency, input)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportError{Index: i, Message: err.Error()})
			continue
		}
		valid = append(valid, transaction)
	}

	if len(valid) > 0 {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			for _, transaction := range valid {
				if err := s.createWithinTx(tx, userID, transaction); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		for _, transaction := range valid {
			s.publisher.PublishTransactionEvent(userID, events.TransactionAdded, transaction.ID, transaction.Version)
		}
	}

	result.Imported = len(valid)
	return result, nil
}
