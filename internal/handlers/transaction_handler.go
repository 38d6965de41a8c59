package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/services"
)

// TransactionHandler handles transaction-related requests
type TransactionHandler struct {
	transactionService services.TransactionServicer
	recurringService   services.RecurringServicer
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService services.TransactionServicer, recurringService services.RecurringServicer) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		recurringService:   recurringService,
	}
}

// CreateTransactionRequest represents the request payload for recording a transaction
type CreateTransactionRequest struct {
	CategoryID    string                    `json:"category_id" binding:"required"`
	Title         string                    `json:"title" binding:"required,max=200"`
	Description   string                    `json:"description" binding:"max=1000"`
	Type          models.TransactionType    `json:"type" binding:"required,transaction_type"`
	Status        models.TransactionStatus  `json:"status" binding:"omitempty,transaction_status"`
	Amount        int64                     `json:"amount" binding:"required,gt=0"`
	Currency      string                    `json:"currency" binding:"omitempty,iso4217"`
	ExchangeRate  float64                   `json:"exchange_rate" binding:"omitempty,gt=0"`
	PaymentMethod string                    `json:"payment_method" binding:"omitempty,payment_method"`
	Tags          []string                  `json:"tags"`
	Date          time.Time                 `json:"date"`
	Notes         string                    `json:"notes" binding:"max=1000"`
	IsRecurring   bool                      `json:"is_recurring"`
	Frequency     models.RecurringFrequency `json:"frequency" binding:"omitempty,recurring_frequency"`
	Interval      int                       `json:"interval" binding:"omitempty,min=1"`
}

// UpdateTransactionRequest represents the request payload for updating a transaction
type UpdateTransactionRequest struct {
	CategoryID    *string                   `json:"category_id"`
	Title         *string                   `json:"title" binding:"omitempty,max=200"`
	Description   *string                   `json:"description" binding:"omitempty,max=1000"`
	Amount        *int64                    `json:"amount" binding:"omitempty,gt=0"`
	Currency      *string                   `json:"currency" binding:"omitempty,iso4217"`
	ExchangeRate  *float64                  `json:"exchange_rate" binding:"omitempty,gt=0"`
	Status        *models.TransactionStatus `json:"status" binding:"omitempty,transaction_status"`
	PaymentMethod *string                   `json:"payment_method" binding:"omitempty,payment_method"`
	Tags          []string                  `json:"tags"`
	Date          *time.Time                `json:"date"`
	Notes         *string                   `json:"notes" binding:"omitempty,max=1000"`
}

// BulkImportRequest represents the request payload for a bulk import
type BulkImportRequest struct {
	Transactions []CreateTransactionRequest `json:"transactions" binding:"required,min=1,max=500,dive"`
}

func (r *CreateTransactionRequest) toInput() services.TransactionInput {
	return services.TransactionInput{
		CategoryID:    r.CategoryID,
		Title:         r.Title,
		Description:   r.Description,
		Type:          r.Type,
		Status:        r.Status,
		Amount:        r.Amount,
		Currency:      r.Currency,
		ExchangeRate:  r.ExchangeRate,
		PaymentMethod: r.PaymentMethod,
		Tags:          r.Tags,
		Date:          r.Date,
		Notes:         r.Notes,
		IsRecurring:   r.IsRecurring,
		Frequency:     r.Frequency,
		Interval:      r.Interval,
	}
}

// CreateTransaction records a new transaction
// @Summary     Record a transaction
// @Description Record a new income or expense transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.CreateTransaction(userID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Transaction recorded", transaction)
}

// listFilter binds the supported query filters for listing transactions.
type listFilter struct {
	Type          *models.TransactionType   `form:"type" binding:"omitempty,transaction_type"`
	Status        *models.TransactionStatus `form:"status" binding:"omitempty,transaction_status"`
	CategoryID    *string                   `form:"category_id"`
	PaymentMethod *string                   `form:"payment_method" binding:"omitempty,payment_method"`
	Search        *string                   `form:"search"`
	Tags          []string                  `form:"tags"`
	MinAmount     *int64                    `form:"min_amount"`
	MaxAmount     *int64                    `form:"max_amount"`
}

// ListTransactions returns the user's transactions
// @Summary     List transactions
// @Description List the user's transactions newest first, with optional filters
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       type query string false "Transaction type (income or expense)"
// @Param       status query string false "Transaction status"
// @Param       category_id query string false "Category ID"
// @Param       payment_method query string false "Payment method"
// @Param       search query string false "Text search over title and description"
// @Param       tags query []string false "Tags (all must match)"
// @Param       min_amount query int false "Minimum base amount in cents"
// @Param       max_amount query int false "Maximum base amount in cents"
// @Param       from query string false "Start date (YYYY-MM-DD)"
// @Param       to query string false "End date (YYYY-MM-DD)"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} map[string]interface{} "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var qf listFilter
	if err := c.ShouldBindQuery(&qf); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.TransactionFilter{
		Type:          qf.Type,
		Status:        qf.Status,
		CategoryID:    qf.CategoryID,
		PaymentMethod: qf.PaymentMethod,
		Search:        qf.Search,
		Tags:          qf.Tags,
		MinAmount:     qf.MinAmount,
		MaxAmount:     qf.MaxAmount,
	}
	if raw := c.Query("from"); raw != "" {
		from, err := parseDateQuery(c, "from", time.Time{})
		if err != nil {
			respondWithError(c, err)
			return
		}
		filter.FromDate = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := parseDateQuery(c, "to", time.Time{})
		if err != nil {
			respondWithError(c, err)
			return
		}
		filter.ToDate = &to
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Transactions retrieved", result)
}

// GetTransaction returns a single transaction
// @Summary     Get a transaction
// @Description Get one of the user's transactions by ID
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Transaction retrieved", transaction)
}

// UpdateTransaction handles updating a transaction
// @Summary     Update a transaction
// @Description Apply a partial update to one of the user's transactions
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} models.Transaction "Transaction updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, c.Param("id"), services.TransactionUpdate{
		CategoryID:    req.CategoryID,
		Title:         req.Title,
		Description:   req.Description,
		Amount:        req.Amount,
		Currency:      req.Currency,
		ExchangeRate:  req.ExchangeRate,
		Status:        req.Status,
		PaymentMethod: req.PaymentMethod,
		Tags:          req.Tags,
		Date:          req.Date,
		Notes:         req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Transaction updated", transaction)
}

// DeleteTransaction handles deleting a transaction
// @Summary     Delete a transaction
// @Description Soft-delete one of the user's transactions. It can be restored later.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} map[string]interface{} "Transaction deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Transaction deleted", nil)
}

// RestoreTransaction reinstates a soft-deleted transaction
// @Summary     Restore a transaction
// @Description Reinstate a soft-deleted transaction exactly as it was
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction restored"
// @Failure     400 {object} ErrorResponse "Transaction is not deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id}/restore [post]
func (h *TransactionHandler) RestoreTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.RestoreTransaction(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Transaction restored", transaction)
}

// AdvanceTransaction creates the next occurrence of a recurring transaction
// @Summary     Advance a recurring transaction
// @Description Clone the next occurrence of a recurring transaction and roll its schedule forward
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     201 {object} models.Transaction "Next occurrence created"
// @Failure     400 {object} ErrorResponse "Transaction is not recurring"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id}/advance [post]
func (h *TransactionHandler) AdvanceTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.recurringService.CreateNextOccurrence(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Next occurrence created", transaction)
}

// BulkImportTransactions imports a batch of transactions
// @Summary     Bulk import transactions
// @Description Import a batch of transactions. Valid rows are inserted atomically, invalid rows are reported per index.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BulkImportRequest true "Transactions to import"
// @Success     200 {object} services.ImportResult "Import result"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/bulk-import [post]
func (h *TransactionHandler) BulkImportTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	inputs := make([]services.TransactionInput, 0, len(req.Transactions))
	for i := range req.Transactions {
		inputs = append(inputs, req.Transactions[i].toInput())
	}

	result, err := h.transactionService.BulkImport(userID, inputs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Import complete", result)
}
