package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/services"
)

// AnalyticsHandler handles transaction aggregation requests
type AnalyticsHandler struct {
	analyticsService services.AnalyticsServicer
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService services.AnalyticsServicer) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// dateRange resolves the from/to query parameters, defaulting to the
// current calendar month.
func dateRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

	from, err := parseDateQuery(c, "from", monthStart)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDateQuery(c, "to", monthEnd)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "to must not be before from")
	}
	return from, to, nil
}

// GetOverview returns headline totals and category breakdowns for a range
// @Summary     Analytics overview
// @Description Total income, total expenses, net, counts, and per-category breakdowns for a date range
// @Tags        analytics
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       from query string false "Start date (YYYY-MM-DD), defaults to start of current month"
// @Param       to query string false "End date (YYYY-MM-DD), defaults to end of current month"
// @Success     200 {object} services.Overview "Overview"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions/analytics/overview [get]
func (h *AnalyticsHandler) GetOverview(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	from, to, err := dateRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	overview, err := h.analyticsService.GetOverview(userID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Overview retrieved", overview)
}

// GetTrends returns monthly totals for a range
// @Summary     Analytics trends
// @Description Monthly totals grouped by type, year, and month for a date range
// @Tags        analytics
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       from query string false "Start date (YYYY-MM-DD), defaults to start of current month"
// @Param       to query string false "End date (YYYY-MM-DD), defaults to end of current month"
// @Param       type query string false "Transaction type (income or expense)"
// @Success     200 {array} services.MonthlyTotal "Monthly totals"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions/analytics/trends [get]
func (h *AnalyticsHandler) GetTrends(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	from, to, err := dateRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var txType *models.TransactionType
	if raw := c.Query("type"); raw != "" {
		tt := models.TransactionType(raw)
		if tt != models.TransactionTypeIncome && tt != models.TransactionTypeExpense {
			respondWithError(c, apperrors.ErrInvalidTransactionType)
			return
		}
		txType = &tt
	}

	trends, err := h.analyticsService.GetTrends(userID, from, to, txType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Trends retrieved", gin.H{"trends": trends})
}
