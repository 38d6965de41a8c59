package services

import (
	"sort"
	"time"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
)

// analyticsService aggregates transactions into summary views. Every sum
// is over base_amount so multi-currency figures stay comparable, and only
// completed, non-deleted transactions count.
type analyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService creates a new AnalyticsServicer.
func NewAnalyticsService(db *gorm.DB) AnalyticsServicer {
	return &analyticsService{db: db}
}

// completedInRange scopes a query to the user's completed transactions
// within [from, to]. Soft-deleted rows are excluded by the default scope.
func (s *analyticsService) completedInRange(userID string, from, to time.Time) *gorm.DB {
	return s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND status = ? AND date >= ? AND date <= ?",
			userID, models.TransactionStatusCompleted, from, to)
}

// GetOverview returns headline totals for a date range plus the expense
// and income category breakdowns.
func (s *analyticsService) GetOverview(userID string, from, to time.Time) (*Overview, error) {
	type typeTotal struct {
		Type  models.TransactionType
		Total int64
		Count int64
	}

	var totals []typeTotal
	err := s.completedInRange(userID, from, to).
		Select("type, COALESCE(SUM(base_amount), 0) AS total, COUNT(*) AS count").
		Group("type").
		Scan(&totals).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	overview := &Overview{}
	for _, t := range totals {
		switch t.Type {
		case models.TransactionTypeIncome:
			overview.TotalIncome = t.Total
			overview.IncomeCount = t.Count
		case models.TransactionTypeExpense:
			overview.TotalExpenses = t.Total
			overview.ExpenseCount = t.Count
		}
	}
	overview.Net = overview.TotalIncome - overview.TotalExpenses

	expenseBreakdown, err := s.GetCategoryTotals(userID, models.TransactionTypeExpense, from, to)
	if err != nil {
		return nil, err
	}
	overview.CategoryBreakdown = expenseBreakdown

	incomeBreakdown, err := s.GetCategoryTotals(userID, models.TransactionTypeIncome, from, to)
	if err != nil {
		return nil, err
	}
	overview.IncomeBreakdown = incomeBreakdown

	return overview, nil
}

// GetCategoryTotals returns per-category totals for one transaction type,
// joined with the category display metadata and sorted by total descending.
func (s *analyticsService) GetCategoryTotals(userID string, txType models.TransactionType, from, to time.Time) ([]CategoryTotal, error) {
	type row struct {
		CategoryID string
		Total      int64
		Count      int64
	}

	var rows []row
	err := s.completedInRange(userID, from, to).
		Where("type = ?", txType).
		Select("category_id, COALESCE(SUM(base_amount), 0) AS total, COUNT(*) AS count").
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if len(rows) == 0 {
		return []CategoryTotal{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.CategoryID)
	}

	var categories []models.Category
	if err := s.db.Unscoped().Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	meta := make(map[string]models.Category, len(categories))
	for _, c := range categories {
		meta[c.ID] = c
	}

	totals := make([]CategoryTotal, 0, len(rows))
	for _, r := range rows {
		c := meta[r.CategoryID]
		totals = append(totals, CategoryTotal{
			CategoryID:       r.CategoryID,
			Name:             c.Name,
			Icon:             c.Icon,
			Color:            c.Color,
			TotalAmount:      r.Total,
			TransactionCount: r.Count,
		})
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].TotalAmount > totals[j].TotalAmount
	})
	return totals, nil
}

// GetTrends returns monthly totals grouped by (type, year, month) with
// sum, count, and average, ascending by year then month.
//
// Rows are bucketed in Go rather than with SQL date functions, which keeps
// the query identical across postgres and sqlite.
func (s *analyticsService) GetTrends(userID string, from, to time.Time, txType *models.TransactionType) ([]MonthlyTotal, error) {
	q := s.completedInRange(userID, from, to)
	if txType != nil {
		q = q.Where("type = ?", *txType)
	}

	type row struct {
		Type       models.TransactionType
		Date       time.Time
		BaseAmount int64
	}
	var rows []row
	if err := q.Select("type, date, base_amount").Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	type bucketKey struct {
		Type  models.TransactionType
		Year  int
		Month int
	}
	buckets := make(map[bucketKey]*MonthlyTotal)
	for _, r := range rows {
		key := bucketKey{Type: r.Type, Year: r.Date.Year(), Month: int(r.Date.Month())}
		b, ok := buckets[key]
		if !ok {
			b = &MonthlyTotal{Type: key.Type, Year: key.Year, Month: key.Month}
			buckets[key] = b
		}
		b.Total += r.BaseAmount
		b.Count++
	}

	trends := make([]MonthlyTotal, 0, len(buckets))
	for _, b := range buckets {
		if b.Count > 0 {
			b.Average = float64(b.Total) / float64(b.Count)
		}
		trends = append(trends, *b)
	}

	sort.Slice(trends, func(i, j int) bool {
		if trends[i].Year != trends[j].Year {
			return trends[i].Year < trends[j].Year
		}
		if trends[i].Month != trends[j].Month {
			return trends[i].Month < trends[j].Month
		}
		return trends[i].Type < trends[j].Type
	})
	return trends, nil
}
