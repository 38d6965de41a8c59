package services

import (
	"encoding/json"
	"errors"
	"regexp"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// maxSuggestions caps how many candidate categories a suggestion returns.
const maxSuggestions = 3

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a new user-owned category.
func (s *categoryService) CreateCategory(
	userID string,
	name string,
	categoryType models.CategoryType,
	description string,
	icon string,
	color string,
	keywords []string,
	monthlyBudget int64,
) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if monthlyBudget < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "monthly budget cannot be negative")
	}

	// Check if a category with the same name already exists for this user
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("user_id = ? AND name = ? AND type = ?", userID, name, categoryType).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateCategory
	}

	category := &models.Category{
		UserID:        &userID,
		Name:          name,
		Type:          categoryType,
		Description:   description,
		Icon:          icon,
		Color:         color,
		Keywords:      normalizeKeywords(keywords),
		MonthlyBudget: monthlyBudget,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// SeedDefaultCategories copies the starter category set to a new user
// inside the caller's database transaction.
func (s *categoryService) SeedDefaultCategories(tx *gorm.DB, userID string) error {
	categories := make([]models.Category, 0, len(defaultCategories))
	for _, d := range defaultCategories {
		categories = append(categories, models.Category{
			UserID:   &userID,
			Name:     d.Name,
			Type:     d.Type,
			Icon:     d.Icon,
			Color:    d.Color,
			Keywords: d.Keywords,
		})
	}
	if err := tx.Create(&categories).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetUserCategories retrieves a paginated list of the user's categories,
// including system defaults, optionally filtered by type.
func (s *categoryService) GetUserCategories(userID string, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	base := s.db.Model(&models.Category{}).Where("user_id = ? OR user_id IS NULL", userID)
	if categoryType != nil {
		base = base.Where("type = ?", *categoryType)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Order("name ASC").Scopes(pagination.Paginate(page)).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryByID retrieves a category visible to the user: their own or a
// system default.
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND (user_id = ? OR user_id IS NULL)", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory updates a user-owned category. System defaults are read-only.
func (s *categoryService) UpdateCategory(
	userID string,
	categoryID string,
	name string,
	description string,
	icon string,
	color string,
	keywords []string,
	monthlyBudget *int64,
) (*models.Category, error) {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}
	if category.IsDefault() {
		return nil, apperrors.ErrDefaultCategory
	}

	// Update fields if provided
	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if description != "" {
		updates["description"] = description
	}
	if icon != "" {
		updates["icon"] = icon
	}
	if color != "" {
		updates["color"] = color
	}
	if keywords != nil {
		category.Keywords = normalizeKeywords(keywords)
		// Map-based updates skip the model's JSON serializer.
		keywordsJSON, err := json.Marshal(category.Keywords)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		updates["keywords"] = string(keywordsJSON)
	}
	if monthlyBudget != nil {
		if *monthlyBudget < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "monthly budget cannot be negative")
		}
		updates["monthly_budget"] = *monthlyBudget
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return category, nil
}

// DeleteCategory soft-deletes a user-owned category. Categories still
// referenced by live transactions cannot be deleted.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return err
	}
	if category.IsDefault() {
		return apperrors.ErrDefaultCategory
	}

	var inUse int64
	if err := s.db.Model(&models.Transaction{}).
		Where("category_id = ? AND user_id = ?", categoryID, userID).
		Count(&inUse).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if inUse > 0 {
		return apperrors.ErrCategoryInUse
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SuggestCategories matches free text against category names and keywords
// and returns up to three candidates of the requested type, most-used
// first. It never creates or mutates categories. An empty query matches
// every category, so the caller simply gets the three most-used ones.
func (s *categoryService) SuggestCategories(userID, query string, categoryType models.CategoryType) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.
		Where("type = ? AND (user_id = ? OR user_id IS NULL)", categoryType, userID).
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	pattern, err := buildSuggestionPattern(query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	matched := categories[:0]
	for _, c := range categories {
		if pattern.MatchString(strings.ToLower(c.Name)) || matchesKeywords(pattern, c.Keywords) {
			matched = append(matched, c)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].TransactionCount != matched[j].TransactionCount {
			return matched[i].TransactionCount > matched[j].TransactionCount
		}
		return lastUsed(matched[i].LastUsedAt).After(lastUsed(matched[j].LastUsedAt))
	})

	if len(matched) > maxSuggestions {
		matched = matched[:maxSuggestions]
	}
	return matched, nil
}

// RecordUsage bumps a category's usage counters inside the caller's
// database transaction.
func (s *categoryService) RecordUsage(tx *gorm.DB, categoryID string, baseAmount int64, usedAt time.Time) error {
	err := tx.Model(&models.Category{}).
		Where("id = ?", categoryID).
		Updates(map[string]interface{}{
			"transaction_count": gorm.Expr("transaction_count + 1"),
			"total_amount":      gorm.Expr("total_amount + ?", baseAmount),
			"last_used_at":      &usedAt,
		}).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// buildSuggestionPattern joins the query tokens with alternation into one
// case-insensitive regex. No tokens produces a match-everything pattern.
func buildSuggestionPattern(query string) (*regexp.Regexp, error) {
	tokens := strings.Fields(strings.ToLower(query))
	quoted := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		quoted = append(quoted, regexp.QuoteMeta(tok))
	}
	return regexp.Compile("(?i)" + strings.Join(quoted, "|"))
}

func matchesKeywords(pattern *regexp.Regexp, keywords []string) bool {
	for _, k := range keywords {
		if pattern.MatchString(strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func lastUsed(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}
