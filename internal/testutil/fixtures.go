package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"moneta/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        email,
		Password:     string(hash),
		HomeCurrency: "USD",
		IsActive:     true,
		Level:        1,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a user-owned category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: &userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestCategoryWithKeywords creates a category with suggestion keywords.
func CreateTestCategoryWithKeywords(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType, name string, keywords []string) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID:   &userID,
		Name:     name,
		Type:     categoryType,
		Keywords: keywords,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a completed transaction of the given type
// and amount (in cents) in the user's home currency.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, categoryID string, txType models.TransactionType, amount int64) *models.Transaction {
	t.Helper()
	return CreateTestTransactionAt(t, db, userID, categoryID, txType, amount, time.Now())
}

// CreateTestTransactionAt creates a completed transaction dated at the given time.
func CreateTestTransactionAt(t *testing.T, db *gorm.DB, userID, categoryID string, txType models.TransactionType, amount int64, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:       userID,
		CategoryID:   categoryID,
		Title:        fmt.Sprintf("Test Transaction %d", nextID()),
		Type:         txType,
		Status:       models.TransactionStatusCompleted,
		Amount:       amount,
		Currency:     "USD",
		ExchangeRate: 1,
		BaseAmount:   amount,
		Date:         date,
		Version:      1,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}
