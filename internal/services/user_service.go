package services

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"moneta/internal/config"
	apperrors "moneta/internal/errors"
	"moneta/internal/models"
)

const (
	// maxFailedLogins is the number of consecutive failures that locks an account.
	maxFailedLogins = 5
	// lockoutDuration is how long a locked account stays locked.
	lockoutDuration = 2 * time.Hour
	// pointsPerLevel controls how level is derived from points.
	pointsPerLevel = 100
)

// userService handles user-related business logic.
type userService struct {
	db              *gorm.DB
	categoryService CategoryServicer
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB, categoryService CategoryServicer) UserServicer {
	return &userService{db: db, categoryService: categoryService}
}

// CreateUser registers a new user and seeds the default category set for
// them in the same database transaction.
func (s *userService) CreateUser(email, password, firstName, lastName, homeCurrency string) (*models.User, error) {
	// Validate input
	if email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email and password are required")
	}
	if homeCurrency == "" {
		homeCurrency = config.Get().HomeCurrency
	}

	// Check if user with email exists
	var count int64
	s.db.Model(&models.User{}).Where("email = ?", strings.ToLower(email)).Count(&count)
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Email:        strings.ToLower(email),
		Password:     string(hashedPassword),
		FirstName:    firstName,
		LastName:     lastName,
		HomeCurrency: homeCurrency,
		IsActive:     true,
		Level:        1,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.categoryService.SeedDefaultCategories(tx, user.ID)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByEmail retrieves an active user by email
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ? AND is_active = ?", strings.ToLower(email), true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	return err == nil
}

// AttemptLogin authenticates a user and drives the lockout state machine.
// Five consecutive failures lock the account for two hours. The first
// failure after a lock expires restarts the counter at 1, not 0: the
// expired lock is cleared by the failure that discovers it.
func (s *userService) AttemptLogin(email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		// Do not reveal whether the email exists.
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		return nil, apperrors.ErrAccountLocked
	}

	if !s.VerifyPassword(user, password) {
		updates := map[string]interface{}{}
		if user.LockedUntil != nil {
			// Lock expired: soft reset.
			user.FailedLoginAttempts = 1
			updates["locked_until"] = nil
		} else {
			user.FailedLoginAttempts++
		}
		updates["failed_login_attempts"] = user.FailedLoginAttempts

		if user.FailedLoginAttempts >= maxFailedLogins {
			lockedUntil := now.Add(lockoutDuration)
			updates["locked_until"] = &lockedUntil
		}

		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	// Success clears the lockout state and stamps activity.
	streak, lastActivity := advanceStreak(user.Streak, user.LastActivityDate, now)
	updates := map[string]interface{}{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login_at":         &now,
		"streak":                streak,
		"last_activity_date":    lastActivity,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

// AwardPoints adds activity points to a user inside the caller's database
// transaction, recomputing level and the daily streak.
func (s *userService) AwardPoints(tx *gorm.DB, userID string, points int) error {
	var user models.User
	if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := time.Now()
	newPoints := user.Points + points
	streak, lastActivity := advanceStreak(user.Streak, user.LastActivityDate, now)

	updates := map[string]interface{}{
		"points":             newPoints,
		"level":              newPoints/pointsPerLevel + 1,
		"streak":             streak,
		"last_activity_date": lastActivity,
	}
	if err := tx.Model(&user).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// StoreRefreshTokenHash persists the SHA-256 hash of the user's current
// refresh token.
func (s *userService) StoreRefreshTokenHash(userID string, tokenHash string) error {
	result := s.db.Model(&models.User{}).Where("id = ?", userID).Update("refresh_token_hash", tokenHash)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// GetRefreshTokenHash returns the stored refresh token hash for a user.
func (s *userService) GetRefreshTokenHash(userID string) (string, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", err
	}
	return user.RefreshTokenHash, nil
}

// advanceStreak returns the new streak value for activity happening at now.
// Consecutive calendar days extend the streak; a gap resets it to 1;
// repeated activity on the same day leaves it unchanged.
func advanceStreak(streak int, lastActivity *time.Time, now time.Time) (int, *time.Time) {
	if lastActivity == nil {
		return 1, &now
	}

	last := time.Date(lastActivity.Year(), lastActivity.Month(), lastActivity.Day(), 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch days := int(today.Sub(last).Hours() / 24); {
	case days == 0:
		return streak, &now
	case days == 1:
		return streak + 1, &now
	default:
		return 1, &now
	}
}
