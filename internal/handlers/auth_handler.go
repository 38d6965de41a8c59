package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/middleware"
	"moneta/internal/models"
	"moneta/internal/services"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	userService services.UserServicer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService services.UserServicer) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email,max=255"`
	Password     string `json:"password" binding:"required,min=8,max=128"`
	FirstName    string `json:"first_name" binding:"max=100"`
	LastName     string `json:"last_name" binding:"max=100"`
	HomeCurrency string `json:"home_currency" binding:"omitempty,iso4217"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the token refresh request payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UserResponse represents the user data in the response
type UserResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	HomeCurrency string `json:"home_currency"`
	Points       int    `json:"points"`
	Level        int    `json:"level"`
	Streak       int    `json:"streak"`
}

// AuthResponse represents the authentication response with tokens
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

func userResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		HomeCurrency: user.HomeCurrency,
		Points:       user.Points,
		Level:        user.Level,
		Streak:       user.Streak,
	}
}

// issueTokens generates an access and refresh token pair and stores the
// refresh token hash server-side.
func (h *AuthHandler) issueTokens(user *models.User) (*AuthResponse, error) {
	accessToken, err := middleware.GenerateAccessToken(user)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	refreshToken, err := middleware.GenerateRefreshToken(user)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := h.userService.StoreRefreshTokenHash(user.ID, middleware.HashToken(refreshToken)); err != nil {
		return nil, err
	}
	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         userResponse(user),
	}, nil
}

// Register handles user registration
// @Summary     Register a new user
// @Description Register a new user with email and password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} AuthResponse "User registered and tokens generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Email already registered"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.CreateUser(req.Email, req.Password, req.FirstName, req.LastName, req.HomeCurrency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tokens, err := h.issueTokens(user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "User registered", tokens)
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate a user and get a token pair
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} AuthResponse "User authenticated and tokens generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     423 {object} ErrorResponse "Account locked"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.AttemptLogin(req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tokens, err := h.issueTokens(user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Login successful", tokens)
}

// Refresh rotates a token pair from a valid refresh token
// @Summary     Refresh tokens
// @Description Exchange a refresh token for a new token pair
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RefreshRequest true "Refresh token"
// @Success     200 {object} AuthResponse "New token pair"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid refresh token"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	claims, err := middleware.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		respondWithError(c, apperrors.ErrUnauthorized)
		return
	}

	storedHash, err := h.userService.GetRefreshTokenHash(claims.UserID)
	if err != nil {
		respondWithError(c, apperrors.ErrUnauthorized)
		return
	}
	if storedHash == "" || storedHash != middleware.HashToken(req.RefreshToken) {
		respondWithError(c, apperrors.ErrUnauthorized)
		return
	}

	user, err := h.userService.GetUserByID(claims.UserID)
	if err != nil {
		respondWithError(c, apperrors.ErrUnauthorized)
		return
	}

	tokens, err := h.issueTokens(user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Tokens refreshed", tokens)
}

// GetProfile returns the user's profile
// @Summary     Get user profile
// @Description Get the authenticated user's profile including activity counters
// @Tags        user
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} UserResponse "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Profile retrieved", gin.H{"user": userResponse(user)})
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response envelope.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   ErrorDetail `json:"error"`
}
