package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/logger"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", apperrors.ErrUnauthorized
	}
	return userID.(string), nil
}

// parseDateQuery parses an optional RFC 3339 or YYYY-MM-DD query
// parameter, falling back to the given default when absent.
func parseDateQuery(c *gin.Context, param string, fallback time.Time) (time.Time, error) {
	raw := c.Query(param)
	if raw == "" {
		return fallback, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return t, nil
}

// respondSuccess writes the standard success envelope.
func respondSuccess(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{
		"success": true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"success": false,
			"message": appErr.Message,
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"success": false,
		"message": apperrors.ErrInternalServer.Message,
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}
