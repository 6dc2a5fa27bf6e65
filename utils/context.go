package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dreamevents/marketplace/logger"
)

// GetUserIDFromContext extracts the authenticated user's ID set by the auth
// middleware.
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	v, exists := c.Get("user_id")
	if !exists {
		logger.ErrorLogger.Error("User ID not found in context.")
		return uuid.Nil, ErrUserIDNotFound
	}

	userID, ok := v.(uuid.UUID)
	if !ok {
		logger.ErrorLogger.Errorf("User ID in context is not a UUID, actual type: %T", v)
		return uuid.Nil, fmt.Errorf("internal server error: invalid user ID format in context")
	}

	return userID, nil
}
