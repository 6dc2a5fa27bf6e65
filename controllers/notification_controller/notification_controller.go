package notification_controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dreamevents/marketplace/logger"
	"github.com/dreamevents/marketplace/models/notification_models"
	"github.com/dreamevents/marketplace/models/user_models"
	"github.com/dreamevents/marketplace/utils"
)

// NotificationController serves a user's notification inbox.
type NotificationController struct {
	DB *pgxpool.Pool
}

// NewNotificationController creates a new instance of NotificationController.
func NewNotificationController(db *pgxpool.Pool) *NotificationController {
	return &NotificationController{DB: db}
}

func recipientFromContext(c *gin.Context) (uuid.UUID, bool) {
	id, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return uuid.Nil, false
	}
	return id, true
}

// ListNotifications returns the caller's notifications, newest first. Opening
// the inbox resets the unread counter.
func (nc *NotificationController) ListNotifications(c *gin.Context) {
	recipientID, ok := recipientFromContext(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	unreadOnly := c.Query("unread") == "true"

	ctx := c.Request.Context()
	notifications, total, err := notification_models.GetNotificationsByRecipient(ctx, nc.DB, recipientID, unreadOnly, page, limit)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list notifications for %s: %v", recipientID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	if err := user_models.ResetUnreadNotifications(ctx, nc.DB, recipientID); err != nil {
		// Non-fatal, the counter catches up on the next write.
		logger.WarnLogger.Warnf("Failed to reset unread counter for %s: %v", recipientID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"total":         total,
		"page":          page,
		"limit":         limit,
	})
}

// MarkRead marks one of the caller's notifications as read.
func (nc *NotificationController) MarkRead(c *gin.Context) {
	recipientID, ok := recipientFromContext(c)
	if !ok {
		return
	}

	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	err = notification_models.MarkNotificationRead(c.Request.Context(), nc.DB, notificationID, recipientID)
	if err != nil {
		if errors.Is(err, notification_models.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		logger.ErrorLogger.Errorf("Failed to mark notification %s read: %v", notificationID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// UnreadCount returns the number of unread notifications for the caller.
func (nc *NotificationController) UnreadCount(c *gin.Context) {
	recipientID, ok := recipientFromContext(c)
	if !ok {
		return
	}

	count, err := notification_models.CountUnreadNotifications(c.Request.Context(), nc.DB, recipientID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to count unread notifications for %s: %v", recipientID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": count})
}
