package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dreamevents/marketplace/controllers/notification_controller"
	"github.com/dreamevents/marketplace/middlewares/auth"
)

// RegisterNotificationRoutes registers the notification inbox routes.
func RegisterNotificationRoutes(router *gin.Engine, db *pgxpool.Pool) {
	notificationController := notification_controller.NewNotificationController(db)

	protected := router.Group("/notifications")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("", notificationController.ListNotifications)
		protected.GET("/unread-count", notificationController.UnreadCount)
		protected.PATCH("/:id/read", notificationController.MarkRead)
	}
}
