package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dreamevents/marketplace/controllers/user_controllers"
	middleware "github.com/dreamevents/marketplace/middlewares"
	"github.com/dreamevents/marketplace/middlewares/auth"
)

// RegisterUserRoutes registers the account and profile routes.
func RegisterUserRoutes(router *gin.Engine, db *pgxpool.Pool) {
	userController := user_controllers.NewUserController(db)

	router.POST("/auth/register",
		middleware.NewRateLimiter("5-1m", "register"),
		userController.Register)
	router.POST("/auth/login",
		middleware.NewRateLimiter("10-1m", "login"),
		userController.Login)

	protected := router.Group("/users")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("/me", userController.GetProfile)
		protected.PUT("/me/push-token", userController.RegisterPushToken)
		protected.PUT("/me/notifications-enabled", userController.SetNotificationsEnabled)
		protected.PUT("/me/profile", userController.CompleteProfile)
	}
}
