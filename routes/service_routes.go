package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dreamevents/marketplace/controllers/service_controller"
	"github.com/dreamevents/marketplace/middlewares/auth"
	"github.com/dreamevents/marketplace/models/shared_models"
)

// RegisterServiceRoutes registers the service-catalog routes.
func RegisterServiceRoutes(router *gin.Engine, db *pgxpool.Pool) {
	serviceController := service_controller.NewServiceController(db)

	// Public catalog
	router.GET("/services", serviceController.ListServices)
	router.GET("/services/:id", serviceController.GetServiceByID)

	vendor := router.Group("/vendor/services")
	vendor.Use(auth.AuthMiddleware(), auth.RequireRole(shared_models.RoleVendor))
	{
		vendor.POST("", serviceController.CreateService)
		vendor.GET("", serviceController.ListVendorServices)
		vendor.PATCH("/:id", serviceController.UpdateService)
		vendor.DELETE("/:id", serviceController.DeleteService)
	}
}
