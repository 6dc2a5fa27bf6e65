package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dreamevents/marketplace/controllers/package_controller"
	"github.com/dreamevents/marketplace/middlewares/auth"
	"github.com/dreamevents/marketplace/models/shared_models"
)

// RegisterPackageRoutes registers the vendor package routes.
func RegisterPackageRoutes(router *gin.Engine, db *pgxpool.Pool) {
	packageController := package_controller.NewPackageController(db)

	// Public package lookup
	router.GET("/packages/:id", packageController.GetPackageByID)

	vendor := router.Group("/vendor/packages")
	vendor.Use(auth.AuthMiddleware(), auth.RequireRole(shared_models.RoleVendor))
	{
		vendor.POST("", packageController.CreatePackage)
		vendor.GET("", packageController.ListVendorPackages)
		vendor.PATCH("/:id", packageController.UpdatePackage)
		vendor.DELETE("/:id", packageController.DeletePackage)
	}
}
