package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/dreamevents/marketplace/controllers/booking_controller"
	middleware "github.com/dreamevents/marketplace/middlewares"
	"github.com/dreamevents/marketplace/middlewares/auth"
	"github.com/dreamevents/marketplace/models/shared_models"
)

// RegisterBookingRoutes registers all booking-related routes.
func RegisterBookingRoutes(router *gin.Engine, bookingController *booking_controller.BookingController) {
	protected := router.Group("/bookings")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("",
			middleware.NewRateLimiter("10-1m", "create-booking"),
			auth.RequireRole(shared_models.RoleCustomer),
			bookingController.CreateBooking)

		protected.GET("/:id", bookingController.GetBooking)

		protected.POST("/:id/decision",
			auth.RequireRole(shared_models.RoleVendor),
			bookingController.DecideBooking)

		protected.GET("/customer",
			auth.RequireRole(shared_models.RoleCustomer),
			bookingController.ListCustomerBookings)

		protected.GET("/vendor",
			auth.RequireRole(shared_models.RoleVendor),
			bookingController.ListVendorBookings)
	}
}
