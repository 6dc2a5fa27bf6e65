package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/dreamevents/marketplace/clients"
	"github.com/dreamevents/marketplace/config/redis"
	"github.com/dreamevents/marketplace/handlers/place_handlers"
	middleware "github.com/dreamevents/marketplace/middlewares"
)

// RegisterPlaceRoutes registers the geocoding proxy routes.
func RegisterPlaceRoutes(router *gin.Engine) {
	geocoder := clients.NewNominatimClient(redis.GetRedisClient())
	placeHandler := place_handlers.NewPlaceHandler(geocoder)

	places := router.Group("/places")
	places.Use(middleware.NewRateLimiter("30-1m", "places"))
	{
		places.GET("/search", placeHandler.SearchPlaces)
		places.GET("/reverse", placeHandler.ReverseGeocode)
	}
}
