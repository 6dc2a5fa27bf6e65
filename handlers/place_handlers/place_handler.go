package place_handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dreamevents/marketplace/clients"
	"github.com/dreamevents/marketplace/logger"
)

// PlaceHandler proxies place search and reverse geocoding for the client app.
type PlaceHandler struct {
	Geocoder *clients.NominatimClient
}

func NewPlaceHandler(geocoder *clients.NominatimClient) *PlaceHandler {
	return &PlaceHandler{Geocoder: geocoder}
}

// SearchPlaces resolves a free-text query to candidate places.
func (ph *PlaceHandler) SearchPlaces(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter q is required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if limit < 1 || limit > 20 {
		limit = 5
	}

	places, err := ph.Geocoder.SearchPlaces(c.Request.Context(), query, limit)
	if err != nil {
		logger.ErrorLogger.Errorf("Place search failed for %q: %v", query, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Place search unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"places": places})
}

// ReverseGeocode resolves coordinates to a place name.
func (ph *PlaceHandler) ReverseGeocode(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid latitude"})
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid longitude"})
		return
	}

	place, err := ph.Geocoder.ReverseGeocode(c.Request.Context(), lat, lon)
	if err != nil {
		logger.ErrorLogger.Errorf("Reverse geocode failed for %f,%f: %v", lat, lon, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Reverse geocoding unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"place": place})
}
