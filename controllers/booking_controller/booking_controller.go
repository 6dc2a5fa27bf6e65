package booking_controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dreamevents/marketplace/logger"
	"github.com/dreamevents/marketplace/models/booking_models"
	"github.com/dreamevents/marketplace/utils"
)

// BookingController exposes the booking lifecycle over HTTP.
type BookingController struct {
	service *BookingService
	db      *pgxpool.Pool
}

// NewBookingController creates a new instance of BookingController.
func NewBookingController(service *BookingService, db *pgxpool.Pool) *BookingController {
	return &BookingController{
		service: service,
		db:      db,
	}
}

type CreateBookingRequest struct {
	ServiceID       string `json:"service_id" binding:"required,uuid"`
	EventDate       string `json:"event_date" binding:"required"`
	EventTime       string `json:"event_time" binding:"required"`
	EventLocation   string `json:"event_location" binding:"required"`
	GuestCount      int    `json:"guest_count"`
	SpecialRequests string `json:"special_requests"`
	ContactPhone    string `json:"contact_phone" binding:"required"`
	ContactEmail    string `json:"contact_email"`
}

type DecisionRequest struct {
	Decision string `json:"decision" binding:"required,oneof=accept reject"`
}

func callerID(c *gin.Context) (uuid.UUID, bool) {
	id, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return uuid.Nil, false
	}
	return id, true
}

// CreateBooking handles a customer's booking request.
func (bc *BookingController) CreateBooking(c *gin.Context) {
	customerID, ok := callerID(c)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid service ID"})
		return
	}

	booking, warning, err := bc.service.CreateBooking(c.Request.Context(), customerID, CreateBookingInput{
		ServiceID:       serviceID,
		EventDate:       req.EventDate,
		EventTime:       req.EventTime,
		EventLocation:   req.EventLocation,
		GuestCount:      req.GuestCount,
		SpecialRequests: req.SpecialRequests,
		ContactPhone:    req.ContactPhone,
		ContactEmail:    req.ContactEmail,
	})
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to create booking: %v", err)
		switch {
		case errors.Is(err, ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrServiceUnavailable):
			c.JSON(http.StatusNotFound, gin.H{"error": "Service is not available for booking"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		}
		return
	}

	resp := gin.H{
		"message": "Booking created successfully",
		"booking": booking,
	}
	if warning != "" {
		resp["warning"] = warning
	}
	c.JSON(http.StatusCreated, resp)
}

// DecideBooking handles the owning vendor's accept/reject call.
func (bc *BookingController) DecideBooking(c *gin.Context) {
	vendorID, ok := callerID(c)
	if !ok {
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	booking, err := bc.service.ApplyBookingDecision(c.Request.Context(), bookingID, Decision(req.Decision), vendorID)
	if err != nil {
		logger.WarnLogger.Warnf("Booking decision failed for %s: %v", bookingID, err)
		switch {
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, ErrNotBookingVendor):
			c.JSON(http.StatusForbidden, gin.H{"error": "Booking does not belong to this vendor"})
		case errors.Is(err, ErrBookingNotPending):
			c.JSON(http.StatusConflict, gin.H{"error": "Booking is no longer pending"})
		case errors.Is(err, ErrInvalidDecision):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Decision must be accept or reject"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update booking"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking " + req.Decision + "ed successfully",
		"booking": booking,
	})
}

// GetBooking returns one booking, visible only to its customer or vendor.
func (bc *BookingController) GetBooking(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	booking, err := bc.service.GetBookingForUser(c.Request.Context(), bookingID, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, ErrNotBookingParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to view this booking"})
		default:
			logger.ErrorLogger.Errorf("Failed to fetch booking %s: %v", bookingID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch booking"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// ListCustomerBookings returns the caller's bookings as a customer.
func (bc *BookingController) ListCustomerBookings(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	bc.listBookings(c, func(page, limit int) ([]booking_models.Booking, int, error) {
		return booking_models.GetBookingsByCustomer(c.Request.Context(), bc.db, userID, c.Query("status"), page, limit)
	})
}

// ListVendorBookings returns the bookings addressed to the caller as a vendor.
func (bc *BookingController) ListVendorBookings(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	bc.listBookings(c, func(page, limit int) ([]booking_models.Booking, int, error) {
		return booking_models.GetBookingsByVendor(c.Request.Context(), bc.db, userID, c.Query("status"), page, limit)
	})
}

func (bc *BookingController) listBookings(c *gin.Context, fetch func(page, limit int) ([]booking_models.Booking, int, error)) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	bookings, total, err := fetch(page, limit)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list bookings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}
