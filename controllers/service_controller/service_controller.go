package service_controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dreamevents/marketplace/logger"
	"github.com/dreamevents/marketplace/models/service_models"
	"github.com/dreamevents/marketplace/models/shared_models"
	"github.com/dreamevents/marketplace/models/user_models"
	"github.com/dreamevents/marketplace/utils"
)

// ServiceController holds dependencies for service-catalog operations.
type ServiceController struct {
	DB *pgxpool.Pool
}

// NewServiceController creates a new instance of ServiceController.
func NewServiceController(db *pgxpool.Pool) *ServiceController {
	return &ServiceController{DB: db}
}

type CreateServiceRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category" binding:"required"`
	Price       int64    `json:"price" binding:"required,gt=0"`
	Images      []string `json:"images"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type UpdateServiceRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Price       *int64   `json:"price"`
	Images      []string `json:"images"`
	Location    *string  `json:"location"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Status      *string  `json:"status"`
}

func vendorFromContext(c *gin.Context) (uuid.UUID, bool) {
	id, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return uuid.Nil, false
	}
	return id, true
}

// CreateService registers a new offering for the calling vendor.
func (sc *ServiceController) CreateService(c *gin.Context) {
	vendorID, ok := vendorFromContext(c)
	if !ok {
		return
	}

	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()
	vendor, err := user_models.GetUserByID(ctx, sc.DB, vendorID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to load vendor %s: %v", vendorID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load vendor profile"})
		return
	}

	service, err := service_models.NewService(vendorID, vendor.Name, req.Title, req.Description, req.Category, req.Price)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create service"})
		return
	}
	service.Images = req.Images
	service.Location = req.Location
	service.Latitude = req.Latitude
	service.Longitude = req.Longitude

	created, err := service_models.CreateServiceModel(ctx, sc.DB, service)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to create service in database: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create service"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Service created successfully",
		"service": created,
	})
}

// GetServiceByID returns one service.
func (sc *ServiceController) GetServiceByID(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid service ID"})
		return
	}

	service, err := service_models.GetServiceByIDModel(c.Request.Context(), sc.DB, serviceID)
	if err != nil {
		if errors.Is(err, service_models.ErrServiceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch service"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"service": service})
}

// ListServices returns active services, optionally filtered by category.
func (sc *ServiceController) ListServices(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	services, total, err := service_models.GetActiveServices(c.Request.Context(), sc.DB, c.Query("category"), page, limit)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list services: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch services"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"services": services,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// ListVendorServices returns all of the calling vendor's services, active or
// not.
func (sc *ServiceController) ListVendorServices(c *gin.Context) {
	vendorID, ok := vendorFromContext(c)
	if !ok {
		return
	}

	services, err := service_models.GetServicesByVendor(c.Request.Context(), sc.DB, vendorID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list vendor services: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch services"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": services})
}

// UpdateService applies a partial update to a service the caller owns.
func (sc *ServiceController) UpdateService(c *gin.Context) {
	vendorID, ok := vendorFromContext(c)
	if !ok {
		return
	}

	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid service ID"})
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()
	service, err := service_models.GetServiceByIDModel(ctx, sc.DB, serviceID)
	if err != nil {
		if errors.Is(err, service_models.ErrServiceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch service"})
		return
	}

	if service.VendorID != vendorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Service does not belong to this vendor"})
		return
	}

	if req.Title != nil {
		service.Title = *req.Title
	}
	if req.Description != nil {
		service.Description = *req.Description
	}
	if req.Category != nil {
		service.Category = *req.Category
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be positive"})
			return
		}
		service.Price = *req.Price
	}
	if req.Images != nil {
		service.Images = req.Images
	}
	if req.Location != nil {
		service.Location = *req.Location
	}
	if req.Latitude != nil {
		service.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		service.Longitude = req.Longitude
	}

	if err := service_models.UpdateServiceModel(ctx, sc.DB, service); err != nil {
		logger.ErrorLogger.Errorf("Failed to update service %s: %v", serviceID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update service"})
		return
	}

	if req.Status != nil {
		if *req.Status != shared_models.ServiceStatusActive && *req.Status != shared_models.ServiceStatusInactive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be active or inactive"})
			return
		}
		if err := service_models.SetServiceStatus(ctx, sc.DB, serviceID, *req.Status); err != nil {
			logger.ErrorLogger.Errorf("Failed to set service %s status: %v", serviceID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update service status"})
			return
		}
		service.Status = *req.Status
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Service updated successfully",
		"service": service,
	})
}

// DeleteService removes a service the caller owns.
func (sc *ServiceController) DeleteService(c *gin.Context) {
	vendorID, ok := vendorFromContext(c)
	if !ok {
		return
	}

	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid service ID"})
		return
	}

	ctx := c.Request.Context()
	service, err := service_models.GetServiceByIDModel(ctx, sc.DB, serviceID)
	if err != nil {
		if errors.Is(err, service_models.ErrServiceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch service"})
		return
	}

	if service.VendorID != vendorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Service does not belong to this vendor"})
		return
	}

	if err := service_models.DeleteServiceModel(ctx, sc.DB, serviceID); err != nil {
		logger.ErrorLogger.Errorf("Failed to delete service %s: %v", serviceID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete service"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Service deleted successfully"})
}
