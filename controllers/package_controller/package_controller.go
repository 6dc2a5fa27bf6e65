package package_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dreamevents/marketplace/logger"
	"github.com/dreamevents/marketplace/models/package_models"
	"github.com/dreamevents/marketplace/models/service_models"
	"github.com/dreamevents/marketplace/utils"
)

// PackageController handles vendor service bundles.
type PackageController struct {
	DB *pgxpool.Pool
}

// NewPackageController creates a new instance of PackageController.
func NewPackageController(db *pgxpool.Pool) *PackageController {
	return &PackageController{DB: db}
}

type CreatePackageRequest struct {
	Name        string      `json:"name" binding:"required"`
	Description string      `json:"description"`
	ServiceIDs  []uuid.UUID `json:"service_ids" binding:"required,min=1"`
	Price       int64       `json:"price" binding:"required,gt=0"`
}

type UpdatePackageRequest struct {
	Name        *string     `json:"name"`
	Description *string     `json:"description"`
	ServiceIDs  []uuid.UUID `json:"service_ids"`
	Price       *int64      `json:"price"`
}

func vendorFromContext(c *gin.Context) (uuid.UUID, bool) {
	id, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return uuid.Nil, false
	}
	return id, true
}

// ownsAllServices checks that every referenced service belongs to the vendor.
func (pc *PackageController) ownsAllServices(c *gin.Context, vendorID uuid.UUID, serviceIDs []uuid.UUID) bool {
	ctx := c.Request.Context()
	for _, sid := range serviceIDs {
		service, err := service_models.GetServiceByIDModel(ctx, pc.DB, sid)
		if err != nil {
			if errors.Is(err, service_models.ErrServiceNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown service in package", "service_id": sid})
				return false
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify services"})
			return false
		}
		if service.VendorID != vendorID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Service does not belong to this vendor", "service_id": sid})
			return false
		}
	}
	return true
}

// CreatePackage bundles several of the vendor's services at one price.
func (pc *PackageController) CreatePackage(c *gin.Context) {
	vendorID, ok := vendorFromContext(c)
	if !ok {
		return
	}

	var req CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if !pc.ownsAllServices(c, vendorID, req.ServiceIDs) {
		return
	}

	pkg, err := package_models.NewPackage(vendorID, req.Name, req.Description, req.ServiceIDs, req.Price)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create package"})
		return
	}

	created, err := package_models.CreatePackage(c.Request.Context(), pc.DB, pkg)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to create package: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create package"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Package created successfully",
		"package": created,
	})
}

// GetPackageByID returns one package.
func (pc *PackageController) GetPackageByID(c *gin.Context) {
	packageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid package ID"})
		return
	}

	pkg, err := package_models.GetPackageByID(c.Request.Context(), pc.DB, packageID)
	if err != nil {
		if errors.Is(err, package_models.ErrPackageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Package not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch package"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"package": pkg})
}

// ListVendorPackages returns the calling vendor's packages.
func (pc *PackageController) ListVendorPackages(c *gin.Context) {
	vendorID, ok := vendorFromContext(c)
	if !ok {
		return
	}

	packages, err := package_models.GetPackagesByVendor(c.Request.Context(), pc.DB, vendorID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list packages for vendor %s: %v", vendorID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch packages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"packages": packages})
}

// UpdatePackage applies a partial update to a package the caller owns.
func (pc *PackageController) UpdatePackage(c *gin.Context) {
	vendorID, ok := vendorFromContext(c)
	if !ok {
		return
	}

	packageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid package ID"})
		return
	}

	var req UpdatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()
	pkg, err := package_models.GetPackageByID(ctx, pc.DB, packageID)
	if err != nil {
		if errors.Is(err, package_models.ErrPackageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Package not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch package"})
		return
	}

	if pkg.VendorID != vendorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Package does not belong to this vendor"})
		return
	}

	if req.Name != nil {
		pkg.Name = *req.Name
	}
	if req.Description != nil {
		pkg.Description = *req.Description
	}
	if req.ServiceIDs != nil {
		if len(req.ServiceIDs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Package must contain at least one service"})
			return
		}
		if !pc.ownsAllServices(c, vendorID, req.ServiceIDs) {
			return
		}
		pkg.ServiceIDs = req.ServiceIDs
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be positive"})
			return
		}
		pkg.Price = *req.Price
	}

	if err := package_models.UpdatePackage(ctx, pc.DB, pkg); err != nil {
		logger.ErrorLogger.Errorf("Failed to update package %s: %v", packageID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update package"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Package updated successfully",
		"package": pkg,
	})
}

// DeletePackage removes a package the caller owns.
func (pc *PackageController) DeletePackage(c *gin.Context) {
	vendorID, ok := vendorFromContext(c)
	if !ok {
		return
	}

	packageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid package ID"})
		return
	}

	err = package_models.DeletePackage(c.Request.Context(), pc.DB, packageID, vendorID)
	if err != nil {
		if errors.Is(err, package_models.ErrPackageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Package not found"})
			return
		}
		logger.ErrorLogger.Errorf("Failed to delete package %s: %v", packageID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete package"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Package deleted successfully"})
}
