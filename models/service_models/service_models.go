package service_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dreamevents/marketplace/logger"
	"github.com/dreamevents/marketplace/models/shared_models"
)

var ErrServiceNotFound = errors.New("service not found")

// Service is a vendor's offering. Prices are stored in minor currency units.
type Service struct {
	ID          uuid.UUID `json:"id"`
	VendorID    uuid.UUID `json:"vendor_id"`
	VendorName  string    `json:"vendor_name"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Price       int64     `json:"price"`
	Status      string    `json:"status"` // active | inactive
	Images      []string  `json:"images,omitempty"`
	Location    string    `json:"location,omitempty"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewService creates a new Service struct.
func NewService(vendorID uuid.UUID, vendorName, title, description, category string, price int64) (*Service, error) {
	id, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for service: %w", err)
	}
	now := time.Now()
	return &Service{
		ID:          id,
		VendorID:    vendorID,
		VendorName:  vendorName,
		Title:       title,
		Description: description,
		Category:    category,
		Price:       price,
		Status:      shared_models.ServiceStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

const serviceColumns = `id, vendor_id, vendor_name, title, description, category,
	price, status, images, location, latitude, longitude, created_at, updated_at`

func scanService(row pgx.Row) (*Service, error) {
	service := &Service{}
	err := row.Scan(
		&service.ID,
		&service.VendorID,
		&service.VendorName,
		&service.Title,
		&service.Description,
		&service.Category,
		&service.Price,
		&service.Status,
		&service.Images,
		&service.Location,
		&service.Latitude,
		&service.Longitude,
		&service.CreatedAt,
		&service.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("database error fetching service: %w", err)
	}
	return service, nil
}

// CreateServiceModel inserts a new service record into the database.
func CreateServiceModel(ctx context.Context, db *pgxpool.Pool, service *Service) (*Service, error) {
	logger.InfoLogger.Infof("Attempting to create service '%s' for vendor %s", service.Title, service.VendorID)

	query := `
		INSERT INTO services (
			id, vendor_id, vendor_name, title, description, category, price,
			status, images, location, latitude, longitude, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		) RETURNING id`

	var insertedID uuid.UUID
	err := db.QueryRow(ctx, query,
		service.ID, service.VendorID, service.VendorName, service.Title,
		service.Description, service.Category, service.Price, service.Status,
		service.Images, service.Location, service.Latitude, service.Longitude,
		service.CreatedAt, service.UpdatedAt,
	).Scan(&insertedID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert service '%s': %v", service.Title, err)
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	service.ID = insertedID
	logger.InfoLogger.Infof("Service %s created successfully", service.ID)
	return service, nil
}

// GetServiceByIDModel fetches a service record by its ID.
func GetServiceByIDModel(ctx context.Context, db *pgxpool.Pool, serviceID uuid.UUID) (*Service, error) {
	query := fmt.Sprintf(`SELECT %s FROM services WHERE id = $1`, serviceColumns)
	service, err := scanService(db.QueryRow(ctx, query, serviceID))
	if err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			logger.WarnLogger.Warnf("Service with ID %s not found", serviceID)
		}
		return nil, err
	}
	return service, nil
}

// GetServicesByVendor retrieves all services belonging to a vendor.
func GetServicesByVendor(ctx context.Context, db *pgxpool.Pool, vendorID uuid.UUID) ([]Service, error) {
	query := fmt.Sprintf(`SELECT %s FROM services WHERE vendor_id = $1 ORDER BY created_at DESC`, serviceColumns)

	rows, err := db.Query(ctx, query, vendorID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch services for vendor %s: %v", vendorID, err)
		return nil, fmt.Errorf("failed to fetch services: %w", err)
	}
	defer rows.Close()

	return collectServices(rows)
}

// GetActiveServices retrieves active services with pagination and an optional
// category filter, newest first.
func GetActiveServices(ctx context.Context, db *pgxpool.Pool, category string, page, limit int) ([]Service, int, error) {
	offset := (page - 1) * limit
	var totalCount int

	baseQuery := fmt.Sprintf(`SELECT %s FROM services WHERE status = 'active'`, serviceColumns)
	countQuery := `SELECT COUNT(*) FROM services WHERE status = 'active'`

	var query string
	var args []interface{}

	if category != "" {
		baseQuery += " AND category = $1"
		countQuery += " AND category = $1"
		args = append(args, category)
		query = baseQuery + " ORDER BY created_at DESC LIMIT $2 OFFSET $3"
		args = append(args, limit, offset)
	} else {
		query = baseQuery + " ORDER BY created_at DESC LIMIT $1 OFFSET $2"
		args = append(args, limit, offset)
	}

	err := db.QueryRow(ctx, countQuery, args[:len(args)-2]...).Scan(&totalCount)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to get service count: %v", err)
		return nil, 0, fmt.Errorf("failed to get service count: %w", err)
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch services: %v", err)
		return nil, 0, fmt.Errorf("failed to fetch services: %w", err)
	}
	defer rows.Close()

	services, err := collectServices(rows)
	if err != nil {
		return nil, 0, err
	}
	return services, totalCount, nil
}

// UpdateServiceModel updates the mutable fields of a service.
func UpdateServiceModel(ctx context.Context, db *pgxpool.Pool, service *Service) error {
	cmdTag, err := db.Exec(ctx, `
		UPDATE services
		SET title = $2, description = $3, category = $4, price = $5,
			images = $6, location = $7, latitude = $8, longitude = $9,
			updated_at = $10
		WHERE id = $1`,
		service.ID, service.Title, service.Description, service.Category,
		service.Price, service.Images, service.Location, service.Latitude,
		service.Longitude, time.Now())
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to update service %s: %v", service.ID, err)
		return fmt.Errorf("failed to update service: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrServiceNotFound
	}
	return nil
}

// SetServiceStatus toggles a service between active and inactive.
func SetServiceStatus(ctx context.Context, db *pgxpool.Pool, serviceID uuid.UUID, status string) error {
	cmdTag, err := db.Exec(ctx,
		`UPDATE services SET status = $2, updated_at = $3 WHERE id = $1`,
		serviceID, status, time.Now())
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to set status for service %s: %v", serviceID, err)
		return fmt.Errorf("failed to update service status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrServiceNotFound
	}
	logger.InfoLogger.Infof("Service %s status set to %s", serviceID, status)
	return nil
}

// DeleteServiceModel removes a service record.
func DeleteServiceModel(ctx context.Context, db *pgxpool.Pool, serviceID uuid.UUID) error {
	cmdTag, err := db.Exec(ctx, `DELETE FROM services WHERE id = $1`, serviceID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to delete service %s: %v", serviceID, err)
		return fmt.Errorf("failed to delete service: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrServiceNotFound
	}
	return nil
}

func collectServices(rows pgx.Rows) ([]Service, error) {
	var services []Service
	for rows.Next() {
		var service Service
		err := rows.Scan(
			&service.ID,
			&service.VendorID,
			&service.VendorName,
			&service.Title,
			&service.Description,
			&service.Category,
			&service.Price,
			&service.Status,
			&service.Images,
			&service.Location,
			&service.Latitude,
			&service.Longitude,
			&service.CreatedAt,
			&service.UpdatedAt,
		)
		if err != nil {
			logger.ErrorLogger.Errorf("Failed to scan service row: %v", err)
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, service)
	}
	return services, nil
}
