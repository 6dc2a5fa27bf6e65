package package_models

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

var ErrPackageNotFound = errors.New("package not found")

// Package is a vendor-defined bundle of services sold at a combined price.
type Package struct {
	ID          uuid.UUID   `json:"id"`
	VendorID    uuid.UUID   `json:"vendor_id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	ServiceIDs  []uuid.UUID `json:"service_ids"`
	Price       int64       `json:"price"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewPackage creates a new Package struct.
func NewPackage(vendorID uuid.UUID, name, description string, serviceIDs []uuid.UUID, price int64) (*Package, error) {
	id, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for package: %w", err)
	}
	now := time.Now()
	return &Package{
		ID:          id,
		VendorID:    vendorID,
		Name:        name,
		Description: description,
		ServiceIDs:  serviceIDs,
		Price:       price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// CreatePackage inserts a new package record into the database.
func CreatePackage(ctx context.Context, db *pgxpool.Pool, pkg *Package) (*Package, error) {
	query := `
		INSERT INTO packages (
			id, vendor_id, name, description, service_ids, price, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		) RETURNING id`

	var insertedID uuid.UUID
	err := db.QueryRow(ctx, query,
		pkg.ID, pkg.VendorID, pkg.Name, pkg.Description, pkg.ServiceIDs,
		pkg.Price, pkg.CreatedAt, pkg.UpdatedAt,
	).Scan(&insertedID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert package '%s' for vendor %s: %v", pkg.Name, pkg.VendorID, err)
		return nil, fmt.Errorf("failed to create package: %w", err)
	}

	pkg.ID = insertedID
	logger.InfoLogger.Infof("Package %s created for vendor %s", pkg.ID, pkg.VendorID)
	return pkg, nil
}

// GetPackageByID fetches a package record by its ID.
func GetPackageByID(ctx context.Context, db *pgxpool.Pool, packageID uuid.UUID) (*Package, error) {
	pkg := &Package{}
	err := db.QueryRow(ctx, `
		SELECT id, vendor_id, name, description, service_ids, price, created_at, updated_at
		FROM packages
		WHERE id = $1`, packageID).Scan(
		&pkg.ID,
		&pkg.VendorID,
		&pkg.Name,
		&pkg.Description,
		&pkg.ServiceIDs,
		&pkg.Price,
		&pkg.CreatedAt,
		&pkg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("database error fetching package: %w", err)
	}
	return pkg, nil
}

// GetPackagesByVendor retrieves all packages belonging to a vendor.
func GetPackagesByVendor(ctx context.Context, db *pgxpool.Pool, vendorID uuid.UUID) ([]Package, error) {
	rows, err := db.Query(ctx, `
		SELECT id, vendor_id, name, description, service_ids, price, created_at, updated_at
		FROM packages
		WHERE vendor_id = $1
		ORDER BY created_at DESC`, vendorID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch packages for vendor %s: %v", vendorID, err)
		return nil, fmt.Errorf("failed to fetch packages: %w", err)
	}
	defer rows.Close()

	var packages []Package
	for rows.Next() {
		var pkg Package
		err := rows.Scan(
			&pkg.ID,
			&pkg.VendorID,
			&pkg.Name,
			&pkg.Description,
			&pkg.ServiceIDs,
			&pkg.Price,
			&pkg.CreatedAt,
			&pkg.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		packages = append(packages, pkg)
	}
	return packages, nil
}

// UpdatePackage updates the mutable fields of a package, scoped to its vendor.
func UpdatePackage(ctx context.Context, db *pgxpool.Pool, pkg *Package) error {
	cmdTag, err := db.Exec(ctx, `
		UPDATE packages
		SET name = $3, description = $4, service_ids = $5, price = $6, updated_at = $7
		WHERE id = $1 AND vendor_id = $2`,
		pkg.ID, pkg.VendorID, pkg.Name, pkg.Description, pkg.ServiceIDs, pkg.Price, time.Now())
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to update package %s: %v", pkg.ID, err)
		return fmt.Errorf("failed to update package: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrPackageNotFound
	}
	return nil
}

// DeletePackage removes a package record, scoped to its vendor.
func DeletePackage(ctx context.Context, db *pgxpool.Pool, packageID, vendorID uuid.UUID) error {
	cmdTag, err := db.Exec(ctx,
		`DELETE FROM packages WHERE id = $1 AND vendor_id = $2`, packageID, vendorID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to delete package %s: %v", packageID, err)
		return fmt.Errorf("failed to delete package: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrPackageNotFound
	}
	return nil
}
