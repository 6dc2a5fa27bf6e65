package booking_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dreamevents/marketplace/logger"
	"github.com/dreamevents/marketplace/models/service_models"
	"github.com/dreamevents/marketplace/models/shared_models"
)

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrBookingNotPending = errors.New("booking is not pending")
)

// Booking represents a customer's request to engage a vendor's service for an
// event. Service and vendor display fields are denormalized copies captured at
// creation time. Amounts are minor currency units.
type Booking struct {
	ID              uuid.UUID  `json:"id"`
	ServiceID       uuid.UUID  `json:"service_id"`
	ServiceName     string     `json:"service_name"`
	ServicePrice    int64      `json:"service_price"`
	VendorID        uuid.UUID  `json:"vendor_id"`
	VendorName      string     `json:"vendor_name"`
	CustomerID      uuid.UUID  `json:"customer_id"`
	CustomerName    string     `json:"customer_name"`
	CustomerEmail   string     `json:"customer_email"`
	CustomerPhone   string     `json:"customer_phone"`
	EventDate       time.Time  `json:"event_date"`
	EventTime       string     `json:"event_time"`
	EventLocation   string     `json:"event_location"`
	GuestCount      int        `json:"guest_count"`
	SpecialRequests string     `json:"special_requests,omitempty"`
	Status          string     `json:"status"`
	TotalAmount     int64      `json:"total_amount"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	UpdatedBy       *uuid.UUID `json:"updated_by,omitempty"`
	ActionTimestamp *time.Time `json:"action_timestamp,omitempty"`
}

// NewBooking creates a pending Booking for the given service, denormalizing
// the service's display fields and price. TotalAmount equals the service price
// at creation time.
func NewBooking(service *service_models.Service, customerID uuid.UUID, customerName, customerEmail, customerPhone string) (*Booking, error) {
	id, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for booking: %w", err)
	}
	now := time.Now()
	return &Booking{
		ID:            id,
		ServiceID:     service.ID,
		ServiceName:   service.Title,
		ServicePrice:  service.Price,
		VendorID:      service.VendorID,
		VendorName:    service.VendorName,
		CustomerID:    customerID,
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		CustomerPhone: customerPhone,
		Status:        shared_models.BookingStatusPending,
		TotalAmount:   service.Price,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

const bookingColumns = `id, service_id, service_name, service_price, vendor_id,
	vendor_name, customer_id, customer_name, customer_email, customer_phone,
	event_date, event_time, event_location, guest_count, special_requests,
	status, total_amount, created_at, updated_at, updated_by, action_timestamp`

func scanBooking(row pgx.Row) (*Booking, error) {
	booking := &Booking{}
	err := row.Scan(
		&booking.ID,
		&booking.ServiceID,
		&booking.ServiceName,
		&booking.ServicePrice,
		&booking.VendorID,
		&booking.VendorName,
		&booking.CustomerID,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&booking.CustomerPhone,
		&booking.EventDate,
		&booking.EventTime,
		&booking.EventLocation,
		&booking.GuestCount,
		&booking.SpecialRequests,
		&booking.Status,
		&booking.TotalAmount,
		&booking.CreatedAt,
		&booking.UpdatedAt,
		&booking.UpdatedBy,
		&booking.ActionTimestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("database error fetching booking: %w", err)
	}
	return booking, nil
}

// CreateBooking inserts a new booking record into the database.
func CreateBooking(ctx context.Context, db *pgxpool.Pool, booking *Booking) (*Booking, error) {
	logger.InfoLogger.Infof("Attempting to create booking for service %s, customer %s", booking.ServiceID, booking.CustomerID)

	query := `
		INSERT INTO bookings (
			id, service_id, service_name, service_price, vendor_id, vendor_name,
			customer_id, customer_name, customer_email, customer_phone,
			event_date, event_time, event_location, guest_count, special_requests,
			status, total_amount, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19
		) RETURNING id`

	var insertedID uuid.UUID
	err := db.QueryRow(ctx, query,
		booking.ID, booking.ServiceID, booking.ServiceName, booking.ServicePrice,
		booking.VendorID, booking.VendorName, booking.CustomerID, booking.CustomerName,
		booking.CustomerEmail, booking.CustomerPhone, booking.EventDate, booking.EventTime,
		booking.EventLocation, booking.GuestCount, booking.SpecialRequests,
		booking.Status, booking.TotalAmount, booking.CreatedAt, booking.UpdatedAt,
	).Scan(&insertedID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert booking for service %s: %v", booking.ServiceID, err)
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	booking.ID = insertedID
	logger.InfoLogger.Infof("Booking %s created successfully (status %s)", booking.ID, booking.Status)
	return booking, nil
}

// GetBookingByID fetches a booking record by its ID.
func GetBookingByID(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID) (*Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1`, bookingColumns)
	booking, err := scanBooking(db.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			logger.WarnLogger.Warnf("Booking with ID %s not found", bookingID)
		}
		return nil, err
	}
	return booking, nil
}

// UpdateBookingStatusIfPending transitions a booking out of pending, stamping
// the acting user and the action time. The status predicate in the UPDATE is
// the optimistic guard: if two decisions race on the same record, exactly one
// write wins and the loser observes ErrBookingNotPending.
func UpdateBookingStatusIfPending(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID, newStatus string, updatedBy uuid.UUID) (*Booking, error) {
	logger.InfoLogger.Infof("Transitioning booking %s to %s", bookingID, newStatus)

	query := fmt.Sprintf(`
		UPDATE bookings
		SET status = $2, updated_at = $3, updated_by = $4, action_timestamp = $3
		WHERE id = $1 AND status = '%s'
		RETURNING %s`, shared_models.BookingStatusPending, bookingColumns)

	now := time.Now()
	booking, err := scanBooking(db.QueryRow(ctx, query, bookingID, newStatus, now, updatedBy))
	if err == nil {
		logger.InfoLogger.Infof("Booking %s transitioned to %s by %s", bookingID, newStatus, updatedBy)
		return booking, nil
	}
	if !errors.Is(err, ErrBookingNotFound) {
		logger.ErrorLogger.Errorf("Failed to update booking %s status: %v", bookingID, err)
		return nil, err
	}

	// The guarded update matched nothing: either the booking does not exist or
	// it already left pending. Re-read to tell the two apart.
	current, readErr := GetBookingByID(ctx, db, bookingID)
	if readErr != nil {
		return nil, readErr
	}
	logger.WarnLogger.Warnf("Booking %s is %s, not pending; decision rejected", bookingID, current.Status)
	return nil, ErrBookingNotPending
}

// GetBookingsByCustomer retrieves bookings for a customer with pagination and
// an optional status filter, newest first.
func GetBookingsByCustomer(ctx context.Context, db *pgxpool.Pool, customerID uuid.UUID, status string, page, limit int) ([]Booking, int, error) {
	return getBookingsByOwner(ctx, db, "customer_id", customerID, status, page, limit)
}

// GetBookingsByVendor retrieves bookings addressed to a vendor with pagination
// and an optional status filter, newest first.
func GetBookingsByVendor(ctx context.Context, db *pgxpool.Pool, vendorID uuid.UUID, status string, page, limit int) ([]Booking, int, error) {
	return getBookingsByOwner(ctx, db, "vendor_id", vendorID, status, page, limit)
}

func getBookingsByOwner(ctx context.Context, db *pgxpool.Pool, ownerColumn string, ownerID uuid.UUID, status string, page, limit int) ([]Booking, int, error) {
	offset := (page - 1) * limit
	var totalCount int

	baseQuery := fmt.Sprintf(`SELECT %s FROM bookings WHERE %s = $1`, bookingColumns, ownerColumn)
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM bookings WHERE %s = $1`, ownerColumn)

	var query string
	args := []interface{}{ownerID}

	if status != "" {
		baseQuery += " AND status = $2"
		countQuery += " AND status = $2"
		args = append(args, status)
		query = baseQuery + " ORDER BY created_at DESC LIMIT $3 OFFSET $4"
		args = append(args, limit, offset)
	} else {
		query = baseQuery + " ORDER BY created_at DESC LIMIT $2 OFFSET $3"
		args = append(args, limit, offset)
	}

	err := db.QueryRow(ctx, countQuery, args[:len(args)-2]...).Scan(&totalCount)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to get booking count for %s %s: %v", ownerColumn, ownerID, err)
		return nil, 0, fmt.Errorf("failed to get booking count: %w", err)
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch bookings for %s %s: %v", ownerColumn, ownerID, err)
		return nil, 0, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	defer rows.Close()

	var bookings []Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			logger.ErrorLogger.Errorf("Failed to scan booking row: %v", err)
			return nil, 0, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *booking)
	}

	logger.InfoLogger.Infof("Fetched %d bookings for %s %s (total: %d)", len(bookings), ownerColumn, ownerID, totalCount)
	return bookings, totalCount, nil
}
