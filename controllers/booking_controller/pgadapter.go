package booking_controller

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dreamevents/marketplace/models/booking_models"
	"github.com/dreamevents/marketplace/models/service_models"
	"github.com/dreamevents/marketplace/models/user_models"
)

// PGStore adapts the pgx model functions to the BookingService interfaces.
type PGStore struct {
	DB *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{DB: db}
}

func (s *PGStore) CreateBooking(ctx context.Context, booking *booking_models.Booking) (*booking_models.Booking, error) {
	return booking_models.CreateBooking(ctx, s.DB, booking)
}

func (s *PGStore) GetBookingByID(ctx context.Context, id uuid.UUID) (*booking_models.Booking, error) {
	return booking_models.GetBookingByID(ctx, s.DB, id)
}

func (s *PGStore) UpdateBookingStatusIfPending(ctx context.Context, id uuid.UUID, newStatus string, updatedBy uuid.UUID) (*booking_models.Booking, error) {
	return booking_models.UpdateBookingStatusIfPending(ctx, s.DB, id, newStatus, updatedBy)
}

func (s *PGStore) GetServiceByID(ctx context.Context, id uuid.UUID) (*service_models.Service, error) {
	return service_models.GetServiceByIDModel(ctx, s.DB, id)
}

func (s *PGStore) GetUserByID(ctx context.Context, id uuid.UUID) (*user_models.User, error) {
	return user_models.GetUserByID(ctx, s.DB, id)
}
