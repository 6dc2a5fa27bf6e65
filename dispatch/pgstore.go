package dispatch

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dreamevents/marketplace/models/notification_models"
	"github.com/dreamevents/marketplace/models/user_models"
)

// PGStore adapts the pgx model functions to the dispatcher's store interfaces.
type PGStore struct {
	DB *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{DB: db}
}

func (s *PGStore) GetUser(ctx context.Context, id uuid.UUID) (*user_models.User, error) {
	return user_models.GetUserByID(ctx, s.DB, id)
}

func (s *PGStore) IncrementUnread(ctx context.Context, id uuid.UUID) error {
	return user_models.IncrementUnreadNotifications(ctx, s.DB, id)
}

func (s *PGStore) CreateNotification(ctx context.Context, n *notification_models.Notification) (*notification_models.Notification, error) {
	return notification_models.CreateNotification(ctx, s.DB, n)
}
