package notification_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dreamevents/marketplace/logger"
	"github.com/dreamevents/marketplace/models/shared_models"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Notification is the durable record of an attempted customer-facing message.
// Creation is append-only; the only mutation is the recipient marking it read.
type Notification struct {
	ID          uuid.UUID  `json:"id"`
	RecipientID uuid.UUID  `json:"recipient_id"`
	SenderID    uuid.UUID  `json:"sender_id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Type        string     `json:"type"`
	Priority    string     `json:"priority"`
	BookingID   *uuid.UUID `json:"booking_id,omitempty"`
	ServiceID   *uuid.UUID `json:"service_id,omitempty"`
	Read        bool       `json:"read"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewNotification creates a Notification struct with a fresh UUIDv7.
func NewNotification(recipientID, senderID uuid.UUID, title, body, notificationType, priority string) (*Notification, error) {
	id, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for notification: %w", err)
	}
	return &Notification{
		ID:          id,
		RecipientID: recipientID,
		SenderID:    senderID,
		Title:       title,
		Body:        body,
		Type:        notificationType,
		Priority:    priority,
		CreatedAt:   time.Now(),
	}, nil
}

// CreateNotification inserts a new notification record into the database.
func CreateNotification(ctx context.Context, db *pgxpool.Pool, n *Notification) (*Notification, error) {
	query := `
		INSERT INTO notifications (
			id, recipient_id, sender_id, title, body, type, priority,
			booking_id, service_id, read, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, $10
		) RETURNING id`

	var insertedID uuid.UUID
	err := db.QueryRow(ctx, query,
		n.ID, n.RecipientID, n.SenderID, n.Title, n.Body, n.Type, n.Priority,
		n.BookingID, n.ServiceID, n.CreatedAt,
	).Scan(&insertedID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert notification for recipient %s: %v", n.RecipientID, err)
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	n.ID = insertedID
	logger.InfoLogger.Infof("Notification %s created for recipient %s (type %s)", n.ID, n.RecipientID, n.Type)
	return n, nil
}

// GetNotificationsByRecipient retrieves a recipient's notifications newest
// first, with pagination and an optional unread-only filter.
func GetNotificationsByRecipient(ctx context.Context, db *pgxpool.Pool, recipientID uuid.UUID, unreadOnly bool, page, limit int) ([]Notification, int, error) {
	offset := (page - 1) * limit
	var totalCount int

	baseQuery := `
		SELECT id, recipient_id, sender_id, title, body, type, priority,
			booking_id, service_id, read, created_at
		FROM notifications
		WHERE recipient_id = $1`
	countQuery := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1`

	if unreadOnly {
		baseQuery += " AND read = FALSE"
		countQuery += " AND read = FALSE"
	}
	query := baseQuery + " ORDER BY created_at DESC LIMIT $2 OFFSET $3"

	err := db.QueryRow(ctx, countQuery, recipientID).Scan(&totalCount)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to get notification count for recipient %s: %v", recipientID, err)
		return nil, 0, fmt.Errorf("failed to get notification count: %w", err)
	}

	rows, err := db.Query(ctx, query, recipientID, limit, offset)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch notifications for recipient %s: %v", recipientID, err)
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&n.SenderID,
			&n.Title,
			&n.Body,
			&n.Type,
			&n.Priority,
			&n.BookingID,
			&n.ServiceID,
			&n.Read,
			&n.CreatedAt,
		)
		if err != nil {
			logger.ErrorLogger.Errorf("Failed to scan notification row: %v", err)
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	return notifications, totalCount, nil
}

// MarkNotificationRead marks a notification read, scoped to the recipient so
// one user cannot mark another's notifications.
func MarkNotificationRead(ctx context.Context, db *pgxpool.Pool, notificationID, recipientID uuid.UUID) error {
	cmdTag, err := db.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND recipient_id = $2`,
		notificationID, recipientID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to mark notification %s read: %v", notificationID, err)
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// CountUnreadNotifications returns the unread count for a recipient.
func CountUnreadNotifications(ctx context.Context, db *pgxpool.Pool, recipientID uuid.UUID) (int, error) {
	var count int
	err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND read = FALSE`,
		recipientID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
