package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dreamevents/marketplace/models/shared_models"
)

// Outbox entry statuses. An entry is claimed (processing) by exactly one
// worker pass; a lost attempt returns it to pending with a later due time.
const (
	OutboxStatusPending    = "pending"
	OutboxStatusProcessing = "processing"
	OutboxStatusSent       = "sent"
	OutboxStatusFailed     = "failed"
)

// OutboxEntry is a durably recorded notification attempt. Enqueueing an entry
// in the same request that commits the triggering write means a crash between
// the two loses at most the notification, never the booking state, and the
// worker can retry delivery without re-deriving anything from the call stack.
type OutboxEntry struct {
	ID            uuid.UUID `json:"id"`
	RecipientID   uuid.UUID `json:"recipient_id"`
	SenderID      uuid.UUID `json:"sender_id"`
	EventType     string    `json:"event_type"`
	Payload       []byte    `json:"payload"`
	Status        string    `json:"status"`
	Attempts      int       `json:"attempts"`
	NextAttemptAt time.Time `json:"next_attempt_at"`
	LastError     *string   `json:"last_error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func encodeEvent(ev Event) (string, []byte, error) {
	var eventType string
	switch ev.(type) {
	case BookingRequested:
		eventType = shared_models.NotificationTypeBookingRequested
	case BookingConfirmed:
		eventType = shared_models.NotificationTypeBookingConfirmed
	case BookingCancelled:
		eventType = shared_models.NotificationTypeBookingCancelled
	default:
		return "", nil, fmt.Errorf("unknown notification event %T", ev)
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}
	return eventType, payload, nil
}

func decodeEvent(eventType string, payload []byte) (Event, error) {
	switch eventType {
	case shared_models.NotificationTypeBookingRequested:
		var ev BookingRequested
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("failed to decode %s event: %w", eventType, err)
		}
		return ev, nil
	case shared_models.NotificationTypeBookingConfirmed:
		var ev BookingConfirmed
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("failed to decode %s event: %w", eventType, err)
		}
		return ev, nil
	case shared_models.NotificationTypeBookingCancelled:
		var ev BookingCancelled
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("failed to decode %s event: %w", eventType, err)
		}
		return ev, nil
	default:
		return nil, fmt.Errorf("unknown outbox event type %q", eventType)
	}
}

// Outbox persists notification attempts in Postgres for the dispatch worker.
type Outbox struct {
	DB *pgxpool.Pool
}

func NewOutbox(db *pgxpool.Pool) *Outbox {
	return &Outbox{DB: db}
}

const outboxColumns = `id, recipient_id, sender_id, event_type, payload, status,
	attempts, next_attempt_at, last_error, created_at, updated_at`

func scanOutboxEntry(row pgx.Row) (*OutboxEntry, error) {
	entry := &OutboxEntry{}
	err := row.Scan(
		&entry.ID,
		&entry.RecipientID,
		&entry.SenderID,
		&entry.EventType,
		&entry.Payload,
		&entry.Status,
		&entry.Attempts,
		&entry.NextAttemptAt,
		&entry.LastError,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("database error scanning outbox entry: %w", err)
	}
	return entry, nil
}

// Enqueue records a pending notification attempt due immediately.
func (o *Outbox) Enqueue(ctx context.Context, recipientID, senderID uuid.UUID, ev Event) error {
	eventType, payload, err := encodeEvent(ev)
	if err != nil {
		return err
	}

	id, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return fmt.Errorf("failed to generate UUID for outbox entry: %w", err)
	}

	query := `
		INSERT INTO notification_outbox
			(id, recipient_id, sender_id, event_type, payload, status, attempts, next_attempt_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, now(), now(), now())`

	_, err = o.DB.Exec(ctx, query, id, recipientID, senderID, eventType, payload, OutboxStatusPending)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s notification: %w", eventType, err)
	}
	return nil
}

// ClaimDue atomically moves up to limit due entries to processing and returns
// them. SKIP LOCKED keeps concurrent workers off each other's batches.
func (o *Outbox) ClaimDue(ctx context.Context, limit int) ([]OutboxEntry, error) {
	query := `
		UPDATE notification_outbox
		SET status = $1, updated_at = now()
		WHERE id IN (
			SELECT id FROM notification_outbox
			WHERE status = $2 AND next_attempt_at <= now()
			ORDER BY next_attempt_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + outboxColumns

	rows, err := o.DB.Query(ctx, query, OutboxStatusProcessing, OutboxStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim due outbox entries: %w", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		entry, err := scanOutboxEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// MarkSent settles a delivered entry.
func (o *Outbox) MarkSent(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE notification_outbox SET status = $2, updated_at = now() WHERE id = $1`
	_, err := o.DB.Exec(ctx, query, id, OutboxStatusSent)
	if err != nil {
		return fmt.Errorf("failed to mark outbox entry %s sent: %w", id, err)
	}
	return nil
}

// Reschedule returns a failed attempt to pending with a later due time.
func (o *Outbox) Reschedule(ctx context.Context, id uuid.UUID, attempts int, nextAttemptAt time.Time, lastError string) error {
	query := `
		UPDATE notification_outbox
		SET status = $2, attempts = $3, next_attempt_at = $4, last_error = $5, updated_at = now()
		WHERE id = $1`
	_, err := o.DB.Exec(ctx, query, id, OutboxStatusPending, attempts, nextAttemptAt, lastError)
	if err != nil {
		return fmt.Errorf("failed to reschedule outbox entry %s: %w", id, err)
	}
	return nil
}

// MarkFailed settles an entry that will never be delivered.
func (o *Outbox) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastError string) error {
	query := `
		UPDATE notification_outbox
		SET status = $2, attempts = $3, last_error = $4, updated_at = now()
		WHERE id = $1`
	_, err := o.DB.Exec(ctx, query, id, OutboxStatusFailed, attempts, lastError)
	if err != nil {
		return fmt.Errorf("failed to mark outbox entry %s failed: %w", id, err)
	}
	return nil
}
