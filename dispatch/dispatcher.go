package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dreamevents/marketplace/logger"
	"github.com/dreamevents/marketplace/models/notification_models"
	"github.com/dreamevents/marketplace/models/user_models"
)

// ErrRecipientNotFound indicates the notification's recipient id does not
// resolve to a user record. Unlike delivery failures this propagates, since it
// points at a data-integrity problem rather than a flaky channel.
var ErrRecipientNotFound = errors.New("notification recipient not found")

type userStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*user_models.User, error)
	IncrementUnread(ctx context.Context, id uuid.UUID) error
}

type notificationStore interface {
	CreateNotification(ctx context.Context, n *notification_models.Notification) (*notification_models.Notification, error)
}

type pushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

type emailSender interface {
	Send(to, subject, body string) error
}

// Dispatcher delivers a booking event to one recipient across two independent
// channels. The persisted notification record is the primary channel: its
// failure propagates. Push and email are advisory; each failure is logged and
// swallowed so a flaky channel can never fail the caller's state change.
type Dispatcher struct {
	users         userStore
	notifications notificationStore
	push          pushSender
	email         emailSender

	writeAttempts int
	backoffBase   time.Duration
}

// New creates a Dispatcher. push and email may be nil, which disables the
// corresponding channel.
func New(users userStore, notifications notificationStore, push pushSender, email emailSender) *Dispatcher {
	return &Dispatcher{
		users:         users,
		notifications: notifications,
		push:          push,
		email:         email,
		writeAttempts: 3,
		backoffBase:   time.Second,
	}
}

// Notify records ev for recipientID and attempts push and email delivery.
// It returns the persisted notification's id, or uuid.Nil when the recipient
// has notifications disabled.
func (d *Dispatcher) Notify(ctx context.Context, recipientID, senderID uuid.UUID, ev Event) (uuid.UUID, error) {
	msg, err := render(ev)
	if err != nil {
		return uuid.Nil, err
	}

	recipient, err := d.users.GetUser(ctx, recipientID)
	if err != nil {
		if errors.Is(err, user_models.ErrUserNotFound) {
			logger.ErrorLogger.Errorf("Notification recipient %s not found", recipientID)
			return uuid.Nil, ErrRecipientNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to look up recipient %s: %w", recipientID, err)
	}

	if !recipient.NotificationsEnabled {
		logger.InfoLogger.Infof("Notifications disabled for recipient %s, skipping %s", recipientID, msg.Type)
		return uuid.Nil, nil
	}

	record, err := notification_models.NewNotification(recipientID, senderID, msg.Title, msg.Body, msg.Type, msg.Priority)
	if err != nil {
		return uuid.Nil, err
	}
	record.BookingID = &msg.BookingID
	record.ServiceID = &msg.ServiceID

	created, err := d.createWithRetry(ctx, record)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to persist notification for recipient %s: %v", recipientID, err)
		return uuid.Nil, err
	}

	// Push and email are attempted sequentially and independently. Neither
	// failure rolls back the persisted record.
	if recipient.PushToken != nil && *recipient.PushToken != "" {
		data := map[string]string{
			"notificationId": created.ID.String(),
			"type":           msg.Type,
			"bookingId":      msg.BookingID.String(),
			"serviceId":      msg.ServiceID.String(),
			"priority":       msg.Priority,
		}
		if d.push == nil {
			logger.WarnLogger.Warnf("Push channel not configured, skipping push for notification %s", created.ID)
		} else if err := d.push.Send(ctx, *recipient.PushToken, msg.Title, msg.Body, data); err != nil {
			logger.ErrorLogger.Errorf("Push delivery failed for notification %s: %v", created.ID, err)
		} else {
			logger.InfoLogger.Infof("Push delivered for notification %s", created.ID)
		}
	}

	if recipient.Email != "" {
		if d.email == nil {
			logger.WarnLogger.Warnf("Email channel not configured, skipping email for notification %s", created.ID)
		} else if err := d.email.Send(recipient.Email, msg.EmailSubject, msg.EmailBody); err != nil {
			logger.ErrorLogger.Errorf("Email delivery failed for notification %s: %v", created.ID, err)
		} else {
			logger.InfoLogger.Infof("Email delivered for notification %s to %s", created.ID, recipient.Email)
		}
	}

	if err := d.users.IncrementUnread(ctx, recipientID); err != nil {
		logger.ErrorLogger.Errorf("Failed to bump unread counter for recipient %s: %v", recipientID, err)
	}

	return created.ID, nil
}

// createWithRetry persists the notification record, retrying transient store
// errors with exponential backoff (base delay doubling per attempt).
func (d *Dispatcher) createWithRetry(ctx context.Context, record *notification_models.Notification) (*notification_models.Notification, error) {
	var lastErr error
	delay := d.backoffBase

	for attempt := 1; attempt <= d.writeAttempts; attempt++ {
		created, err := d.notifications.CreateNotification(ctx, record)
		if err == nil {
			return created, nil
		}
		lastErr = err

		if !isTransient(err) {
			return nil, err
		}
		if attempt == d.writeAttempts {
			break
		}

		logger.WarnLogger.Warnf("Transient error writing notification (attempt %d/%d), retrying in %v: %v",
			attempt, d.writeAttempts, delay, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return nil, fmt.Errorf("notification write failed after %d attempts: %w", d.writeAttempts, lastErr)
}
