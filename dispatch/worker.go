package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dreamevents/marketplace/logger"
)

type outboxStore interface {
	ClaimDue(ctx context.Context, limit int) ([]OutboxEntry, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	Reschedule(ctx context.Context, id uuid.UUID, attempts int, nextAttemptAt time.Time, lastError string) error
	MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastError string) error
}

type eventNotifier interface {
	Notify(ctx context.Context, recipientID, senderID uuid.UUID, ev Event) (uuid.UUID, error)
}

// Worker drains the notification outbox: it claims due entries on an interval,
// hands each to the dispatcher, and reschedules failures with a doubling delay
// until maxAttempts is spent.
type Worker struct {
	outbox   outboxStore
	notifier eventNotifier

	interval    time.Duration
	batchSize   int
	maxAttempts int
	retryDelay  time.Duration
}

// NewWorker creates a Worker with production defaults.
func NewWorker(outbox outboxStore, notifier eventNotifier) *Worker {
	return &Worker{
		outbox:      outbox,
		notifier:    notifier,
		interval:    5 * time.Second,
		batchSize:   32,
		maxAttempts: 5,
		retryDelay:  30 * time.Second,
	}
}

// Run processes the outbox until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	logger.InfoLogger.Info("Notification outbox worker started")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Entries enqueued before startup should not wait out a full interval.
	w.processDue(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.InfoLogger.Info("Notification outbox worker stopped")
			return
		case <-ticker.C:
			w.processDue(ctx)
		}
	}
}

func (w *Worker) processDue(ctx context.Context) {
	entries, err := w.outbox.ClaimDue(ctx, w.batchSize)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to claim due outbox entries: %v", err)
		return
	}

	for i := range entries {
		if ctx.Err() != nil {
			return
		}
		w.process(ctx, &entries[i])
	}
}

func (w *Worker) process(ctx context.Context, entry *OutboxEntry) {
	ev, err := decodeEvent(entry.EventType, entry.Payload)
	if err != nil {
		// Undecodable entries can never succeed.
		logger.ErrorLogger.Errorf("Dropping outbox entry %s: %v", entry.ID, err)
		w.settleFailed(ctx, entry, err)
		return
	}

	_, err = w.notifier.Notify(ctx, entry.RecipientID, entry.SenderID, ev)
	if err == nil {
		if err := w.outbox.MarkSent(ctx, entry.ID); err != nil {
			logger.ErrorLogger.Errorf("Failed to settle outbox entry %s: %v", entry.ID, err)
		}
		return
	}

	if errors.Is(err, ErrRecipientNotFound) {
		logger.ErrorLogger.Errorf("Outbox entry %s has no recipient, failing permanently", entry.ID)
		w.settleFailed(ctx, entry, err)
		return
	}

	attempts := entry.Attempts + 1
	if attempts >= w.maxAttempts {
		logger.ErrorLogger.Errorf("Outbox entry %s exhausted %d attempts: %v", entry.ID, attempts, err)
		w.settleFailed(ctx, entry, err)
		return
	}

	delay := w.retryDelay << (attempts - 1)
	logger.WarnLogger.Warnf("Outbox entry %s failed (attempt %d/%d), retrying in %v: %v",
		entry.ID, attempts, w.maxAttempts, delay, err)
	if err := w.outbox.Reschedule(ctx, entry.ID, attempts, time.Now().Add(delay), err.Error()); err != nil {
		logger.ErrorLogger.Errorf("Failed to reschedule outbox entry %s: %v", entry.ID, err)
	}
}

func (w *Worker) settleFailed(ctx context.Context, entry *OutboxEntry, cause error) {
	if err := w.outbox.MarkFailed(ctx, entry.ID, entry.Attempts+1, cause.Error()); err != nil {
		logger.ErrorLogger.Errorf("Failed to settle outbox entry %s: %v", entry.ID, err)
	}
}
