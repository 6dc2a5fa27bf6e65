package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamevents/marketplace/clients"
	"github.com/dreamevents/marketplace/logger"
	"github.com/dreamevents/marketplace/models/notification_models"
	"github.com/dreamevents/marketplace/models/shared_models"
	"github.com/dreamevents/marketplace/models/user_models"
)

func TestMain(m *testing.M) {
	logger.InitLoggers()
	m.Run()
}

type fakeUserStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]*user_models.User
	getErr     error
	increments map[uuid.UUID]int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:      make(map[uuid.UUID]*user_models.User),
		increments: make(map[uuid.UUID]int),
	}
}

func (f *fakeUserStore) GetUser(ctx context.Context, id uuid.UUID) (*user_models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, user_models.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) IncrementUnread(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.increments[id]++
	return nil
}

type fakeNotificationStore struct {
	mu      sync.Mutex
	created []*notification_models.Notification
	// errs are consumed one per CreateNotification call; nil means success.
	errs []error
}

func (f *fakeNotificationStore) CreateNotification(ctx context.Context, n *notification_models.Notification) (*notification_models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	f.created = append(f.created, n)
	return n, nil
}

func (f *fakeNotificationStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

type fakePushSender struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakePushSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

type fakeEmailSender struct {
	mu       sync.Mutex
	calls    int
	lastTo   string
	lastSubj string
	err      error
}

func (f *fakeEmailSender) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastTo = to
	f.lastSubj = subject
	return f.err
}

func testRecipient(pushToken string) *user_models.User {
	id := uuid.New()
	u := &user_models.User{
		ID:                   id,
		Name:                 "Priya Sharma",
		Email:                "priya@example.com",
		Role:                 shared_models.RoleVendor,
		NotificationsEnabled: true,
	}
	if pushToken != "" {
		u.PushToken = &pushToken
	}
	return u
}

func testEvent() Event {
	return BookingRequested{
		BookingID:    uuid.New(),
		ServiceID:    uuid.New(),
		ServiceName:  "Wedding Photography",
		CustomerName: "Rahul Verma",
		EventDate:    "2026-03-14",
	}
}

func newTestDispatcher(users *fakeUserStore, notes *fakeNotificationStore, push *fakePushSender, email *fakeEmailSender) *Dispatcher {
	// A nil fake stays an absent channel rather than a typed-nil interface.
	d := New(users, notes, nil, nil)
	if push != nil {
		d.push = push
	}
	if email != nil {
		d.email = email
	}
	d.backoffBase = time.Millisecond
	return d
}

func TestNotifyUnconfiguredPushClient(t *testing.T) {
	t.Setenv("PUSH_API_URL", "")

	users := newFakeUserStore()
	recipient := testRecipient("device-token-9")
	users.users[recipient.ID] = recipient

	notes := &fakeNotificationStore{}
	email := &fakeEmailSender{}
	// Wired the way main constructs it, so an unset PUSH_API_URL cannot
	// take down a Notify for a push-token-holding recipient.
	d := New(users, notes, clients.NewPushClient(), email)

	id, err := d.Notify(context.Background(), recipient.ID, uuid.New(), testEvent())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, 1, notes.count())
	assert.Equal(t, 1, email.calls)
}

func TestNotifyDeliversAllChannels(t *testing.T) {
	users := newFakeUserStore()
	recipient := testRecipient("device-token-1")
	users.users[recipient.ID] = recipient

	notes := &fakeNotificationStore{}
	push := &fakePushSender{}
	email := &fakeEmailSender{}
	d := newTestDispatcher(users, notes, push, email)

	id, err := d.Notify(context.Background(), recipient.ID, uuid.New(), testEvent())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	require.Equal(t, 1, notes.count())
	record := notes.created[0]
	assert.Equal(t, shared_models.NotificationTypeBookingRequested, record.Type)
	assert.Equal(t, "New Booking Request", record.Title)
	assert.Contains(t, record.Body, "Rahul Verma")
	assert.Contains(t, record.Body, "Wedding Photography")
	require.NotNil(t, record.BookingID)

	assert.Equal(t, 1, push.calls)
	assert.Equal(t, 1, email.calls)
	assert.Equal(t, "priya@example.com", email.lastTo)
	assert.Equal(t, "New Booking Request - DreamEvents", email.lastSubj)
	assert.Equal(t, 1, users.increments[recipient.ID])
}

func TestNotifySkipsDisabledRecipient(t *testing.T) {
	users := newFakeUserStore()
	recipient := testRecipient("device-token-1")
	recipient.NotificationsEnabled = false
	users.users[recipient.ID] = recipient

	notes := &fakeNotificationStore{}
	push := &fakePushSender{}
	email := &fakeEmailSender{}
	d := newTestDispatcher(users, notes, push, email)

	id, err := d.Notify(context.Background(), recipient.ID, uuid.New(), testEvent())
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)

	assert.Zero(t, notes.count())
	assert.Zero(t, push.calls)
	assert.Zero(t, email.calls)
	assert.Zero(t, users.increments[recipient.ID])
}

func TestNotifyUnknownRecipient(t *testing.T) {
	users := newFakeUserStore()
	notes := &fakeNotificationStore{}
	d := newTestDispatcher(users, notes, nil, nil)

	_, err := d.Notify(context.Background(), uuid.New(), uuid.New(), testEvent())
	assert.ErrorIs(t, err, ErrRecipientNotFound)
	assert.Zero(t, notes.count())
}

func TestNotifyPushFailureDoesNotPropagate(t *testing.T) {
	users := newFakeUserStore()
	recipient := testRecipient("device-token-1")
	users.users[recipient.ID] = recipient

	notes := &fakeNotificationStore{}
	push := &fakePushSender{err: errors.New("fcm unavailable")}
	email := &fakeEmailSender{}
	d := newTestDispatcher(users, notes, push, email)

	id, err := d.Notify(context.Background(), recipient.ID, uuid.New(), testEvent())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	// Email is still attempted and the record stands.
	assert.Equal(t, 1, push.calls)
	assert.Equal(t, 1, email.calls)
	assert.Equal(t, 1, notes.count())
	assert.Equal(t, 1, users.increments[recipient.ID])
}

func TestNotifyEmailFailureDoesNotPropagate(t *testing.T) {
	users := newFakeUserStore()
	recipient := testRecipient("")
	users.users[recipient.ID] = recipient

	notes := &fakeNotificationStore{}
	email := &fakeEmailSender{err: errors.New("smtp timeout")}
	d := newTestDispatcher(users, notes, nil, email)

	id, err := d.Notify(context.Background(), recipient.ID, uuid.New(), testEvent())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, 1, email.calls)
	assert.Equal(t, 1, users.increments[recipient.ID])
}

func TestNotifyNoPushTokenSkipsPush(t *testing.T) {
	users := newFakeUserStore()
	recipient := testRecipient("")
	users.users[recipient.ID] = recipient

	notes := &fakeNotificationStore{}
	push := &fakePushSender{}
	email := &fakeEmailSender{}
	d := newTestDispatcher(users, notes, push, email)

	_, err := d.Notify(context.Background(), recipient.ID, uuid.New(), testEvent())
	require.NoError(t, err)
	assert.Zero(t, push.calls)
	assert.Equal(t, 1, email.calls)
}

func TestCreateWithRetryTransientThenSuccess(t *testing.T) {
	users := newFakeUserStore()
	recipient := testRecipient("")
	users.users[recipient.ID] = recipient

	transient := &pgconn.PgError{Code: "40001"}
	notes := &fakeNotificationStore{errs: []error{transient, transient, nil}}
	d := newTestDispatcher(users, notes, nil, nil)

	id, err := d.Notify(context.Background(), recipient.ID, uuid.New(), testEvent())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, 1, notes.count())
}

func TestCreateWithRetryGivesUpAfterAttempts(t *testing.T) {
	users := newFakeUserStore()
	recipient := testRecipient("")
	users.users[recipient.ID] = recipient

	transient := &pgconn.PgError{Code: "40001"}
	notes := &fakeNotificationStore{errs: []error{transient, transient, transient}}
	push := &fakePushSender{}
	email := &fakeEmailSender{}
	d := newTestDispatcher(users, notes, push, email)

	_, err := d.Notify(context.Background(), recipient.ID, uuid.New(), testEvent())
	require.Error(t, err)
	assert.Zero(t, notes.count())
	// No record means no delivery and no counter bump.
	assert.Zero(t, push.calls)
	assert.Zero(t, email.calls)
	assert.Zero(t, users.increments[recipient.ID])
}

func TestCreateWithRetryPermanentFailsImmediately(t *testing.T) {
	users := newFakeUserStore()
	recipient := testRecipient("")
	users.users[recipient.ID] = recipient

	permissionDenied := &pgconn.PgError{Code: "42501"}
	notes := &fakeNotificationStore{errs: []error{permissionDenied, nil, nil}}
	d := newTestDispatcher(users, notes, nil, nil)

	_, err := d.Notify(context.Background(), recipient.ID, uuid.New(), testEvent())
	require.Error(t, err)
	// A second attempt would have succeeded, so zero records proves the
	// permanent error was not retried.
	assert.Zero(t, notes.count())
}

func TestRenderBookingConfirmed(t *testing.T) {
	ev := BookingConfirmed{
		BookingID:   uuid.New(),
		ServiceID:   uuid.New(),
		ServiceName: "Banquet Hall",
		EventDate:   "2026-05-02",
	}

	msg, err := render(ev)
	require.NoError(t, err)
	assert.Equal(t, shared_models.NotificationTypeBookingConfirmed, msg.Type)
	assert.Equal(t, shared_models.PriorityHigh, msg.Priority)
	assert.Equal(t, "Booking Confirmed", msg.Title)
	assert.Equal(t, "Your booking for Banquet Hall has been confirmed!", msg.Body)
	assert.Equal(t, "Booking Confirmed - DreamEvents", msg.EmailSubject)
	assert.Contains(t, msg.EmailBody, "2026-05-02")
}

func TestRenderBookingCancelled(t *testing.T) {
	ev := BookingCancelled{
		BookingID:   uuid.New(),
		ServiceID:   uuid.New(),
		ServiceName: "Banquet Hall",
		EventDate:   "2026-05-02",
	}

	msg, err := render(ev)
	require.NoError(t, err)
	assert.Equal(t, shared_models.NotificationTypeBookingCancelled, msg.Type)
	assert.Equal(t, "Booking Cancelled", msg.Title)
	assert.Equal(t, "Booking Update - DreamEvents", msg.EmailSubject)
	assert.Contains(t, msg.EmailBody, "declined")
}
