package booking_controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamevents/marketplace/dispatch"
	"github.com/dreamevents/marketplace/logger"
	"github.com/dreamevents/marketplace/models/booking_models"
	"github.com/dreamevents/marketplace/models/service_models"
	"github.com/dreamevents/marketplace/models/shared_models"
	"github.com/dreamevents/marketplace/models/user_models"
)

func TestMain(m *testing.M) {
	logger.InitLoggers()
	m.Run()
}

type fakeBookingStore struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*booking_models.Booking
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: make(map[uuid.UUID]*booking_models.Booking)}
}

func (f *fakeBookingStore) CreateBooking(ctx context.Context, booking *booking_models.Booking) (*booking_models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings[booking.ID] = booking
	return booking, nil
}

func (f *fakeBookingStore) GetBookingByID(ctx context.Context, id uuid.UUID) (*booking_models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, booking_models.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingStore) UpdateBookingStatusIfPending(ctx context.Context, id uuid.UUID, newStatus string, updatedBy uuid.UUID) (*booking_models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, booking_models.ErrBookingNotFound
	}
	if b.Status != shared_models.BookingStatusPending {
		return nil, booking_models.ErrBookingNotPending
	}
	now := time.Now()
	b.Status = newStatus
	b.UpdatedAt = now
	b.UpdatedBy = &updatedBy
	b.ActionTimestamp = &now
	copied := *b
	return &copied, nil
}

type fakeServiceStore struct {
	services map[uuid.UUID]*service_models.Service
}

func (f *fakeServiceStore) GetServiceByID(ctx context.Context, id uuid.UUID) (*service_models.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, service_models.ErrServiceNotFound
	}
	return s, nil
}

type fakeUserStore struct {
	users map[uuid.UUID]*user_models.User
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, id uuid.UUID) (*user_models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, user_models.ErrUserNotFound
	}
	return u, nil
}

type dispatchCall struct {
	recipientID uuid.UUID
	senderID    uuid.UUID
	event       dispatch.Event
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []dispatchCall
	err   error
}

func (f *fakeNotifier) Notify(ctx context.Context, recipientID, senderID uuid.UUID, ev dispatch.Event) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, dispatchCall{recipientID: recipientID, senderID: senderID, event: ev})
	if f.err != nil {
		return uuid.Nil, f.err
	}
	return uuid.New(), nil
}

func (f *fakeNotifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeNotifier) lastCall(t *testing.T) dispatchCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.calls)
	return f.calls[len(f.calls)-1]
}

type fakeOutbox struct {
	mu      sync.Mutex
	entries []dispatchCall
	err     error
}

func (f *fakeOutbox) Enqueue(ctx context.Context, recipientID, senderID uuid.UUID, ev dispatch.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, dispatchCall{recipientID: recipientID, senderID: senderID, event: ev})
	return nil
}

func (f *fakeOutbox) entryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func (f *fakeOutbox) lastEntry(t *testing.T) dispatchCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.entries)
	return f.entries[len(f.entries)-1]
}

type fixture struct {
	service    *BookingService
	bookings   *fakeBookingStore
	notifier   *fakeNotifier
	outbox     *fakeOutbox
	vendorID   uuid.UUID
	customerID uuid.UUID
	catalog    *service_models.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	vendorID := uuid.New()
	customerID := uuid.New()

	catalog := &service_models.Service{
		ID:         uuid.New(),
		VendorID:   vendorID,
		VendorName: "Starlight Events",
		Title:      "Wedding Photography",
		Category:   "photography",
		Price:      4500000,
		Status:     shared_models.ServiceStatusActive,
	}

	services := &fakeServiceStore{services: map[uuid.UUID]*service_models.Service{catalog.ID: catalog}}
	users := &fakeUserStore{users: map[uuid.UUID]*user_models.User{
		customerID: {
			ID:    customerID,
			Name:  "Rahul Verma",
			Email: "rahul@example.com",
			Role:  shared_models.RoleCustomer,
		},
		vendorID: {
			ID:    vendorID,
			Name:  "Priya Sharma",
			Email: "priya@example.com",
			Role:  shared_models.RoleVendor,
		},
	}}

	bookings := newFakeBookingStore()
	notifier := &fakeNotifier{}
	outbox := &fakeOutbox{}

	return &fixture{
		service:    NewBookingService(bookings, services, users, notifier, outbox),
		bookings:   bookings,
		notifier:   notifier,
		outbox:     outbox,
		vendorID:   vendorID,
		customerID: customerID,
		catalog:    catalog,
	}
}

func validInput(serviceID uuid.UUID) CreateBookingInput {
	return CreateBookingInput{
		ServiceID:     serviceID,
		EventDate:     "2026-11-20",
		EventTime:     "18:00",
		EventLocation: "Juhu Beach, Mumbai",
		GuestCount:    150,
		ContactPhone:  "9876543210",
	}
}

func TestCreateBookingNotifiesVendor(t *testing.T) {
	f := newFixture(t)

	booking, warning, err := f.service.CreateBooking(context.Background(), f.customerID, validInput(f.catalog.ID))
	require.NoError(t, err)
	assert.Empty(t, warning)

	assert.Equal(t, shared_models.BookingStatusPending, booking.Status)
	assert.Equal(t, f.vendorID, booking.VendorID)
	assert.Equal(t, f.customerID, booking.CustomerID)
	assert.Equal(t, "Wedding Photography", booking.ServiceName)
	assert.Equal(t, f.catalog.Price, booking.TotalAmount)
	assert.Equal(t, "rahul@example.com", booking.CustomerEmail)
	assert.Equal(t, "+919876543210", booking.CustomerPhone)
	assert.Nil(t, booking.UpdatedBy)

	require.Equal(t, 1, f.notifier.callCount())
	call := f.notifier.lastCall(t)
	assert.Equal(t, f.vendorID, call.recipientID)
	assert.Equal(t, f.customerID, call.senderID)
	requested, ok := call.event.(dispatch.BookingRequested)
	require.True(t, ok, "expected a BookingRequested event, got %T", call.event)
	assert.Equal(t, booking.ID, requested.BookingID)
	assert.Equal(t, "Rahul Verma", requested.CustomerName)
	assert.Equal(t, "2026-11-20", requested.EventDate)
}

func TestCreateBookingNotifyFailureIsSoftWarning(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("dispatch down")

	booking, warning, err := f.service.CreateBooking(context.Background(), f.customerID, validInput(f.catalog.ID))
	require.NoError(t, err)
	require.NotNil(t, booking)
	assert.Equal(t, "Booking created, but failed to notify vendor.", warning)

	// The booking was persisted despite the failed notification.
	stored, err := f.bookings.GetBookingByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, shared_models.BookingStatusPending, stored.Status)
}

func TestCreateBookingValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(*CreateBookingInput)
	}{
		{"missing date", func(in *CreateBookingInput) { in.EventDate = "" }},
		{"bad date format", func(in *CreateBookingInput) { in.EventDate = "20-11-2026" }},
		{"missing time", func(in *CreateBookingInput) { in.EventTime = "" }},
		{"missing location", func(in *CreateBookingInput) { in.EventLocation = "  " }},
		{"negative guest count", func(in *CreateBookingInput) { in.GuestCount = -1 }},
		{"short phone", func(in *CreateBookingInput) { in.ContactPhone = "98765432" }},
		{"phone with bad prefix", func(in *CreateBookingInput) { in.ContactPhone = "1234567890" }},
		{"malformed email", func(in *CreateBookingInput) { in.ContactEmail = "not-an-email" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput(f.catalog.ID)
			tt.mutate(&in)

			_, _, err := f.service.CreateBooking(context.Background(), f.customerID, in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	assert.Zero(t, f.notifier.callCount())
}

func TestCreateBookingUnknownService(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.service.CreateBooking(context.Background(), f.customerID, validInput(uuid.New()))
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestCreateBookingInactiveService(t *testing.T) {
	f := newFixture(t)
	f.catalog.Status = shared_models.ServiceStatusInactive

	_, _, err := f.service.CreateBooking(context.Background(), f.customerID, validInput(f.catalog.ID))
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Zero(t, f.notifier.callCount())
}

func TestCreateBookingContactPhoneAcceptsCountryCode(t *testing.T) {
	f := newFixture(t)

	in := validInput(f.catalog.ID)
	in.ContactPhone = "+91 9876543210"

	booking, _, err := f.service.CreateBooking(context.Background(), f.customerID, in)
	require.NoError(t, err)
	assert.Equal(t, "+919876543210", booking.CustomerPhone)
}

func (f *fixture) createPendingBooking(t *testing.T) *booking_models.Booking {
	t.Helper()
	booking, _, err := f.service.CreateBooking(context.Background(), f.customerID, validInput(f.catalog.ID))
	require.NoError(t, err)
	return booking
}

func TestAcceptBookingConfirms(t *testing.T) {
	f := newFixture(t)
	booking := f.createPendingBooking(t)

	updated, err := f.service.ApplyBookingDecision(context.Background(), booking.ID, DecisionAccept, f.vendorID)
	require.NoError(t, err)

	assert.Equal(t, shared_models.BookingStatusConfirmed, updated.Status)
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, f.vendorID, *updated.UpdatedBy)
	require.NotNil(t, updated.ActionTimestamp)

	require.Equal(t, 1, f.outbox.entryCount())
	entry := f.outbox.lastEntry(t)
	assert.Equal(t, f.customerID, entry.recipientID)
	assert.Equal(t, f.vendorID, entry.senderID)
	confirmed, ok := entry.event.(dispatch.BookingConfirmed)
	require.True(t, ok, "expected a BookingConfirmed event, got %T", entry.event)
	assert.Equal(t, booking.ID, confirmed.BookingID)
	assert.Equal(t, "Wedding Photography", confirmed.ServiceName)
	assert.Equal(t, "2026-11-20", confirmed.EventDate)
}

func TestRejectBookingCancels(t *testing.T) {
	f := newFixture(t)
	booking := f.createPendingBooking(t)

	updated, err := f.service.ApplyBookingDecision(context.Background(), booking.ID, DecisionReject, f.vendorID)
	require.NoError(t, err)

	assert.Equal(t, shared_models.BookingStatusCancelled, updated.Status)

	require.Equal(t, 1, f.outbox.entryCount())
	entry := f.outbox.lastEntry(t)
	assert.Equal(t, f.customerID, entry.recipientID)
	_, ok := entry.event.(dispatch.BookingCancelled)
	require.True(t, ok, "expected a BookingCancelled event, got %T", entry.event)
}

func TestDecisionByNonOwnerRejected(t *testing.T) {
	f := newFixture(t)
	booking := f.createPendingBooking(t)

	outsider := uuid.New()
	_, err := f.service.ApplyBookingDecision(context.Background(), booking.ID, DecisionAccept, outsider)
	assert.ErrorIs(t, err, ErrNotBookingVendor)

	// The booking is untouched and nothing was enqueued for the customer.
	stored, err := f.bookings.GetBookingByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, shared_models.BookingStatusPending, stored.Status)
	assert.Zero(t, f.outbox.entryCount())
}

func TestDecisionOnNonPendingBooking(t *testing.T) {
	f := newFixture(t)
	booking := f.createPendingBooking(t)

	_, err := f.service.ApplyBookingDecision(context.Background(), booking.ID, DecisionAccept, f.vendorID)
	require.NoError(t, err)

	// A second decision, in either direction, hits the pending guard and
	// enqueues nothing further.
	_, err = f.service.ApplyBookingDecision(context.Background(), booking.ID, DecisionReject, f.vendorID)
	assert.ErrorIs(t, err, ErrBookingNotPending)

	_, err = f.service.ApplyBookingDecision(context.Background(), booking.ID, DecisionAccept, f.vendorID)
	assert.ErrorIs(t, err, ErrBookingNotPending)

	stored, err := f.bookings.GetBookingByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, shared_models.BookingStatusConfirmed, stored.Status)
	assert.Equal(t, 1, f.outbox.entryCount())
}

func TestDecisionOnUnknownBooking(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ApplyBookingDecision(context.Background(), uuid.New(), DecisionAccept, f.vendorID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestDecisionOwnershipCheckedBeforeState(t *testing.T) {
	f := newFixture(t)
	booking := f.createPendingBooking(t)

	_, err := f.service.ApplyBookingDecision(context.Background(), booking.ID, DecisionAccept, f.vendorID)
	require.NoError(t, err)

	// An outsider probing a settled booking still gets the ownership error,
	// not the state error.
	outsider := uuid.New()
	_, err = f.service.ApplyBookingDecision(context.Background(), booking.ID, DecisionReject, outsider)
	assert.ErrorIs(t, err, ErrNotBookingVendor)
}

func TestInvalidDecision(t *testing.T) {
	f := newFixture(t)
	booking := f.createPendingBooking(t)

	_, err := f.service.ApplyBookingDecision(context.Background(), booking.ID, Decision("approve"), f.vendorID)
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

func TestDecisionEnqueueFailureDoesNotFailDecision(t *testing.T) {
	f := newFixture(t)
	booking := f.createPendingBooking(t)
	f.outbox.err = errors.New("outbox unavailable")

	updated, err := f.service.ApplyBookingDecision(context.Background(), booking.ID, DecisionAccept, f.vendorID)
	require.NoError(t, err)
	assert.Equal(t, shared_models.BookingStatusConfirmed, updated.Status)
}

func TestGetBookingForUserVisibility(t *testing.T) {
	f := newFixture(t)
	booking := f.createPendingBooking(t)

	got, err := f.service.GetBookingForUser(context.Background(), booking.ID, f.customerID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)

	got, err = f.service.GetBookingForUser(context.Background(), booking.ID, f.vendorID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)

	_, err = f.service.GetBookingForUser(context.Background(), booking.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotBookingParticipant)

	_, err = f.service.GetBookingForUser(context.Background(), uuid.New(), f.customerID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestConcurrentDecisionsOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	booking := f.createPendingBooking(t)

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		decision := DecisionAccept
		if i%2 == 1 {
			decision = DecisionReject
		}
		wg.Add(1)
		go func(d Decision) {
			defer wg.Done()
			_, err := f.service.ApplyBookingDecision(context.Background(), booking.ID, d, f.vendorID)
			results <- err
		}(decision)
	}
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrBookingNotPending):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, attempts-1, lost)

	// Exactly the winning decision reached the outbox.
	assert.Equal(t, 1, f.outbox.entryCount())
}
