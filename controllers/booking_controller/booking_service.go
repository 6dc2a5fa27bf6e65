package booking_controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dreamevents/marketplace/dispatch"
	"github.com/dreamevents/marketplace/logger"
	"github.com/dreamevents/marketplace/models/booking_models"
	"github.com/dreamevents/marketplace/models/service_models"
	"github.com/dreamevents/marketplace/models/shared_models"
	"github.com/dreamevents/marketplace/models/user_models"
	"github.com/dreamevents/marketplace/utils"
)

// Decision is a vendor's verdict on a pending booking.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

type bookingStore interface {
	CreateBooking(ctx context.Context, booking *booking_models.Booking) (*booking_models.Booking, error)
	GetBookingByID(ctx context.Context, id uuid.UUID) (*booking_models.Booking, error)
	UpdateBookingStatusIfPending(ctx context.Context, id uuid.UUID, newStatus string, updatedBy uuid.UUID) (*booking_models.Booking, error)
}

type serviceStore interface {
	GetServiceByID(ctx context.Context, id uuid.UUID) (*service_models.Service, error)
}

type userStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*user_models.User, error)
}

type notifier interface {
	Notify(ctx context.Context, recipientID, senderID uuid.UUID, ev dispatch.Event) (uuid.UUID, error)
}

type decisionOutbox interface {
	Enqueue(ctx context.Context, recipientID, senderID uuid.UUID, ev dispatch.Event) error
}

// BookingService owns the booking lifecycle: customer-initiated creation and
// the two vendor-initiated transitions out of pending. All collaborators are
// injected so the workflow can be exercised against fakes.
type BookingService struct {
	bookings bookingStore
	services serviceStore
	users    userStore
	notifier notifier
	outbox   decisionOutbox
}

// NewBookingService creates a BookingService.
func NewBookingService(bookings bookingStore, services serviceStore, users userStore, n notifier, outbox decisionOutbox) *BookingService {
	return &BookingService{
		bookings: bookings,
		services: services,
		users:    users,
		notifier: n,
		outbox:   outbox,
	}
}

// CreateBookingInput carries the customer-supplied booking details.
type CreateBookingInput struct {
	ServiceID       uuid.UUID
	EventDate       string // YYYY-MM-DD
	EventTime       string // local time of day, e.g. "18:00"
	EventLocation   string
	GuestCount      int
	SpecialRequests string
	ContactPhone    string
	ContactEmail    string // defaults to the customer's account email
}

func (in *CreateBookingInput) validate() (time.Time, error) {
	if strings.TrimSpace(in.EventDate) == "" {
		return time.Time{}, fmt.Errorf("%w: event date is required", ErrValidation)
	}
	if strings.TrimSpace(in.EventTime) == "" {
		return time.Time{}, fmt.Errorf("%w: event time is required", ErrValidation)
	}
	if strings.TrimSpace(in.EventLocation) == "" {
		return time.Time{}, fmt.Errorf("%w: event location is required", ErrValidation)
	}
	if in.GuestCount < 0 {
		return time.Time{}, fmt.Errorf("%w: guest count cannot be negative", ErrValidation)
	}
	if !utils.IsValidPhone(in.ContactPhone) {
		return time.Time{}, fmt.Errorf("%w: contact phone must be a valid 10-digit mobile number", ErrValidation)
	}
	if in.ContactEmail != "" && !utils.IsValidEmail(in.ContactEmail) {
		return time.Time{}, fmt.Errorf("%w: contact email is malformed", ErrValidation)
	}

	eventDate, err := time.Parse("2006-01-02", in.EventDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: event date must be YYYY-MM-DD", ErrValidation)
	}
	return eventDate, nil
}

// CreateBooking validates the request and writes a pending booking. On success
// it attempts a "new booking" notification to the vendor; that attempt's
// failure comes back as a warning string, never as an error, and the created
// booking stands either way.
func (s *BookingService) CreateBooking(ctx context.Context, customerID uuid.UUID, in CreateBookingInput) (*booking_models.Booking, string, error) {
	eventDate, err := in.validate()
	if err != nil {
		return nil, "", err
	}

	service, err := s.services.GetServiceByID(ctx, in.ServiceID)
	if err != nil {
		if errors.Is(err, service_models.ErrServiceNotFound) {
			return nil, "", ErrServiceUnavailable
		}
		return nil, "", fmt.Errorf("failed to load service %s: %w", in.ServiceID, err)
	}
	if service.Status != shared_models.ServiceStatusActive {
		return nil, "", ErrServiceUnavailable
	}

	customer, err := s.users.GetUserByID(ctx, customerID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load customer %s: %w", customerID, err)
	}

	contactEmail := in.ContactEmail
	if contactEmail == "" {
		contactEmail = customer.Email
	}

	booking, err := booking_models.NewBooking(service, customerID, customer.Name, contactEmail, utils.FormatPhone(in.ContactPhone))
	if err != nil {
		return nil, "", fmt.Errorf("internal error creating booking: %w", err)
	}
	booking.EventDate = eventDate
	booking.EventTime = in.EventTime
	booking.EventLocation = in.EventLocation
	booking.GuestCount = in.GuestCount
	booking.SpecialRequests = in.SpecialRequests

	created, err := s.bookings.CreateBooking(ctx, booking)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create booking: %w", err)
	}
	logger.InfoLogger.Infof("Booking %s created for service %s by customer %s", created.ID, service.ID, customerID)

	// Vendor notification is best effort: the booking is already committed,
	// so a failed notification degrades to a soft warning for the customer.
	var warning string
	if _, err := s.notifier.Notify(ctx, service.VendorID, customerID, dispatch.BookingRequested{
		BookingID:    created.ID,
		ServiceID:    service.ID,
		ServiceName:  service.Title,
		CustomerName: customer.Name,
		EventDate:    in.EventDate,
	}); err != nil {
		logger.WarnLogger.Warnf("Failed to notify vendor %s of booking %s: %v", service.VendorID, created.ID, err)
		warning = "Booking created, but failed to notify vendor."
	}

	return created, warning, nil
}

// ApplyBookingDecision transitions a pending booking according to the owning
// vendor's decision. The booking write completes before this returns; the
// customer notification is dispatched in the background and can never fail
// the decision.
func (s *BookingService) ApplyBookingDecision(ctx context.Context, bookingID uuid.UUID, decision Decision, callerID uuid.UUID) (*booking_models.Booking, error) {
	var newStatus string
	switch decision {
	case DecisionAccept:
		newStatus = shared_models.BookingStatusConfirmed
	case DecisionReject:
		newStatus = shared_models.BookingStatusCancelled
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDecision, decision)
	}

	booking, err := s.bookings.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, booking_models.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking %s: %w", bookingID, err)
	}

	// Ownership is checked before state so an outsider always sees the same
	// error, whatever the booking's status.
	if booking.VendorID != callerID {
		logger.WarnLogger.Warnf("User %s attempted to decide booking %s owned by vendor %s", callerID, bookingID, booking.VendorID)
		return nil, ErrNotBookingVendor
	}

	updated, err := s.bookings.UpdateBookingStatusIfPending(ctx, bookingID, newStatus, callerID)
	if err != nil {
		if errors.Is(err, booking_models.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		if errors.Is(err, booking_models.ErrBookingNotPending) {
			return nil, ErrBookingNotPending
		}
		return nil, fmt.Errorf("failed to update booking %s: %w", bookingID, err)
	}

	logger.InfoLogger.Infof("Booking %s %sed by vendor %s", bookingID, decision, callerID)

	// The decision is already durable. The customer notification goes through
	// the outbox so a crashed or flaky dispatch is retried by the worker, and
	// an enqueue failure can only be logged, never fail the decision.
	if err := s.outbox.Enqueue(ctx, updated.CustomerID, callerID, decisionEvent(updated, decision)); err != nil {
		logger.ErrorLogger.Errorf("Failed to enqueue decision notification for booking %s: %v", bookingID, err)
	}

	return updated, nil
}

// GetBookingForUser loads one booking, restricted to its customer or vendor.
// Anyone else gets ErrNotBookingParticipant regardless of the booking's state.
func (s *BookingService) GetBookingForUser(ctx context.Context, bookingID, callerID uuid.UUID) (*booking_models.Booking, error) {
	booking, err := s.bookings.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, booking_models.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking %s: %w", bookingID, err)
	}

	if booking.CustomerID != callerID && booking.VendorID != callerID {
		return nil, ErrNotBookingParticipant
	}
	return booking, nil
}

func decisionEvent(booking *booking_models.Booking, decision Decision) dispatch.Event {
	eventDate := booking.EventDate.Format("2006-01-02")
	if decision == DecisionAccept {
		return dispatch.BookingConfirmed{
			BookingID:   booking.ID,
			ServiceID:   booking.ServiceID,
			ServiceName: booking.ServiceName,
			EventDate:   eventDate,
		}
	}
	return dispatch.BookingCancelled{
		BookingID:   booking.ID,
		ServiceID:   booking.ServiceID,
		ServiceName: booking.ServiceName,
		EventDate:   eventDate,
	}
}
