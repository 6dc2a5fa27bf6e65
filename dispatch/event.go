package dispatch

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dreamevents/marketplace/models/shared_models"
)

// Event is the closed set of notification payloads. Each variant carries only
// the fields its messages need; rendering happens in one place so an
// unhandled variant fails loudly instead of producing an empty notification.
type Event interface {
	isEvent()
}

// BookingRequested notifies a vendor that a customer filed a new booking.
type BookingRequested struct {
	BookingID    uuid.UUID
	ServiceID    uuid.UUID
	ServiceName  string
	CustomerName string
	EventDate    string
}

// BookingConfirmed notifies a customer that the vendor accepted their booking.
type BookingConfirmed struct {
	BookingID   uuid.UUID
	ServiceID   uuid.UUID
	ServiceName string
	EventDate   string
}

// BookingCancelled notifies a customer that the vendor rejected their booking.
type BookingCancelled struct {
	BookingID   uuid.UUID
	ServiceID   uuid.UUID
	ServiceName string
	EventDate   string
}

func (BookingRequested) isEvent() {}
func (BookingConfirmed) isEvent() {}
func (BookingCancelled) isEvent() {}

// message is a fully rendered notification, shared by the inbox record, the
// push payload and the email channel.
type message struct {
	Type         string
	Priority     string
	Title        string
	Body         string
	EmailSubject string
	EmailBody    string
	BookingID    uuid.UUID
	ServiceID    uuid.UUID
}

func render(ev Event) (message, error) {
	switch e := ev.(type) {
	case BookingRequested:
		return message{
			Type:         shared_models.NotificationTypeBookingRequested,
			Priority:     shared_models.PriorityNormal,
			Title:        "New Booking Request",
			Body:         fmt.Sprintf("New booking request from %s for %s", e.CustomerName, e.ServiceName),
			EmailSubject: "New Booking Request - DreamEvents",
			EmailBody:    fmt.Sprintf("You have a new booking request from %s for %s on %s.", e.CustomerName, e.ServiceName, e.EventDate),
			BookingID:    e.BookingID,
			ServiceID:    e.ServiceID,
		}, nil
	case BookingConfirmed:
		return message{
			Type:         shared_models.NotificationTypeBookingConfirmed,
			Priority:     shared_models.PriorityHigh,
			Title:        "Booking Confirmed",
			Body:         fmt.Sprintf("Your booking for %s has been confirmed!", e.ServiceName),
			EmailSubject: "Booking Confirmed - DreamEvents",
			EmailBody:    fmt.Sprintf("Your booking for %s on %s has been confirmed!", e.ServiceName, e.EventDate),
			BookingID:    e.BookingID,
			ServiceID:    e.ServiceID,
		}, nil
	case BookingCancelled:
		return message{
			Type:         shared_models.NotificationTypeBookingCancelled,
			Priority:     shared_models.PriorityHigh,
			Title:        "Booking Cancelled",
			Body:         fmt.Sprintf("Your booking for %s has been cancelled.", e.ServiceName),
			EmailSubject: "Booking Update - DreamEvents",
			EmailBody:    fmt.Sprintf("Unfortunately, your booking request for %s on %s has been declined.", e.ServiceName, e.EventDate),
			BookingID:    e.BookingID,
			ServiceID:    e.ServiceID,
		}, nil
	default:
		return message{}, fmt.Errorf("unknown notification event %T", ev)
	}
}
