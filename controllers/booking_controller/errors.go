package booking_controller

import "errors"

var (
	ErrBookingNotFound       = errors.New("booking not found")
	ErrNotBookingVendor      = errors.New("booking does not belong to this vendor")
	ErrNotBookingParticipant = errors.New("booking is not visible to this user")
	ErrBookingNotPending     = errors.New("booking is not pending")
	ErrInvalidDecision       = errors.New("invalid booking decision")
	ErrServiceUnavailable    = errors.New("service is not available for booking")
	ErrValidation            = errors.New("booking validation failed")
)
