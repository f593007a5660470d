package reservation

import "errors"

// Each precondition of Reserve fails with its own error so the HTTP layer
// can map causes to distinct status codes and messages.
var (
	ErrMissingFields    = errors.New("client, service, date and time are required")
	ErrClientNotFound   = errors.New("client not found")
	ErrServiceNotFound  = errors.New("service not found")
	ErrBookingInPast    = errors.New("booking date and time cannot be in the past")
	ErrNotAWorkDay      = errors.New("service does not work on this day")
	ErrNotAnOfferedTime = errors.New("service is not offered at this time")
	ErrSlotTaken        = errors.New("a booking already exists for this service, date and time")
	ErrNoSlotsAvailable = errors.New("no available times remain for this date")
)
