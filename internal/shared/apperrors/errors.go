package apperrors

import "errors"

// Sentinel errors for the booking core. Services wrap these with context via
// fmt.Errorf("...: %w", ...) and controllers map them to HTTP codes with errors.Is.
var (
	// ErrNotFound indicates the booking, seat or event does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSeatUnavailable indicates the caller lost the race for a seat.
	// The caller may retry with a different seat.
	ErrSeatUnavailable = errors.New("seat is not available")

	// ErrInvalidTransition indicates a booking state machine rule was violated.
	ErrInvalidTransition = errors.New("invalid booking state transition")

	// ErrForbidden indicates the caller is not the owner of the booking.
	ErrForbidden = errors.New("booking belongs to another user")

	// ErrGateway indicates the payment provider call failed. Booking state is
	// rolled back before this error surfaces, so initiate-payment may be retried.
	ErrGateway = errors.New("payment gateway request failed")

	// ErrPublish indicates an event failed to reach the broker. It is recorded
	// for retry by the outbox relay and never surfaced to the original caller.
	ErrPublish = errors.New("event publish failed")
)
