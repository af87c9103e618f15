package bookings

type Status string

const (
	StatusPending        Status = "PENDING"
	StatusPaymentPending Status = "PAYMENT_PENDING"
	StatusConfirmed      Status = "CONFIRMED"
	StatusCancelled      Status = "CANCELLED"
)

// IsValid checks if the booking status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaymentPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the booking can no longer change state.
func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

// CanModifySeats reports whether seats may be added to or removed from a
// booking in this state.
func (s Status) CanModifySeats() bool {
	return s == StatusPending
}

// CanBeCancelled checks if a booking with this status can be cancelled by the
// user.
func (s Status) CanBeCancelled() bool {
	return s == StatusPending || s == StatusPaymentPending
}

// CanTransitionTo enumerates the legal state machine edges.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusPaymentPending || next == StatusCancelled
	case StatusPaymentPending:
		return next == StatusPending || next == StatusConfirmed || next == StatusCancelled
	default:
		return false
	}
}
