package bookings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ticketly/internal/bookings"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    bookings.Status
		to      bookings.Status
		allowed bool
	}{
		{bookings.StatusPending, bookings.StatusPaymentPending, true},
		{bookings.StatusPending, bookings.StatusCancelled, true},
		{bookings.StatusPending, bookings.StatusConfirmed, false},
		{bookings.StatusPaymentPending, bookings.StatusConfirmed, true},
		{bookings.StatusPaymentPending, bookings.StatusCancelled, true},
		{bookings.StatusPaymentPending, bookings.StatusPending, true},
		{bookings.StatusConfirmed, bookings.StatusCancelled, false},
		{bookings.StatusConfirmed, bookings.StatusPending, false},
		{bookings.StatusCancelled, bookings.StatusPending, false},
		{bookings.StatusCancelled, bookings.StatusConfirmed, false},
	}

	for _, tc := range cases {
		got := tc.from.CanTransitionTo(tc.to)
		assert.Equal(t, tc.allowed, got, "%s -> %s", tc.from, tc.to)
	}
}

func TestStatusGuards(t *testing.T) {
	assert.True(t, bookings.StatusPending.CanModifySeats())
	assert.False(t, bookings.StatusPaymentPending.CanModifySeats())
	assert.False(t, bookings.StatusConfirmed.CanModifySeats())

	assert.True(t, bookings.StatusPending.CanBeCancelled())
	assert.True(t, bookings.StatusPaymentPending.CanBeCancelled())
	assert.False(t, bookings.StatusConfirmed.CanBeCancelled())
	assert.False(t, bookings.StatusCancelled.CanBeCancelled())

	assert.True(t, bookings.StatusConfirmed.IsTerminal())
	assert.True(t, bookings.StatusCancelled.IsTerminal())
	assert.False(t, bookings.StatusPending.IsTerminal())

	assert.True(t, bookings.StatusPending.IsValid())
	assert.False(t, bookings.Status("SHIPPED").IsValid())
}
