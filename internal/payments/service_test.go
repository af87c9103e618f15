package payments_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"ticketly/internal/bookings"
	"ticketly/internal/payments"
	"ticketly/internal/shared/apperrors"
	"ticketly/pkg/logger"
)

// fakeBookingRepo only serves lookups; the reconciliation service never
// writes through the repository directly.
type fakeBookingRepo struct {
	bookings.Repository
	byID        map[int64]*bookings.Booking
	byOrderID   map[string]*bookings.Booking
	byPaymentID map[string]*bookings.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		byID:        make(map[int64]*bookings.Booking),
		byOrderID:   make(map[string]*bookings.Booking),
		byPaymentID: make(map[string]*bookings.Booking),
	}
}

func (f *fakeBookingRepo) add(booking *bookings.Booking) {
	f.byID[booking.ID] = booking
	f.byOrderID[booking.OrderID] = booking
	if booking.PaymentID != nil {
		f.byPaymentID[*booking.PaymentID] = booking
	}
}

func (f *fakeBookingRepo) GetBookingByID(ctx context.Context, id int64) (*bookings.Booking, error) {
	if booking, ok := f.byID[id]; ok {
		return booking, nil
	}
	return nil, fmt.Errorf("booking %d: %w", id, apperrors.ErrNotFound)
}

func (f *fakeBookingRepo) GetBookingByOrderID(ctx context.Context, orderID string) (*bookings.Booking, error) {
	if booking, ok := f.byOrderID[orderID]; ok {
		return booking, nil
	}
	return nil, fmt.Errorf("order %s: %w", orderID, apperrors.ErrNotFound)
}

func (f *fakeBookingRepo) GetBookingByPaymentID(ctx context.Context, paymentID string) (*bookings.Booking, error) {
	if booking, ok := f.byPaymentID[paymentID]; ok {
		return booking, nil
	}
	return nil, fmt.Errorf("payment %s: %w", paymentID, apperrors.ErrNotFound)
}

// fakeBookingService records the reconciliation decisions taken.
type fakeBookingService struct {
	bookings.Service
	confirmed map[int64]string // bookingID -> paymentID
	cancelled map[int64]string // bookingID -> reason
}

func newFakeBookingService() *fakeBookingService {
	return &fakeBookingService{
		confirmed: make(map[int64]string),
		cancelled: make(map[int64]string),
	}
}

func (f *fakeBookingService) ConfirmFromPayment(ctx context.Context, bookingID int64, paymentID string) error {
	f.confirmed[bookingID] = paymentID
	return nil
}

func (f *fakeBookingService) CancelFromPayment(ctx context.Context, bookingID int64, reason string) error {
	f.cancelled[bookingID] = reason
	return nil
}

type fakeCheckGateway struct {
	payments.Gateway
	status    string
	paymentID string
	err       error
	checks    int
}

func (g *fakeCheckGateway) CheckPaymentStatus(ctx context.Context, paymentID, orderID string) (*payments.PaymentCheckResponse, error) {
	g.checks++
	if g.err != nil {
		return nil, g.err
	}
	return &payments.PaymentCheckResponse{
		PaymentID: g.paymentID,
		OrderID:   orderID,
		Status:    g.status,
	}, nil
}

func paymentPendingBooking(id int64, orderID string) *bookings.Booking {
	return &bookings.Booking{
		ID:      id,
		UserID:  10,
		EventID: 1,
		OrderID: orderID,
		Status:  bookings.StatusPaymentPending,
	}
}

func TestSuccessRedirectConfirmsOnGatewayConfirmation(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.add(paymentPendingBooking(1, "order-1"))
	bookingSvc := newFakeBookingService()
	gw := &fakeCheckGateway{status: "CONFIRMED", paymentID: "pay-1"}
	svc := payments.NewService(repo, bookingSvc, gw, logger.GetDefault())

	svc.HandleSuccessRedirect(context.Background(), "order-1")

	assert.Equal(t, "pay-1", bookingSvc.confirmed[1])
	assert.Empty(t, bookingSvc.cancelled)
	assert.Equal(t, 1, gw.checks)
}

func TestSuccessRedirectIsNotTrusted(t *testing.T) {
	// The user landed on the success URL but the gateway says the payment
	// failed; the booking must be cancelled, not confirmed.
	repo := newFakeBookingRepo()
	repo.add(paymentPendingBooking(1, "order-1"))
	bookingSvc := newFakeBookingService()
	gw := &fakeCheckGateway{status: "FAILED"}
	svc := payments.NewService(repo, bookingSvc, gw, logger.GetDefault())

	svc.HandleSuccessRedirect(context.Background(), "order-1")

	assert.Empty(t, bookingSvc.confirmed)
	assert.Equal(t, "payment failed", bookingSvc.cancelled[1])
}

func TestFailRedirectChecksGatewayToo(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.add(paymentPendingBooking(2, "order-2"))
	bookingSvc := newFakeBookingService()
	gw := &fakeCheckGateway{status: "COMPLETED", paymentID: "pay-2"}
	svc := payments.NewService(repo, bookingSvc, gw, logger.GetDefault())

	svc.HandleFailRedirect(context.Background(), "order-2")

	assert.Equal(t, "pay-2", bookingSvc.confirmed[2])
	assert.Empty(t, bookingSvc.cancelled)
}

func TestRedirectAbsorbsGatewayOutage(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.add(paymentPendingBooking(1, "order-1"))
	bookingSvc := newFakeBookingService()
	gw := &fakeCheckGateway{err: errors.New("connection refused")}
	svc := payments.NewService(repo, bookingSvc, gw, logger.GetDefault())

	svc.HandleSuccessRedirect(context.Background(), "order-1")

	assert.Empty(t, bookingSvc.confirmed)
	assert.Empty(t, bookingSvc.cancelled)
}

func TestRedirectWithUnknownOrderDoesNothing(t *testing.T) {
	repo := newFakeBookingRepo()
	bookingSvc := newFakeBookingService()
	gw := &fakeCheckGateway{status: "CONFIRMED"}
	svc := payments.NewService(repo, bookingSvc, gw, logger.GetDefault())

	svc.HandleSuccessRedirect(context.Background(), "order-missing")

	assert.Empty(t, bookingSvc.confirmed)
	assert.Equal(t, 0, gw.checks)
}

func TestWebhookStatusMapping(t *testing.T) {
	cases := []struct {
		status      string
		wantConfirm bool
		wantCancel  bool
	}{
		{"CONFIRMED", true, false},
		{"COMPLETED", true, false},
		{"completed", true, false},
		{"FAILED", false, true},
		{"CANCELLED", false, true},
		{"REJECTED", false, true},
		{"EXPIRED", false, true},
		{"AUTHORIZED", false, false},
		{"SOMETHING_NEW", false, false},
	}

	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			repo := newFakeBookingRepo()
			paymentID := "pay-1"
			booking := paymentPendingBooking(1, "order-1")
			booking.PaymentID = &paymentID
			repo.add(booking)

			bookingSvc := newFakeBookingService()
			svc := payments.NewService(repo, bookingSvc, &fakeCheckGateway{}, logger.GetDefault())

			svc.HandleWebhook(context.Background(), &payments.NotificationPayload{
				PaymentID: "pay-1",
				Status:    tc.status,
				TeamSlug:  "ticketly",
			})

			_, confirmed := bookingSvc.confirmed[1]
			_, cancelled := bookingSvc.cancelled[1]
			assert.Equal(t, tc.wantConfirm, confirmed)
			assert.Equal(t, tc.wantCancel, cancelled)
		})
	}
}

func TestWebhookFallsBackToOrderID(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.add(paymentPendingBooking(3, "order-3"))
	bookingSvc := newFakeBookingService()
	svc := payments.NewService(repo, bookingSvc, &fakeCheckGateway{}, logger.GetDefault())

	// The paymentId is unknown to us; the orderId in the data section still
	// resolves the booking.
	svc.HandleWebhook(context.Background(), &payments.NotificationPayload{
		PaymentID: "pay-unseen",
		Status:    "CONFIRMED",
		Data:      map[string]interface{}{"orderId": "order-3"},
	})

	assert.Equal(t, "pay-unseen", bookingSvc.confirmed[3])
}

func TestWebhookFallsBackToNumericBookingID(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.add(paymentPendingBooking(42, "order-42"))
	bookingSvc := newFakeBookingService()
	svc := payments.NewService(repo, bookingSvc, &fakeCheckGateway{}, logger.GetDefault())

	svc.HandleWebhook(context.Background(), &payments.NotificationPayload{
		Status: "CONFIRMED",
		Data:   map[string]interface{}{"orderId": "42"},
	})

	assert.Equal(t, "", bookingSvc.confirmed[42])
	_, confirmed := bookingSvc.confirmed[42]
	assert.True(t, confirmed)
}

func TestWebhookWithNoMatchIsAbsorbed(t *testing.T) {
	repo := newFakeBookingRepo()
	bookingSvc := newFakeBookingService()
	svc := payments.NewService(repo, bookingSvc, &fakeCheckGateway{}, logger.GetDefault())

	assert.NotPanics(t, func() {
		svc.HandleWebhook(context.Background(), &payments.NotificationPayload{
			PaymentID: "pay-ghost",
			Status:    "CONFIRMED",
		})
	})
	assert.Empty(t, bookingSvc.confirmed)
	assert.Empty(t, bookingSvc.cancelled)
}
