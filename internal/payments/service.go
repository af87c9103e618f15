package payments

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ticketly/internal/bookings"
	"ticketly/pkg/logger"
)

// Reconciliation outcomes per gateway status. The mapping is closed: statuses
// outside it are logged and leave the booking untouched.
const (
	reconcileConfirm = "confirm"
	reconcileCancel  = "cancel"
	reconcileNoop    = "noop"
	reconcileUnknown = "unknown"
)

// Service drives payment reconciliation. All entry points absorb their
// errors: the gateway retries notifications on non-2xx responses, and a retry
// cannot fix a booking we failed to resolve, so failures are logged and
// acknowledged.
type Service interface {
	HandleSuccessRedirect(ctx context.Context, orderID string)
	HandleFailRedirect(ctx context.Context, orderID string)
	HandleWebhook(ctx context.Context, payload *NotificationPayload)
}

type service struct {
	bookingRepo bookings.Repository
	bookingSvc  bookings.Service
	gateway     Gateway
	logger      *logger.Logger
}

func NewService(bookingRepo bookings.Repository, bookingSvc bookings.Service, gw Gateway, log *logger.Logger) Service {
	return &service{
		bookingRepo: bookingRepo,
		bookingSvc:  bookingSvc,
		gateway:     gw,
		logger:      log,
	}
}

// HandleSuccessRedirect processes the browser returning from the gateway. The
// redirect itself proves nothing, so the actual status is re-checked against
// the gateway before the booking moves.
func (s *service) HandleSuccessRedirect(ctx context.Context, orderID string) {
	s.reconcileFromGateway(ctx, orderID)
}

// HandleFailRedirect mirrors HandleSuccessRedirect. The gateway's answer
// decides the outcome, not the redirect the user arrived through.
func (s *service) HandleFailRedirect(ctx context.Context, orderID string) {
	s.reconcileFromGateway(ctx, orderID)
}

func (s *service) reconcileFromGateway(ctx context.Context, orderID string) {
	booking, err := s.lookupByOrderID(ctx, orderID)
	if err != nil {
		s.logger.ErrorWithContext(ctx, "Failed to resolve booking for redirect", err, map[string]interface{}{
			"order_id": orderID,
		})
		return
	}

	paymentID := ""
	if booking.PaymentID != nil {
		paymentID = *booking.PaymentID
	}

	check, err := s.gateway.CheckPaymentStatus(ctx, paymentID, orderID)
	if err != nil {
		s.logger.ErrorWithContext(ctx, "Payment status check failed", err, map[string]interface{}{
			"order_id":   orderID,
			"booking_id": booking.ID,
		})
		return
	}

	if check.PaymentID != "" {
		paymentID = check.PaymentID
	}
	s.applyStatus(ctx, booking, check.Status, paymentID)
}

// HandleWebhook processes a gateway notification. The booking is located by
// paymentId first, then by the orderId the notification carries, and finally
// by treating the orderId as a raw booking ID.
func (s *service) HandleWebhook(ctx context.Context, payload *NotificationPayload) {
	booking, err := s.lookupForNotification(ctx, payload)
	if err != nil {
		s.logger.ErrorWithContext(ctx, "Failed to resolve booking for notification", err, map[string]interface{}{
			"payment_id": payload.PaymentID,
			"status":     payload.Status,
		})
		return
	}

	s.applyStatus(ctx, booking, payload.Status, payload.PaymentID)
}

func (s *service) lookupForNotification(ctx context.Context, payload *NotificationPayload) (*bookings.Booking, error) {
	if payload.PaymentID != "" {
		booking, err := s.bookingRepo.GetBookingByPaymentID(ctx, payload.PaymentID)
		if err == nil {
			return booking, nil
		}
	}

	if payload.Data != nil {
		if raw, exists := payload.Data["orderId"]; exists {
			orderID := fmt.Sprintf("%v", raw)
			return s.lookupByOrderID(ctx, orderID)
		}
	}

	return nil, fmt.Errorf("no booking found for payment %s", payload.PaymentID)
}

func (s *service) lookupByOrderID(ctx context.Context, orderID string) (*bookings.Booking, error) {
	booking, err := s.bookingRepo.GetBookingByOrderID(ctx, orderID)
	if err == nil {
		return booking, nil
	}

	// Legacy orders carry the booking ID where the order UUID should be.
	if id, parseErr := strconv.ParseInt(orderID, 10, 64); parseErr == nil {
		return s.bookingRepo.GetBookingByID(ctx, id)
	}
	return nil, err
}

func (s *service) applyStatus(ctx context.Context, booking *bookings.Booking, externalStatus, paymentID string) {
	outcome := mapGatewayStatus(externalStatus)

	switch outcome {
	case reconcileConfirm:
		if err := s.bookingSvc.ConfirmFromPayment(ctx, booking.ID, paymentID); err != nil {
			s.logger.ErrorWithContext(ctx, "Failed to confirm booking from payment", err, map[string]interface{}{
				"booking_id": booking.ID,
				"status":     externalStatus,
			})
			return
		}
	case reconcileCancel:
		reason := "payment " + strings.ToLower(externalStatus)
		if err := s.bookingSvc.CancelFromPayment(ctx, booking.ID, reason); err != nil {
			s.logger.ErrorWithContext(ctx, "Failed to cancel booking from payment", err, map[string]interface{}{
				"booking_id": booking.ID,
				"status":     externalStatus,
			})
			return
		}
	case reconcileNoop:
		// Authorized but not captured yet; the final status arrives later.
	default:
		s.logger.InfoWithContext(ctx, "Ignoring unknown payment status", map[string]interface{}{
			"booking_id": booking.ID,
			"status":     externalStatus,
		})
		return
	}

	s.logger.LogPaymentReconciled(ctx, booking.ID, externalStatus, outcome)
}

func mapGatewayStatus(externalStatus string) string {
	switch strings.ToUpper(externalStatus) {
	case "CONFIRMED", "COMPLETED":
		return reconcileConfirm
	case "FAILED", "CANCELLED", "REJECTED", "EXPIRED":
		return reconcileCancel
	case "AUTHORIZED":
		return reconcileNoop
	default:
		return reconcileUnknown
	}
}
