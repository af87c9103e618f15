package bookings

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ticketly/internal/seats"
	"ticketly/internal/shared/apperrors"
	"ticketly/pkg/logger"
)

// PaymentGateway creates payments on the external provider. Implemented by
// the payments package; declared here to keep the dependency one-way.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, orderID string, amount decimal.Decimal) (paymentURL string, err error)
}

// Notifier wakes the outbox relay after a commit so freshly recorded events
// flush without waiting for the next tick.
type Notifier interface {
	Notify()
}

// Service interface defines the contract for booking business logic
type Service interface {
	CreateBooking(ctx context.Context, userID int64, req CreateBookingRequest) (*BookingResponse, error)
	GetBooking(ctx context.Context, userID, bookingID int64) (*BookingResponse, error)
	GetUserBookings(ctx context.Context, userID int64, query BookingListQuery) (*BookingListResponse, error)
	AddSeat(ctx context.Context, userID, bookingID, seatID int64) (*BookingResponse, error)
	ReleaseSeat(ctx context.Context, userID, seatID int64) error
	InitiatePayment(ctx context.Context, userID, bookingID int64) (*PaymentRedirectResponse, error)
	CancelBooking(ctx context.Context, userID, bookingID int64) error

	// Reconciliation entry points, called with gateway-confirmed outcomes.
	ConfirmFromPayment(ctx context.Context, bookingID int64, paymentID string) error
	CancelFromPayment(ctx context.Context, bookingID int64, reason string) error
}

type service struct {
	repo     Repository
	locks    *seats.LockTable
	gateway  PaymentGateway
	notifier Notifier
	logger   *logger.Logger
}

func NewService(repo Repository, locks *seats.LockTable, gateway PaymentGateway, notifier Notifier, log *logger.Logger) Service {
	return &service{
		repo:     repo,
		locks:    locks,
		gateway:  gateway,
		notifier: notifier,
		logger:   log,
	}
}

func (s *service) CreateBooking(ctx context.Context, userID int64, req CreateBookingRequest) (*BookingResponse, error) {
	booking := &Booking{
		UserID:  userID,
		EventID: req.EventID,
		OrderID: uuid.New().String(),
		Status:  StatusPending,
	}

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}
	s.notifier.Notify()
	s.logger.LogBookingCreated(ctx, booking.ID, booking.EventID, userID)

	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) GetBooking(ctx context.Context, userID, bookingID int64) (*BookingResponse, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, fmt.Errorf("booking %d belongs to another user: %w", bookingID, apperrors.ErrForbidden)
	}

	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) GetUserBookings(ctx context.Context, userID int64, query BookingListQuery) (*BookingListResponse, error) {
	bookings, total, err := s.repo.GetUserBookings(ctx, userID, query)
	if err != nil {
		return nil, err
	}

	items := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		items = append(items, bookings[i].ToResponse())
	}

	page := query.Page
	if page <= 0 {
		page = 1
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}

	return &BookingListResponse{
		Bookings: items,
		Page:     page,
		Limit:    limit,
		Total:    total,
	}, nil
}

// AddSeat reserves one seat for the booking. The seat's lock is held across
// the whole reserve transaction so concurrent requests for the same seat are
// decided one at a time.
func (s *service) AddSeat(ctx context.Context, userID, bookingID, seatID int64) (*BookingResponse, error) {
	release := s.locks.Acquire(seatID)
	defer release()

	if err := s.repo.ReserveSeat(ctx, bookingID, userID, seatID); err != nil {
		return nil, err
	}
	s.notifier.Notify()
	s.logger.LogSeatReserved(ctx, bookingID, seatID)

	return s.GetBooking(ctx, userID, bookingID)
}

// ReleaseSeat frees one seat from the caller's booking. Releasing an already
// free seat succeeds without effect.
func (s *service) ReleaseSeat(ctx context.Context, userID, seatID int64) error {
	release := s.locks.Acquire(seatID)
	defer release()

	bookingID, err := s.repo.ReleaseSeat(ctx, seatID, userID)
	if err != nil {
		return err
	}
	if bookingID != 0 {
		s.notifier.Notify()
		s.logger.LogSeatReleased(ctx, bookingID, seatID)
	}
	return nil
}

// InitiatePayment freezes the booking total, creates the payment on the
// gateway and hands back the redirect URL. A gateway failure rolls the
// booking back to PENDING so the user can retry.
func (s *service) InitiatePayment(ctx context.Context, userID, bookingID int64) (*PaymentRedirectResponse, error) {
	booking, err := s.repo.BeginPayment(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}

	paymentURL, err := s.gateway.CreatePayment(ctx, booking.OrderID, *booking.TotalAmount)
	if err != nil {
		if rbErr := s.repo.RollbackPayment(ctx, bookingID); rbErr != nil {
			s.logger.ErrorWithContext(ctx, "Failed to roll back payment state", rbErr, map[string]interface{}{
				"booking_id": bookingID,
			})
		}
		return nil, fmt.Errorf("payment creation failed: %w", err)
	}

	s.logger.LogPaymentInitiated(ctx, bookingID, booking.OrderID)
	return &PaymentRedirectResponse{
		BookingID:  booking.ID,
		OrderID:    booking.OrderID,
		Amount:     *booking.TotalAmount,
		PaymentURL: paymentURL,
	}, nil
}

// CancelBooking cancels the caller's own booking and frees its seats. Each
// seat lock is taken in ascending seat order before the transaction runs.
func (s *service) CancelBooking(ctx context.Context, userID, bookingID int64) error {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.UserID != userID {
		return fmt.Errorf("booking %d belongs to another user: %w", bookingID, apperrors.ErrForbidden)
	}
	if booking.Status == StatusCancelled {
		return nil
	}
	if !booking.Status.CanBeCancelled() {
		return fmt.Errorf("cannot cancel %s booking: %w", booking.Status, apperrors.ErrInvalidTransition)
	}

	if err := s.cancelWithSeatLocks(ctx, bookingID, "cancelled by user"); err != nil {
		return err
	}
	s.logger.LogBookingCancelled(ctx, bookingID, userID)
	return nil
}

func (s *service) ConfirmFromPayment(ctx context.Context, bookingID int64, paymentID string) error {
	if err := s.repo.ConfirmBooking(ctx, bookingID, paymentID); err != nil {
		return err
	}
	s.notifier.Notify()
	return nil
}

func (s *service) CancelFromPayment(ctx context.Context, bookingID int64, reason string) error {
	return s.cancelWithSeatLocks(ctx, bookingID, reason)
}

func (s *service) cancelWithSeatLocks(ctx context.Context, bookingID int64, reason string) error {
	seatIDs, err := s.repo.SeatIDs(ctx, bookingID)
	if err != nil {
		return err
	}

	// SeatIDs returns ascending order; acquiring in that order avoids
	// deadlocks with other multi-seat cancellations.
	releases := make([]func(), 0, len(seatIDs))
	for _, seatID := range seatIDs {
		releases = append(releases, s.locks.Acquire(seatID))
	}
	defer func() {
		for _, release := range releases {
			release()
		}
	}()

	if err := s.repo.CancelBooking(ctx, bookingID, reason); err != nil {
		return err
	}
	s.notifier.Notify()
	return nil
}
