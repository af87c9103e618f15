package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ticketly/internal/outbox"
	"ticketly/internal/seats"
	"ticketly/internal/shared/apperrors"
)

// Repository owns the transactional booking operations. Every state change
// writes its outbox row inside the same transaction, so an event exists
// exactly when the change it describes committed.
type Repository interface {
	CreateBooking(ctx context.Context, booking *Booking) error
	GetBookingByID(ctx context.Context, id int64) (*Booking, error)
	GetBookingByOrderID(ctx context.Context, orderID string) (*Booking, error)
	GetBookingByPaymentID(ctx context.Context, paymentID string) (*Booking, error)
	GetUserBookings(ctx context.Context, userID int64, query BookingListQuery) ([]Booking, int64, error)
	SeatIDs(ctx context.Context, bookingID int64) ([]int64, error)

	ReserveSeat(ctx context.Context, bookingID, userID, seatID int64) error
	ReleaseSeat(ctx context.Context, seatID, userID int64) (int64, error)

	BeginPayment(ctx context.Context, bookingID, userID int64) (*Booking, error)
	RollbackPayment(ctx context.Context, bookingID int64) error
	ConfirmBooking(ctx context.Context, bookingID int64, paymentID string) error
	CancelBooking(ctx context.Context, bookingID int64, reason string) error
}

type repository struct {
	db       *gorm.DB
	seatRepo seats.Repository
}

func NewRepository(db *gorm.DB, seatRepo seats.Repository) Repository {
	return &repository{db: db, seatRepo: seatRepo}
}

func (r *repository) CreateBooking(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Table("events").Where("id = ?", booking.EventID).Count(&exists).Error; err != nil {
			return fmt.Errorf("failed to check event: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("event %d: %w", booking.EventID, apperrors.ErrNotFound)
		}

		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		event, err := outbox.NewEvent(booking.ID, outbox.EventTypeBookingCreated, outbox.BookingCreatedPayload{
			BookingID: booking.ID,
			EventID:   booking.EventID,
			UserID:    booking.UserID,
			OrderID:   booking.OrderID,
		})
		if err != nil {
			return err
		}
		return tx.Create(event).Error
	})
}

func (r *repository) GetBookingByID(ctx context.Context, id int64) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("BookingSeats.Seat").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("booking %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetBookingByOrderID(ctx context.Context, orderID string) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", orderID, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetBookingByPaymentID(ctx context.Context, paymentID string) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment %s: %w", paymentID, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetUserBookings(ctx context.Context, userID int64, query BookingListQuery) ([]Booking, int64, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	baseQuery := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("user_id = ?", userID)

	if query.Status != nil {
		baseQuery = baseQuery.Where("status = ?", *query.Status)
	}

	var totalCount int64
	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	var bookings []Booking
	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Preload("BookingSeats.Seat").
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&bookings).Error

	return bookings, totalCount, err
}

func (r *repository) SeatIDs(ctx context.Context, bookingID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&BookingSeat{}).
		Where("booking_id = ?", bookingID).
		Order("seat_id ASC").
		Pluck("seat_id", &ids).Error
	return ids, err
}

// ReserveSeat atomically attaches a free seat to a pending booking. The
// booking row is locked first, then the seat, always in that order.
func (r *repository) ReserveSeat(ctx context.Context, bookingID, userID, seatID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := r.lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if booking.UserID != userID {
			return fmt.Errorf("booking %d belongs to another user: %w", bookingID, apperrors.ErrForbidden)
		}
		if !booking.Status.CanModifySeats() {
			return fmt.Errorf("cannot add seats to %s booking: %w", booking.Status, apperrors.ErrInvalidTransition)
		}

		seat, err := r.seatRepo.GetForUpdate(tx, seatID)
		if err != nil {
			return err
		}
		if err := r.seatRepo.Reserve(tx, seat); err != nil {
			return err
		}

		link := BookingSeat{
			BookingID: bookingID,
			SeatID:    seatID,
			SeatPrice: seat.Price,
		}
		if err := tx.Create(&link).Error; err != nil {
			return fmt.Errorf("failed to link seat to booking: %w", err)
		}

		event, err := outbox.NewEvent(bookingID, outbox.EventTypeSeatAddedToBooking, outbox.SeatChangedPayload{
			BookingID: bookingID,
			SeatID:    seat.ID,
			Row:       seat.RowNumber,
			Number:    seat.SeatNumber,
			Price:     seat.Price,
		})
		if err != nil {
			return err
		}
		return tx.Create(event).Error
	})
}

// ReleaseSeat detaches a seat from the caller's pending booking and frees it.
// Releasing a seat that is already free is a no-op. Returns the booking the
// seat belonged to, or 0 for the no-op case.
func (r *repository) ReleaseSeat(ctx context.Context, seatID, userID int64) (int64, error) {
	var bookingID int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seat, err := r.seatRepo.GetForUpdate(tx, seatID)
		if err != nil {
			return err
		}
		if seat.IsFree() {
			return nil
		}

		var link BookingSeat
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("seat_id = ?", seatID).
			First(&link).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Reserved but unlinked rows should not exist; free the
				// seat rather than leave it stuck.
				return r.seatRepo.Free(tx, seat)
			}
			return err
		}

		booking, err := r.lockBooking(tx, link.BookingID)
		if err != nil {
			return err
		}
		if booking.UserID != userID {
			return fmt.Errorf("seat %d is held by another user's booking: %w", seatID, apperrors.ErrForbidden)
		}
		if !booking.Status.CanModifySeats() {
			return fmt.Errorf("cannot remove seats from %s booking: %w", booking.Status, apperrors.ErrInvalidTransition)
		}

		if err := tx.Delete(&link).Error; err != nil {
			return fmt.Errorf("failed to unlink seat: %w", err)
		}
		if err := r.seatRepo.Free(tx, seat); err != nil {
			return err
		}
		bookingID = booking.ID

		event, err := outbox.NewEvent(booking.ID, outbox.EventTypeSeatRemovedFromBooking, outbox.SeatChangedPayload{
			BookingID: booking.ID,
			SeatID:    seat.ID,
			Row:       seat.RowNumber,
			Number:    seat.SeatNumber,
			Price:     seat.Price,
		})
		if err != nil {
			return err
		}
		return tx.Create(event).Error
	})
	return bookingID, err
}

// BeginPayment moves a pending booking with at least one seat into
// PAYMENT_PENDING and freezes the total amount.
func (r *repository) BeginPayment(ctx context.Context, bookingID, userID int64) (*Booking, error) {
	var result *Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := r.lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if booking.UserID != userID {
			return fmt.Errorf("booking %d belongs to another user: %w", bookingID, apperrors.ErrForbidden)
		}
		if !booking.Status.CanTransitionTo(StatusPaymentPending) {
			return fmt.Errorf("cannot start payment for %s booking: %w", booking.Status, apperrors.ErrInvalidTransition)
		}

		var links []BookingSeat
		if err := tx.Where("booking_id = ?", bookingID).Find(&links).Error; err != nil {
			return err
		}
		if len(links) == 0 {
			return fmt.Errorf("booking %d has no seats: %w", bookingID, apperrors.ErrInvalidTransition)
		}

		total := decimal.Zero
		for _, link := range links {
			total = total.Add(link.SeatPrice)
		}

		booking.Status = StatusPaymentPending
		booking.TotalAmount = &total
		if err := tx.Model(booking).Updates(map[string]interface{}{
			"status":       StatusPaymentPending,
			"total_amount": total,
		}).Error; err != nil {
			return fmt.Errorf("failed to start payment: %w", err)
		}

		result = booking
		return nil
	})
	return result, err
}

// RollbackPayment returns a PAYMENT_PENDING booking to PENDING, used when the
// gateway call fails after the transition.
func (r *repository) RollbackPayment(ctx context.Context, bookingID int64) error {
	res := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ? AND status = ?", bookingID, StatusPaymentPending).
		Updates(map[string]interface{}{
			"status":       StatusPending,
			"total_amount": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("booking %d is not awaiting payment: %w", bookingID, apperrors.ErrInvalidTransition)
	}
	return nil
}

// ConfirmBooking finalizes a PAYMENT_PENDING booking. Confirming an already
// confirmed booking is a no-op so replayed notifications stay harmless.
func (r *repository) ConfirmBooking(ctx context.Context, bookingID int64, paymentID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := r.lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if booking.Status == StatusConfirmed {
			return nil
		}
		if !booking.Status.CanTransitionTo(StatusConfirmed) {
			return fmt.Errorf("cannot confirm %s booking: %w", booking.Status, apperrors.ErrInvalidTransition)
		}

		updates := map[string]interface{}{"status": StatusConfirmed}
		if booking.PaymentID == nil && paymentID != "" {
			updates["payment_id"] = paymentID
		}
		return tx.Model(booking).Updates(updates).Error
	})
}

// CancelBooking takes a non-terminal booking to CANCELLED, freeing every seat
// it held. Cancelling an already cancelled booking is a no-op.
func (r *repository) CancelBooking(ctx context.Context, bookingID int64, reason string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := r.lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if booking.Status == StatusCancelled {
			return nil
		}
		if !booking.Status.CanTransitionTo(StatusCancelled) {
			return fmt.Errorf("cannot cancel %s booking: %w", booking.Status, apperrors.ErrInvalidTransition)
		}

		var links []BookingSeat
		if err := tx.Where("booking_id = ?", bookingID).Order("seat_id ASC").Find(&links).Error; err != nil {
			return err
		}
		for _, link := range links {
			seat, err := r.seatRepo.GetForUpdate(tx, link.SeatID)
			if err != nil {
				return err
			}
			if err := r.seatRepo.Free(tx, seat); err != nil {
				return err
			}
		}
		if len(links) > 0 {
			if err := tx.Where("booking_id = ?", bookingID).Delete(&BookingSeat{}).Error; err != nil {
				return fmt.Errorf("failed to unlink seats: %w", err)
			}
		}

		now := time.Now()
		if err := tx.Model(booking).Updates(map[string]interface{}{
			"status":       StatusCancelled,
			"cancelled_at": now,
		}).Error; err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}

		event, err := outbox.NewEvent(bookingID, outbox.EventTypeBookingCancelled, outbox.BookingCancelledPayload{
			BookingID: bookingID,
			OrderID:   booking.OrderID,
			Reason:    reason,
		})
		if err != nil {
			return err
		}
		return tx.Create(event).Error
	})
}

func (r *repository) lockBooking(tx *gorm.DB, bookingID int64) (*Booking, error) {
	var booking Booking
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", bookingID).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("booking %d: %w", bookingID, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &booking, nil
}
