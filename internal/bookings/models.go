package bookings

import (
	"time"

	"github.com/shopspring/decimal"

	"ticketly/internal/seats"
)

// Booking defines the main booking structure. OrderID is the external
// identifier handed to the payment gateway; PaymentID arrives later, once the
// gateway has created the payment.
type Booking struct {
	ID          int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64            `gorm:"index;not null" json:"user_id"`
	EventID     int64            `gorm:"index;not null" json:"event_id"`
	OrderID     string           `gorm:"type:uuid;uniqueIndex;not null" json:"order_id"`
	PaymentID   *string          `gorm:"type:varchar(64);index" json:"payment_id,omitempty"`
	Status      Status           `gorm:"type:varchar(20);check:status IN ('PENDING', 'PAYMENT_PENDING', 'CONFIRMED', 'CANCELLED');default:'PENDING'" json:"status"`
	TotalAmount *decimal.Decimal `gorm:"type:numeric(12,2)" json:"total_amount,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	CancelledAt *time.Time       `json:"cancelled_at,omitempty"`

	// Relationships
	BookingSeats []BookingSeat `json:"booking_seats,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
}

// BookingSeat links a reserved seat to its booking.
type BookingSeat struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingID int64           `gorm:"index;not null;uniqueIndex:idx_booking_seat" json:"booking_id"`
	SeatID    int64           `gorm:"not null;uniqueIndex:idx_booking_seat;index" json:"seat_id"`
	SeatPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"seat_price"`
	CreatedAt time.Time       `json:"created_at"`

	// Relationships
	Seat *seats.Seat `json:"seat,omitempty" gorm:"foreignKey:SeatID;constraint:OnDelete:RESTRICT;"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// TableName sets the table name for BookingSeat
func (BookingSeat) TableName() string {
	return "booking_seats"
}

// Helper methods for booking management

func (b *Booking) IsPending() bool {
	return b.Status == StatusPending
}

func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

func (b *Booking) Cancel() {
	b.Status = StatusCancelled
	now := time.Now()
	b.CancelledAt = &now
	b.UpdatedAt = now
}
