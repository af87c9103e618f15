package bookings

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingResponse struct {
	ID          int64            `json:"id"`
	EventID     int64            `json:"event_id"`
	OrderID     string           `json:"order_id"`
	Status      string           `json:"status"`
	TotalAmount *decimal.Decimal `json:"total_amount,omitempty"`
	Seats       []BookedSeatInfo `json:"seats"`
	CreatedAt   time.Time        `json:"created_at"`
	CancelledAt *time.Time       `json:"cancelled_at,omitempty"`
}

type BookedSeatInfo struct {
	SeatID int64           `json:"seat_id"`
	Row    int             `json:"row"`
	Number int             `json:"number"`
	Price  decimal.Decimal `json:"price"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
	Total    int64             `json:"total"`
}

type PaymentRedirectResponse struct {
	BookingID  int64           `json:"booking_id"`
	OrderID    string          `json:"order_id"`
	Amount     decimal.Decimal `json:"amount"`
	PaymentURL string          `json:"payment_url"`
}

func (b *Booking) ToResponse() BookingResponse {
	seats := make([]BookedSeatInfo, 0, len(b.BookingSeats))
	for _, bs := range b.BookingSeats {
		info := BookedSeatInfo{
			SeatID: bs.SeatID,
			Price:  bs.SeatPrice,
		}
		if bs.Seat != nil {
			info.Row = bs.Seat.RowNumber
			info.Number = bs.Seat.SeatNumber
		}
		seats = append(seats, info)
	}

	return BookingResponse{
		ID:          b.ID,
		EventID:     b.EventID,
		OrderID:     b.OrderID,
		Status:      b.Status.String(),
		TotalAmount: b.TotalAmount,
		Seats:       seats,
		CreatedAt:   b.CreatedAt,
		CancelledAt: b.CancelledAt,
	}
}
