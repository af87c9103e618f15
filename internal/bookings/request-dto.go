package bookings

type CreateBookingRequest struct {
	EventID int64 `json:"event_id" binding:"required,min=1"`
}

type AddSeatRequest struct {
	SeatID int64 `json:"seat_id" binding:"required,min=1"`
}

type BookingListQuery struct {
	Page   int     `form:"page,default=1" binding:"omitempty,min=1"`
	Limit  int     `form:"limit,default=10" binding:"omitempty,min=1,max=100"`
	Status *Status `form:"status" binding:"omitempty,oneof=PENDING PAYMENT_PENDING CONFIRMED CANCELLED"`
}
