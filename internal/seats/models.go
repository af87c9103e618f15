package seats

import (
	"time"

	"github.com/shopspring/decimal"
)

// Seat statuses. A seat is RESERVED exactly while it belongs to a live
// booking, FREE otherwise.
const (
	StatusFree     = "FREE"
	StatusReserved = "RESERVED"
)

// Seat defines the structure for individual seats within an event's hall.
type Seat struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID    int64           `gorm:"index;not null;uniqueIndex:idx_event_row_seat" json:"event_id"`
	RowNumber  int             `gorm:"not null;uniqueIndex:idx_event_row_seat" json:"row"`
	SeatNumber int             `gorm:"not null;uniqueIndex:idx_event_row_seat" json:"number"`
	Status     string          `gorm:"type:varchar(20);check:status IN ('FREE', 'RESERVED');default:'FREE'" json:"status"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TableName sets the table name for Seat
func (Seat) TableName() string {
	return "seats"
}

func (s *Seat) IsFree() bool {
	return s.Status == StatusFree
}

func (s *Seat) IsReserved() bool {
	return s.Status == StatusReserved
}

// ToResponse converts Seat to its API representation.
func (s *Seat) ToResponse() SeatResponse {
	return SeatResponse{
		ID:      s.ID,
		EventID: s.EventID,
		Row:     s.RowNumber,
		Number:  s.SeatNumber,
		Status:  s.Status,
		Price:   s.Price,
	}
}

// SeatResponse for API responses
type SeatResponse struct {
	ID      int64           `json:"id"`
	EventID int64           `json:"event_id"`
	Row     int             `json:"row"`
	Number  int             `json:"number"`
	Status  string          `json:"status"`
	Price   decimal.Decimal `json:"price"`
}

// ListQuery carries the pagination and filters for seat listing.
type ListQuery struct {
	Page     int     `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize int     `form:"pageSize,default=20" binding:"omitempty,min=1,max=100"`
	Row      *int    `form:"row" binding:"omitempty,min=1"`
	Status   *string `form:"status" binding:"omitempty,oneof=FREE RESERVED"`
}

type ListSeatsResponse struct {
	Seats    []SeatResponse `json:"seats"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Total    int64          `json:"total"`
}
