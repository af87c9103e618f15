package outbox

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Domain event types carried through the outbox.
const (
	EventTypeBookingCreated         = "BookingCreated"
	EventTypeSeatAddedToBooking     = "SeatAddedToBooking"
	EventTypeSeatRemovedFromBooking = "SeatRemovedFromBooking"
	EventTypeBookingCancelled       = "BookingCancelled"
)

// Event is the persisted outbox row. It is inserted in the same database
// transaction as the state change it describes and published asynchronously
// by the relay.
type Event struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OccurrenceID string          `gorm:"type:uuid;uniqueIndex;not null" json:"occurrence_id"`
	BookingID    int64           `gorm:"index;not null" json:"booking_id"`
	EventType    string          `gorm:"type:varchar(50);not null" json:"event_type"`
	Payload      json.RawMessage `gorm:"type:jsonb;not null" json:"payload"`
	CreatedAt    time.Time       `json:"created_at"`
	PublishedAt  *time.Time      `gorm:"index" json:"published_at,omitempty"`
	AttemptCount int             `gorm:"default:0" json:"attempt_count"`
	LastError    *string         `json:"last_error,omitempty"`
}

func (Event) TableName() string {
	return "outbox_events"
}

// DomainEvent is the wire envelope written to Kafka. OccurrenceID identifies
// this particular occurrence so consumers can deduplicate redeliveries.
type DomainEvent struct {
	OccurrenceID string          `json:"eventId"`
	EventType    string          `json:"eventType"`
	EventData    json.RawMessage `json:"eventData"`
	Timestamp    time.Time       `json:"timestamp"`
}

// Payloads for the individual event types.

type BookingCreatedPayload struct {
	BookingID int64  `json:"bookingId"`
	EventID   int64  `json:"eventId"`
	UserID    int64  `json:"userId"`
	OrderID   string `json:"orderId"`
}

type SeatChangedPayload struct {
	BookingID int64           `json:"bookingId"`
	SeatID    int64           `json:"seatId"`
	Row       int             `json:"row"`
	Number    int             `json:"number"`
	Price     decimal.Decimal `json:"price"`
}

type BookingCancelledPayload struct {
	BookingID int64  `json:"bookingId"`
	OrderID   string `json:"orderId"`
	Reason    string `json:"reason,omitempty"`
}
