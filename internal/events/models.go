package events

import (
	"time"
)

type Event struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"not null;size:255"`
	Description string    `json:"description" gorm:"type:text"`
	Venue       string    `json:"venue" gorm:"size:255"`
	StartsAt    time.Time `json:"starts_at" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName sets the table name for Event
func (Event) TableName() string {
	return "events"
}

// ListEventsResponseItem is the catalog listing shape exposed to callers
type ListEventsResponseItem struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Venue    string    `json:"venue"`
	StartsAt time.Time `json:"starts_at"`
}
