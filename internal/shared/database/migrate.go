package database

import (
	"ticketly/internal/bookings"
	"ticketly/internal/events"
	"ticketly/internal/outbox"
	"ticketly/internal/seats"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&events.Event{},
		&seats.Seat{},
		&bookings.Booking{},
		&bookings.BookingSeat{},
		&outbox.Event{},
	); err != nil {
		return err
	}
	return MigrateConstraints(db)
}
