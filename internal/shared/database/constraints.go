package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds constraints AutoMigrate cannot express. The unique
// index on booking_seats.seat_id is the database-level guarantee that a seat
// belongs to at most one booking at a time.
func MigrateConstraints(db *gorm.DB) error {
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uniq_booking_seats_seat
		ON booking_seats (seat_id);
	`).Error
	if err != nil {
		return err
	}

	// Partial index keeps outbox polling cheap as published rows accumulate.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_outbox_events_unpublished
		ON outbox_events (id)
		WHERE published_at IS NULL;
	`).Error
	if err != nil {
		return err
	}

	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_status
		ON bookings (status);
	`).Error
}
