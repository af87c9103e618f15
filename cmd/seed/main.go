package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"ticketly/internal/events"
	"ticketly/internal/seats"
	"ticketly/internal/shared/config"
	"ticketly/internal/shared/database"
	"ticketly/pkg/logger"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("Starting Ticketly database seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("Seeding completed. Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"outbox_events",
		"booking_seats",
		"bookings",
		"seats",
		"events",
	}

	gormDB := s.db.GetPostgreSQL()
	for _, table := range tables {
		if err := gormDB.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

// SeedAll creates a few events with full seat grids.
func (s *Seeder) SeedAll() error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	appLogger := logger.GetDefault()
	gormDB := s.db.GetPostgreSQL()

	eventRepo := events.NewRepository(gormDB)
	seatRepo := seats.NewRepository(gormDB)
	seatService := seats.NewService(seatRepo, appLogger)

	catalog := []struct {
		event       events.Event
		rows        int
		seatsPerRow int
	}{
		{
			event: events.Event{
				Name:        "Symphony Orchestra Gala",
				Description: "An evening with the state symphony orchestra",
				Venue:       "Grand Concert Hall",
				StartsAt:    time.Now().AddDate(0, 1, 0),
			},
			rows:        15,
			seatsPerRow: 20,
		},
		{
			event: events.Event{
				Name:        "Jazz Quartet Live",
				Description: "Late night jazz session",
				Venue:       "Blue Note Club",
				StartsAt:    time.Now().AddDate(0, 0, 14),
			},
			rows:        8,
			seatsPerRow: 12,
		},
		{
			event: events.Event{
				Name:        "Stand-up Comedy Night",
				Description: "Headliners and open mic",
				Venue:       "City Theater",
				StartsAt:    time.Now().AddDate(0, 0, 7),
			},
			rows:        12,
			seatsPerRow: 16,
		},
	}

	for i := range catalog {
		entry := &catalog[i]
		if err := eventRepo.Create(ctx, &entry.event); err != nil {
			return fmt.Errorf("failed to create event %q: %w", entry.event.Name, err)
		}

		count, err := seatService.GenerateForEvent(ctx, entry.event.ID, entry.rows, entry.seatsPerRow)
		if err != nil {
			return fmt.Errorf("failed to generate seats for %q: %w", entry.event.Name, err)
		}
		fmt.Printf("  created event %q with %d seats\n", entry.event.Name, count)
	}

	return nil
}
