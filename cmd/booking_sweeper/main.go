package main

import (
	"context"
	"log"
	"time"

	"turfbook/internal/config"
	"turfbook/internal/database"
	"turfbook/internal/domain/booking"
)

// Runs one sweep and exits; meant for cron.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := database.Migrate(db, &booking.Booking{}); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	sweeper := booking.NewSweeper(booking.NewRepository(db), cfg.BookingLocation)
	deleted, err := sweeper.Sweep(ctx, time.Now())
	if err != nil {
		log.Fatalf("booking sweep failed: %v", err)
	}

	log.Printf("booking sweep completed: deleted=%d", deleted)
}
