package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"turfbook/internal/config"
	"turfbook/internal/database"
	"turfbook/internal/domain"
	"turfbook/internal/domain/booking"
	"turfbook/internal/domain/notification"
	"turfbook/internal/domain/push"
	jwtsvc "turfbook/internal/pkg/jwt"
)

var venues = []string{"Greenfield Arena", "Riverside 5s", "Northside Turf", "Central Pitch"}

var slots = []string{"6:00 AM", "9:30 AM", "12:00 PM", "4:00 PM", "7:00 PM", "11:00 PM"}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db, &notification.Notification{}, &push.Subscription{}, &booking.Booking{}); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM push_subscriptions")
	db.Exec("DELETE FROM notifications")
	db.Exec("DELETE FROM bookings")

	ctx := context.Background()
	loc := cfg.BookingLocation
	now := time.Now().In(loc)

	admin := uuid.New()
	players := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	// ================== BOOKINGS ==================
	log.Println("Creating bookings...")
	bookingRepo := booking.NewRepository(db)
	statuses := []domain.BookingStatus{domain.BookingConfirmed, domain.BookingCompleted, domain.BookingPending, domain.BookingCancelled}
	created := 0
	for i, player := range players {
		for dayOffset := -3; dayOffset <= 3; dayOffset++ {
			b := &booking.Booking{
				UserID:      player,
				VenueName:   venues[(i+dayOffset+len(venues))%len(venues)],
				BookingDate: now.AddDate(0, 0, dayOffset).Format("2006-01-02"),
				BookingTime: slots[rand.Intn(len(slots))],
				Status:      string(statuses[rand.Intn(len(statuses))]),
			}
			if err := bookingRepo.Create(ctx, b); err != nil {
				log.Fatalf("create booking: %v", err)
			}
			created++
		}
	}
	log.Printf("Bookings created: %d (past ones are swept by booking_sweeper)", created)

	// ================== NOTIFICATIONS ==================
	log.Println("Creating notifications...")
	notifService := notification.NewService(notification.NewRepository(db))
	for i, player := range players {
		_, err := notifService.Create(ctx, notification.CreateInput{
			RecipientID: player,
			Type:        domain.NotifSuccess,
			Title:       "Booking confirmed",
			Message:     fmt.Sprintf("%s, %s", venues[i%len(venues)], slots[i%len(slots)]),
			Link:        "/bookings",
		})
		if err != nil {
			log.Fatalf("create notification: %v", err)
		}
		_, err = notifService.Create(ctx, notification.CreateInput{
			RecipientID: player,
			Type:        domain.NotifWarning,
			Title:       "Pitch maintenance",
			Message:     "Northside Turf is closed on Monday morning",
		})
		if err != nil {
			log.Fatalf("create notification: %v", err)
		}
	}
	n, err := notifService.Broadcast(ctx, players, "Summer league", "Registration for the summer league is open", "/leagues/summer")
	if err != nil {
		log.Fatalf("broadcast: %v", err)
	}
	log.Printf("Broadcast delivered to %d players", n)

	// ================== TOKENS ==================
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	adminToken, err := j.GenerateToken(admin, "admin")
	if err != nil {
		log.Fatalf("token: %v", err)
	}
	log.Printf("Admin %s token: %s", admin, adminToken)
	for _, player := range players {
		token, err := j.GenerateToken(player, "client")
		if err != nil {
			log.Fatalf("token: %v", err)
		}
		log.Printf("Player %s token: %s", player, token)
	}

	log.Println("Seed completed")
}
