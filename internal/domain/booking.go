package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

type Booking struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"user_id"`
	VenueName   string        `json:"venue_name,omitempty"`
	BookingDate string        `json:"booking_date"` // YYYY-MM-DD
	BookingTime string        `json:"booking_time"` // h:mm AM/PM
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}
