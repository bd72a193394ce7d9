package booking

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"turfbook/internal/domain"
)

// Booking is the persisted row. BookingDate is YYYY-MM-DD and BookingTime is "h:mm AM|PM".
type Booking struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;column:id"`
	UserID      uuid.UUID `gorm:"type:uuid;column:user_id;not null;index:idx_bookings_user"`
	VenueName   string    `gorm:"column:venue_name;size:255;not null;default:''"`
	BookingDate string    `gorm:"column:booking_date;size:10;not null"`
	BookingTime string    `gorm:"column:booking_time;size:8;not null"`
	Status      string    `gorm:"column:status;size:20;not null;index:idx_bookings_status"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = string(domain.BookingPending)
	}
	return nil
}

func (b *Booking) ToDomain() domain.Booking {
	return domain.Booking{
		ID:          b.ID,
		UserID:      b.UserID,
		VenueName:   b.VenueName,
		BookingDate: b.BookingDate,
		BookingTime: b.BookingTime,
		Status:      domain.BookingStatus(b.Status),
		CreatedAt:   b.CreatedAt,
	}
}
