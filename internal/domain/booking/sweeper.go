package booking

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"turfbook/internal/domain"
	"turfbook/internal/metrics"
	"turfbook/internal/pkg/tracing"
)

// SweepStatuses are the only statuses the sweeper ever deletes.
var SweepStatuses = []domain.BookingStatus{domain.BookingConfirmed, domain.BookingCompleted}

type Store interface {
	ListByStatuses(ctx context.Context, statuses ...domain.BookingStatus) ([]Booking, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// Sweeper purges confirmed and completed bookings whose expiry instant has passed.
// Runs are idempotent, so overlapping invocations are safe.
type Sweeper struct {
	store Store
	loc   *time.Location
}

func NewSweeper(store Store, loc *time.Location) *Sweeper {
	if loc == nil {
		loc = time.UTC
	}
	return &Sweeper{store: store, loc: loc}
}

// Expired reports whether b's start plus the grace period is strictly before now.
func (s *Sweeper) Expired(b Booking, now time.Time) (bool, error) {
	expiry, err := ExpiryInstant(b.BookingDate, b.BookingTime, s.loc)
	if err != nil {
		return false, err
	}
	return expiry.Before(now), nil
}

// Sweep deletes every expired booking in one batch and returns the number deleted.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (deleted int64, err error) {
	started := time.Now()
	ctx, span := tracing.Start(ctx, "booking.sweep")
	defer func() {
		span.SetAttributes(attribute.Int64("bookings.deleted", deleted))
		tracing.End(span, err)
		metrics.SweepDuration.Observe(time.Since(started).Seconds())
	}()

	rows, err := s.store.ListByStatuses(ctx, SweepStatuses...)
	if err != nil {
		return 0, fmt.Errorf("list bookings: %w", err)
	}

	var expired []uuid.UUID
	for _, b := range rows {
		ok, perr := s.Expired(b, now)
		if perr != nil {
			log.Printf("booking_sweep_skip booking_id=%s date=%q time=%q err=%v", b.ID, b.BookingDate, b.BookingTime, perr)
			continue
		}
		if ok {
			expired = append(expired, b.ID)
		}
	}

	if len(expired) == 0 {
		log.Printf("booking_sweep scanned=%d deleted=0", len(rows))
		return 0, nil
	}

	deleted, err = s.store.DeleteByIDs(ctx, expired)
	if err != nil {
		return 0, fmt.Errorf("delete expired bookings: %w", err)
	}

	metrics.BookingsSwept.Add(float64(deleted))
	log.Printf("booking_sweep scanned=%d expired=%d deleted=%d", len(rows), len(expired), deleted)
	return deleted, nil
}
