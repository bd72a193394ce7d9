package booking

import (
	"context"
	"log"
	"time"
)

const DefaultSweepInterval = time.Hour

// Scheduler runs the sweeper in the background on a fixed interval.
type Scheduler struct {
	sweeper  *Sweeper
	interval time.Duration
	now      func() time.Time
}

func NewScheduler(sweeper *Sweeper, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Scheduler{sweeper: sweeper, interval: interval, now: time.Now}
}

// Run sweeps once immediately, then on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("booking sweeper started with interval %v", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweepOnce(ctx)
	for {
		select {
		case <-ticker.C:
			s.sweepOnce(ctx)
		case <-ctx.Done():
			log.Println("booking sweeper stopped")
			return
		}
	}
}

func (s *Scheduler) sweepOnce(ctx context.Context) {
	if _, err := s.sweeper.Sweep(ctx, s.now()); err != nil {
		log.Printf("scheduled booking sweep failed: %v", err)
	}
}
