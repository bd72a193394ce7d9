package push

import (
	"context"
	"log"
	"sync"
	"time"

	"turfbook/internal/domain"
)

const triggerTimeout = 30 * time.Second

// Trigger runs a fanout in the background for every stored notification.
type Trigger struct {
	fanout *FanoutService
	wg     sync.WaitGroup
}

func NewTrigger(fanout *FanoutService) *Trigger {
	return &Trigger{fanout: fanout}
}

func (t *Trigger) NotificationCreated(ctx context.Context, n domain.Notification) {
	rec := RecordFromNotification(n)
	// the request that created the notification may finish before delivery does
	bg := context.WithoutCancel(ctx)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(bg, triggerTimeout)
		defer cancel()

		if _, err := t.fanout.Fanout(ctx, rec); err != nil {
			log.Printf("push_trigger_failed notification_id=%s err=%v", n.ID, err)
		}
	}()
}

// Wait blocks until every in-flight fanout has finished.
func (t *Trigger) Wait() {
	t.wg.Wait()
}
