package feed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"turfbook/internal/domain"
)

const persistTimeout = 10 * time.Second

var ErrClosed = errors.New("feed controller is closed")

// Controller owns one recipient's in-memory notification feed.
type Controller struct {
	store   Store
	source  Source
	alerter Alerter

	mu      sync.Mutex
	entries []Entry
	stream  Stream
	started bool
	closed  bool

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	updates chan struct{}
}

func NewController(store Store, source Source, alerter Alerter) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		store:   store,
		source:  source,
		alerter: alerter,
		ctx:     ctx,
		cancel:  cancel,
		updates: make(chan struct{}, 1),
	}
}

// Start opens the insert stream and then loads the most recent notifications.
// Inserts that arrive during the fetch are kept ahead of the fetched list.
// A failed fetch leaves only the live inserts; a failed subscribe is returned.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	c.mu.Unlock()

	stream, err := c.source.Subscribe(c.ctx)
	if err != nil {
		return fmt.Errorf("subscribe to notifications: %w", err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return stream.Close()
	}
	c.stream = stream
	c.wg.Add(1)
	c.mu.Unlock()
	go c.consume(stream)

	list, err := c.store.ListRecent(ctx, FetchLimit)
	if err != nil {
		log.Printf("feed_fetch_failed err=%v", err)
		return nil
	}
	c.mu.Lock()
	c.entries = merge(c.entries, list)
	c.mu.Unlock()
	c.notify()
	return nil
}

func (c *Controller) consume(stream Stream) {
	defer c.wg.Done()
	for n := range stream.Events() {
		if !c.prepend(n) {
			continue
		}
		if err := c.alerter.PlayCue(); err != nil {
			log.Printf("feed_audio_cue_failed err=%v", err)
		}
		c.alerter.Toast(n.Title, n.Message)
		c.notify()
	}
}

// prepend reports false for ids already in the feed.
func (c *Controller) prepend(n domain.Notification) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.ID == n.ID {
			return false
		}
	}
	c.entries = append([]Entry{{Notification: n, Sync: SyncConfirmed}}, c.entries...)
	return true
}

// Notifications returns a snapshot, newest first.
func (c *Controller) Notifications() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// UnreadCount is derived from the current feed on every call.
func (c *Controller) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if !e.IsRead {
			n++
		}
	}
	return n
}

// MarkAsRead flips the entry immediately and persists in the background.
// A failed persist leaves the entry read and marks it SyncFailed.
func (c *Controller) MarkAsRead(id uuid.UUID) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	idx := c.indexOf(id)
	if idx < 0 || c.entries[idx].IsRead {
		c.mu.Unlock()
		return
	}
	c.entries[idx].IsRead = true
	c.entries[idx].Sync = SyncPending
	c.wg.Add(1)
	c.mu.Unlock()
	c.notify()

	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(c.ctx, persistTimeout)
		defer cancel()

		err := c.store.MarkAsRead(ctx, id)
		if err != nil {
			log.Printf("feed_mark_read_failed notification_id=%s err=%v", id, err)
		}

		c.mu.Lock()
		if i := c.indexOf(id); i >= 0 {
			if err != nil {
				c.entries[i].Sync = SyncFailed
			} else {
				c.entries[i].Sync = SyncConfirmed
			}
		}
		c.mu.Unlock()
		c.notify()
	}()
}

// MarkAllAsRead persists first and only then flips every entry.
func (c *Controller) MarkAllAsRead(ctx context.Context) error {
	if err := c.store.MarkAllAsRead(ctx); err != nil {
		log.Printf("feed_mark_all_read_failed err=%v", err)
		return err
	}

	c.mu.Lock()
	for i := range c.entries {
		c.entries[i].IsRead = true
		c.entries[i].Sync = SyncConfirmed
	}
	c.mu.Unlock()
	c.notify()
	return nil
}

// SyncFailed lists entries whose read flag never reached the backend.
func (c *Controller) SyncFailed() []uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ids []uuid.UUID
	for _, e := range c.entries {
		if e.Sync == SyncFailed {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// Reconcile replaces the feed with the backend's view.
func (c *Controller) Reconcile(ctx context.Context) error {
	list, err := c.store.ListRecent(ctx, FetchLimit)
	if err != nil {
		return fmt.Errorf("refetch notifications: %w", err)
	}
	c.mu.Lock()
	c.entries = confirmed(list)
	c.mu.Unlock()
	c.notify()
	return nil
}

// Updates signals that the feed changed. Signals coalesce.
func (c *Controller) Updates() <-chan struct{} {
	return c.updates
}

// Close releases the stream and waits for background persists. Safe to call twice.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	stream := c.stream
	c.stream = nil
	c.mu.Unlock()

	var err error
	if stream != nil {
		err = stream.Close()
	}
	c.wg.Wait()
	c.cancel()
	return err
}

func (c *Controller) notify() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

// indexOf must be called with c.mu held.
func (c *Controller) indexOf(id uuid.UUID) int {
	for i, e := range c.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func confirmed(list []domain.Notification) []Entry {
	out := make([]Entry, len(list))
	for i, n := range list {
		out[i] = Entry{Notification: n, Sync: SyncConfirmed}
	}
	return out
}

// merge keeps live entries first and appends fetched items not already present.
func merge(live []Entry, list []domain.Notification) []Entry {
	seen := make(map[uuid.UUID]struct{}, len(live))
	out := make([]Entry, 0, len(live)+len(list))
	for _, e := range live {
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	for _, n := range list {
		if _, ok := seen[n.ID]; ok {
			continue
		}
		out = append(out, Entry{Notification: n, Sync: SyncConfirmed})
	}
	return out
}
