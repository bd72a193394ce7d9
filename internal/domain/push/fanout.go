package push

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"turfbook/internal/domain"
	"turfbook/internal/metrics"
	"turfbook/internal/pkg/tracing"
)

const (
	DefaultTitle = "New Notification"
	DefaultURL   = "/"

	maxParallelDeliveries = 16
)

// Record is the inserted notification row that triggers a fanout. Every field is optional.
type Record struct {
	RecipientID string `json:"recipient_id"`
	Title       string `json:"title,omitempty"`
	Message     string `json:"message,omitempty"`
	Link        string `json:"link,omitempty"`
}

// RecordFromNotification converts a stored notification into a fanout trigger.
func RecordFromNotification(n domain.Notification) Record {
	return Record{
		RecipientID: n.RecipientID.String(),
		Title:       n.Title,
		Message:     n.Message,
		Link:        n.Link,
	}
}

// Payload builds the shared device payload, filling defaults for empty fields.
func (r Record) Payload() domain.PushPayload {
	p := domain.PushPayload{Title: r.Title, Body: r.Message, URL: r.Link}
	if strings.TrimSpace(p.Title) == "" {
		p.Title = DefaultTitle
	}
	if strings.TrimSpace(p.URL) == "" {
		p.URL = DefaultURL
	}
	return p
}

// Result reports one fanout. Skipped is set when nothing was attempted.
type Result struct {
	Attempted int
	Sent      int
	Pruned    int
	Skipped   string
}

const (
	SkipNoRecipient     = "No recipient_id provided"
	SkipNoSubscriptions = "No subscriptions found"
)

type SubscriptionStore interface {
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]Subscription, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	TouchLastUsed(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

type FanoutService struct {
	store  SubscriptionStore
	sender Sender
	now    func() time.Time
}

func NewFanoutService(store SubscriptionStore, sender Sender) *FanoutService {
	return &FanoutService{store: store, sender: sender, now: time.Now}
}

// Fanout attempts one delivery per subscription of the record's recipient.
// Individual delivery failures never fail the call; only the subscription lookup can.
func (s *FanoutService) Fanout(ctx context.Context, rec Record) (res Result, err error) {
	recipientID, perr := uuid.Parse(strings.TrimSpace(rec.RecipientID))
	if perr != nil || recipientID == uuid.Nil {
		return Result{Skipped: SkipNoRecipient}, nil
	}

	ctx, span := tracing.Start(ctx, "push.fanout", attribute.String("recipient_id", recipientID.String()))
	defer func() { tracing.End(span, err) }()

	subs, err := s.store.ListByRecipient(ctx, recipientID)
	if err != nil {
		return Result{}, fmt.Errorf("list push subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return Result{Skipped: SkipNoSubscriptions}, nil
	}
	span.SetAttributes(attribute.Int("push.subscriptions", len(subs)))

	payload := rec.Payload()

	var (
		mu   sync.Mutex
		sent []uuid.UUID
		gone []uuid.UUID
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDeliveries)
	for _, sub := range subs {
		g.Go(func() error {
			err := s.sender.Send(gctx, sub, payload)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				sent = append(sent, sub.ID)
				metrics.PushDeliveries.WithLabelValues(sub.Kind, "sent").Inc()
			case errors.Is(err, ErrSubscriptionGone):
				gone = append(gone, sub.ID)
				metrics.PushDeliveries.WithLabelValues(sub.Kind, "gone").Inc()
				log.Printf("push_subscription_gone subscription_id=%s recipient_id=%s err=%v", sub.ID, recipientID, err)
			default:
				metrics.PushDeliveries.WithLabelValues(sub.Kind, "failed").Inc()
				log.Printf("push_delivery_failed subscription_id=%s recipient_id=%s kind=%s err=%v", sub.ID, recipientID, sub.Kind, err)
			}
			// failures stay isolated to their own subscription
			return nil
		})
	}
	_ = g.Wait()

	res = Result{Attempted: len(subs), Sent: len(sent)}

	for _, id := range gone {
		if derr := s.store.DeleteByID(ctx, id); derr != nil {
			log.Printf("push_prune_failed subscription_id=%s err=%v", id, derr)
			continue
		}
		res.Pruned++
		metrics.PushSubscriptionsPruned.Inc()
	}

	if terr := s.store.TouchLastUsed(ctx, sent, s.now()); terr != nil {
		log.Printf("push_touch_failed recipient_id=%s err=%v", recipientID, terr)
	}

	log.Printf("push_fanout recipient_id=%s attempted=%d sent=%d pruned=%d", recipientID, res.Attempted, res.Sent, res.Pruned)
	return res, nil
}
