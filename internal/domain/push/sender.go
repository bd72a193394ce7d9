package push

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"turfbook/internal/domain"
)

// Sender delivers one payload to one subscription. A terminal failure wraps ErrSubscriptionGone.
type Sender interface {
	Send(ctx context.Context, sub Subscription, payload domain.PushPayload) error
}

// DispatchSender routes by subscription kind, optionally bounded by a shared rate limiter.
type DispatchSender struct {
	senders map[Kind]Sender
	limiter *rate.Limiter
}

func NewDispatchSender(limiter *rate.Limiter) *DispatchSender {
	return &DispatchSender{
		senders: make(map[Kind]Sender),
		limiter: limiter,
	}
}

func (d *DispatchSender) Register(kind Kind, s Sender) {
	d.senders[kind] = s
}

// Supports reports whether a transport is configured for kind.
func (d *DispatchSender) Supports(kind Kind) bool {
	_, ok := d.senders[kind]
	return ok
}

func (d *DispatchSender) Send(ctx context.Context, sub Subscription, payload domain.PushPayload) error {
	s, ok := d.senders[Kind(sub.Kind)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSenderNotEnabled, sub.Kind)
	}
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}
	return s.Send(ctx, sub, payload)
}
