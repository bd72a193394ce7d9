package push

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// BrowserKeys are the client keys of a W3C PushSubscription.
type BrowserKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

type RegisterInput struct {
	Kind     Kind
	Endpoint string
	Keys     BrowserKeys
}

// SubscriptionService manages a recipient's own push endpoints.
type SubscriptionService struct {
	repo *Repository
}

func NewSubscriptionService(repo *Repository) *SubscriptionService {
	return &SubscriptionService{repo: repo}
}

func (s *SubscriptionService) Register(ctx context.Context, recipientID uuid.UUID, in RegisterInput) (*Subscription, error) {
	if in.Kind == "" {
		in.Kind = KindWebPush
	}
	if !in.Kind.Valid() {
		return nil, ErrUnsupportedKind
	}
	endpoint := strings.TrimSpace(in.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is required", ErrInvalidPayload)
	}

	sub := &Subscription{
		RecipientID: recipientID,
		Kind:        string(in.Kind),
		Endpoint:    endpoint,
	}

	if in.Kind == KindWebPush {
		if !strings.HasPrefix(endpoint, "https://") {
			return nil, fmt.Errorf("%w: endpoint must be an https URL", ErrInvalidPayload)
		}
		if in.Keys.P256dh == "" || in.Keys.Auth == "" {
			return nil, fmt.Errorf("%w: keys.p256dh and keys.auth are required", ErrInvalidPayload)
		}
		raw, err := json.Marshal(struct {
			Endpoint string      `json:"endpoint"`
			Keys     BrowserKeys `json:"keys"`
		}{endpoint, in.Keys})
		if err != nil {
			return nil, err
		}
		sub.Payload = raw
	}

	if err := s.repo.Upsert(ctx, sub); err != nil {
		return nil, fmt.Errorf("store push subscription: %w", err)
	}
	return sub, nil
}

func (s *SubscriptionService) Unregister(ctx context.Context, recipientID uuid.UUID, endpoint string) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return fmt.Errorf("%w: endpoint is required", ErrInvalidPayload)
	}
	return s.repo.DeleteByEndpoint(ctx, recipientID, endpoint)
}

func (s *SubscriptionService) List(ctx context.Context, recipientID uuid.UUID) ([]Subscription, error) {
	return s.repo.ListByRecipient(ctx, recipientID)
}
