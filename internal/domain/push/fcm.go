package push

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"turfbook/internal/domain"
)

// FCMClient is the part of *messaging.Client used for delivery.
type FCMClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type FCMSender struct {
	client FCMClient
}

// NewFCMSenderFromFile builds a messaging client from a service account file.
func NewFCMSenderFromFile(ctx context.Context, credentialsFile string) (*FCMSender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init fcm client: %w", err)
	}
	return NewFCMSender(client), nil
}

func NewFCMSender(client FCMClient) *FCMSender {
	return &FCMSender{client: client}
}

func (s *FCMSender) Send(ctx context.Context, sub Subscription, payload domain.PushPayload) error {
	msg := &messaging.Message{
		Token: sub.Endpoint,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: map[string]string{"url": payload.URL},
	}
	// FCM rejects relative web links
	if strings.HasPrefix(payload.URL, "https://") {
		msg.Webpush = &messaging.WebpushConfig{
			FCMOptions: &messaging.WebpushFCMOptions{Link: payload.URL},
		}
	}

	if _, err := s.client.Send(ctx, msg); err != nil {
		if messaging.IsUnregistered(err) {
			return fmt.Errorf("%w: %v", ErrSubscriptionGone, err)
		}
		return fmt.Errorf("send fcm: %w", err)
	}
	return nil
}
