package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"

	"turfbook/internal/domain"
)

type WebPushConfig struct {
	PublicKey  string
	PrivateKey string
	Subject    string
	TTL        int
}

// WebPushSender delivers VAPID-signed, encrypted payloads to browser push services.
type WebPushSender struct {
	cfg    WebPushConfig
	client *http.Client
}

func NewWebPushSender(cfg WebPushConfig, client *http.Client) *WebPushSender {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	// webpush-go adds the mailto: scheme itself
	cfg.Subject = strings.TrimPrefix(cfg.Subject, "mailto:")
	if cfg.TTL <= 0 {
		cfg.TTL = 86400
	}
	return &WebPushSender{cfg: cfg, client: client}
}

func (s *WebPushSender) Send(ctx context.Context, sub Subscription, payload domain.PushPayload) error {
	target, err := browserSubscription(sub)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, target, &webpush.Options{
		HTTPClient:      s.client,
		Subscriber:      s.cfg.Subject,
		VAPIDPublicKey:  s.cfg.PublicKey,
		VAPIDPrivateKey: s.cfg.PrivateKey,
		TTL:             s.cfg.TTL,
	})
	if err != nil {
		return fmt.Errorf("send web push: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("%w: push service returned %d", ErrSubscriptionGone, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return nil
}

// browserSubscription decodes the stored PushSubscription JSON.
func browserSubscription(sub Subscription) (*webpush.Subscription, error) {
	var target webpush.Subscription
	if len(sub.Payload) > 0 {
		if err := json.Unmarshal(sub.Payload, &target); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
	}
	if target.Endpoint == "" {
		target.Endpoint = sub.Endpoint
	}
	if target.Endpoint == "" || target.Keys.P256dh == "" || target.Keys.Auth == "" {
		return nil, fmt.Errorf("%w: endpoint and keys are required", ErrInvalidPayload)
	}
	return &target, nil
}
