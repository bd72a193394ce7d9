package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"turfbook/internal/domain"
	"turfbook/internal/feed"
)

// Client talks to the turfbook REST API on behalf of one signed-in user.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type notificationList struct {
	Notifications []domain.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unread_count"`
}

// ListRecent returns the caller's newest notifications first.
func (c *Client) ListRecent(ctx context.Context, limit int) ([]domain.Notification, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var out notificationList
	if err := c.get(ctx, "/api/v1/notifications?"+params.Encode(), &out); err != nil {
		return nil, fmt.Errorf("client.ListRecent: %w", err)
	}
	return out.Notifications, nil
}

// UnreadCount returns the server-side unread count.
func (c *Client) UnreadCount(ctx context.Context) (int64, error) {
	var out struct {
		UnreadCount int64 `json:"unread_count"`
	}
	if err := c.get(ctx, "/api/v1/notifications/unread-count", &out); err != nil {
		return 0, fmt.Errorf("client.UnreadCount: %w", err)
	}
	return out.UnreadCount, nil
}

// MarkAsRead flips is_read on one notification.
func (c *Client) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	path := "/api/v1/notifications/" + url.PathEscape(id.String()) + "/read"
	if err := c.doRequest(ctx, http.MethodPatch, path, nil, nil); err != nil {
		return fmt.Errorf("client.MarkAsRead: %w", err)
	}
	return nil
}

// MarkAllAsRead flips is_read on every unread notification of the caller.
func (c *Client) MarkAllAsRead(ctx context.Context) error {
	if err := c.post(ctx, "/api/v1/notifications/read-all", nil, nil); err != nil {
		return fmt.Errorf("client.MarkAllAsRead: %w", err)
	}
	return nil
}

// PushKeys are the browser-generated keys of a web push subscription.
type PushKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

type RegisterPushRequest struct {
	Kind     string   `json:"kind,omitempty"`
	Endpoint string   `json:"endpoint"`
	Keys     PushKeys `json:"keys"`
}

// RegisterPushSubscription stores a push endpoint for the caller.
func (c *Client) RegisterPushSubscription(ctx context.Context, req RegisterPushRequest) error {
	if err := c.post(ctx, "/api/v1/push/subscriptions", req, nil); err != nil {
		return fmt.Errorf("client.RegisterPushSubscription: %w", err)
	}
	return nil
}

// UnregisterPushSubscription removes a push endpoint.
func (c *Client) UnregisterPushSubscription(ctx context.Context, endpoint string) error {
	body := map[string]string{"endpoint": endpoint}
	if err := c.doRequest(ctx, http.MethodDelete, "/api/v1/push/subscriptions", body, nil); err != nil {
		return fmt.Errorf("client.UnregisterPushSubscription: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

// envelope is the {success, data, error} wrapper every REST response uses.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", err)}
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// decodeError understands both {"error":{"code","message"}} and {"error":"..."}.
func decodeError(status int, body []byte) error {
	var env envelope
	if json.Unmarshal(body, &env) == nil && len(env.Error) > 0 {
		var detailed struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(env.Error, &detailed) == nil && (detailed.Code != "" || detailed.Message != "") {
			return &HTTPError{StatusCode: status, Code: detailed.Code, Message: detailed.Message}
		}
		var plain string
		if json.Unmarshal(env.Error, &plain) == nil && plain != "" {
			return &HTTPError{StatusCode: status, Message: plain}
		}
	}
	return &HTTPError{StatusCode: status, Message: strings.TrimSpace(string(body))}
}

// FeedSource adapts Subscribe to the feed controller's Source.
func (c *Client) FeedSource() feed.Source {
	return feed.SourceFunc(func(ctx context.Context) (feed.Stream, error) {
		s, err := c.Subscribe(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}
