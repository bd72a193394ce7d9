package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotifInfo      NotificationType = "info"
	NotifWarning   NotificationType = "warning"
	NotifSuccess   NotificationType = "success"
	NotifBroadcast NotificationType = "broadcast"
)

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotifInfo, NotifWarning, NotifSuccess, NotifBroadcast:
		return true
	}
	return false
}

// Notification is the wire shape shared by the REST API, the realtime feed and clients.
type Notification struct {
	ID          uuid.UUID        `json:"id"`
	RecipientID uuid.UUID        `json:"recipient_id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Link        string           `json:"link,omitempty"`
	IsRead      bool             `json:"is_read"`
	CreatedAt   time.Time        `json:"created_at"`
}

// PushPayload is what a device receives for one notification.
type PushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}
