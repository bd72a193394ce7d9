package notification

import (
	"github.com/google/uuid"

	"turfbook/internal/domain"
)

type ListResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unread_count"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

type MarkAllResponse struct {
	Status  string `json:"status"`
	Updated int64  `json:"updated"`
}

// CreateRequest is used by admins to notify a single recipient.
type CreateRequest struct {
	RecipientID uuid.UUID `json:"recipient_id" validate:"required"`
	Type        string    `json:"type" validate:"omitempty,oneof=info warning success broadcast"`
	Title       string    `json:"title" validate:"required,max=255"`
	Message     string    `json:"message" validate:"max=2000"`
	Link        string    `json:"link" validate:"omitempty,max=2048"`
}

type BroadcastRequest struct {
	RecipientIDs []uuid.UUID `json:"recipient_ids" validate:"required,min=1,max=1000"`
	Title        string      `json:"title" validate:"required,max=255"`
	Message      string      `json:"message" validate:"max=2000"`
	Link         string      `json:"link" validate:"omitempty,max=2048"`
}

type BroadcastResponse struct {
	Created int `json:"created"`
}
