package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"turfbook/internal/domain"
)

// TableName is also the realtime table name carried by change events.
const TableName = "notifications"

// Notification is the persisted row. The only mutation after insert is flipping IsRead.
type Notification struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;column:id"`
	RecipientID uuid.UUID `gorm:"type:uuid;column:recipient_id;not null;index:idx_notifications_recipient_created,priority:1"`
	Type        string    `gorm:"column:type;size:20;not null;default:info"`
	Title       string    `gorm:"column:title;size:255;not null"`
	Message     string    `gorm:"column:message;not null;default:''"`
	Link        string    `gorm:"column:link;not null;default:''"`
	IsRead      bool      `gorm:"column:is_read;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;index:idx_notifications_recipient_created,priority:2,sort:desc"`
}

func (Notification) TableName() string {
	return TableName
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Type == "" {
		n.Type = string(domain.NotifInfo)
	}
	return nil
}

func (n *Notification) ToDomain() domain.Notification {
	return domain.Notification{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		Type:        domain.NotificationType(n.Type),
		Title:       n.Title,
		Message:     n.Message,
		Link:        n.Link,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt,
	}
}
