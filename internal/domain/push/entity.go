package push

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Kind string

const (
	KindWebPush Kind = "webpush"
	KindFCM     Kind = "fcm"
)

func (k Kind) Valid() bool {
	return k == KindWebPush || k == KindFCM
}

// Subscription is one delivery endpoint owned by a recipient. Endpoint is the
// browser push URL for webpush and the registration token for fcm.
type Subscription struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	RecipientID uuid.UUID      `gorm:"type:uuid;column:recipient_id;not null;index:idx_push_subscriptions_recipient" json:"recipient_id"`
	Kind        string         `gorm:"column:kind;size:16;not null" json:"kind"`
	Endpoint    string         `gorm:"column:endpoint;not null;uniqueIndex:idx_push_subscriptions_endpoint" json:"endpoint"`
	Payload     datatypes.JSON `gorm:"column:payload" json:"payload,omitempty"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"created_at"`
	LastUsedAt  *time.Time     `gorm:"column:last_used_at" json:"last_used_at,omitempty"`
}

func (Subscription) TableName() string {
	return "push_subscriptions"
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
