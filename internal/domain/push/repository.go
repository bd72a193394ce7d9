package push

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]Subscription, error) {
	var subs []Subscription
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at ASC").
		Find(&subs).Error
	return subs, err
}

// Upsert stores s keyed by endpoint. Re-registering an endpoint moves it to the new owner.
func (r *Repository) Upsert(ctx context.Context, s *Subscription) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"recipient_id", "kind", "payload"}),
		}).
		Create(s).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("endpoint = ?", s.Endpoint).First(s).Error
}

func (r *Repository) DeleteByEndpoint(ctx context.Context, recipientID uuid.UUID, endpoint string) error {
	res := r.db.WithContext(ctx).
		Where("recipient_id = ? AND endpoint = ?", recipientID, endpoint).
		Delete(&Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByID is a no-op for ids that are already gone.
func (r *Repository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&Subscription{}).Error
}

func (r *Repository) TouchLastUsed(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&Subscription{}).
		Where("id IN ?", ids).
		Update("last_used_at", at).Error
}
