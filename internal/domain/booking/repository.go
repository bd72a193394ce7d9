package booking

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"turfbook/internal/domain"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, b *Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

// ListByStatuses returns every booking in one of statuses, with no time filter.
func (r *Repository) ListByStatuses(ctx context.Context, statuses ...domain.BookingStatus) ([]Booking, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}

	var rows []Booking
	err := r.db.WithContext(ctx).
		Where("status IN ?", values).
		Find(&rows).Error
	return rows, err
}

// DeleteByIDs removes all ids in one statement and returns how many rows were actually deleted.
// Ids that are already gone are ignored.
func (r *Repository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&Booking{})
	return res.RowsAffected, res.Error
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var b Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}
