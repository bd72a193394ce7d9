package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turfbook/internal/database/dbtest"
	"turfbook/internal/domain"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(dbtest.Open(t, &Booking{}))
}

func seed(t *testing.T, repo *Repository, date, clock string, status domain.BookingStatus) *Booking {
	t.Helper()
	b := &Booking{
		UserID:      uuid.New(),
		VenueName:   "Court 1",
		BookingDate: date,
		BookingTime: clock,
		Status:      string(status),
	}
	require.NoError(t, repo.Create(context.Background(), b))
	return b
}

func exists(t *testing.T, repo *Repository, id uuid.UUID) bool {
	t.Helper()
	_, err := repo.GetByID(context.Background(), id)
	return err == nil
}

func TestSweepDeletesAfterGraceWindow(t *testing.T) {
	repo := newTestRepo(t)
	b := seed(t, repo, "2024-01-01", "11:00 PM", domain.BookingConfirmed)
	s := NewSweeper(repo, time.UTC)
	ctx := context.Background()

	deleted, err := s.Sweep(ctx, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.True(t, exists(t, repo, b.ID))

	deleted, err = s.Sweep(ctx, time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
	assert.False(t, exists(t, repo, b.ID))
}

func TestSweepExpiryIsStrict(t *testing.T) {
	repo := newTestRepo(t)
	b := seed(t, repo, "2024-01-01", "11:00 PM", domain.BookingCompleted)

	deleted, err := NewSweeper(repo, time.UTC).Sweep(context.Background(), time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.True(t, exists(t, repo, b.ID))
}

func TestSweepOnlyTouchesConfirmedAndCompleted(t *testing.T) {
	repo := newTestRepo(t)
	confirmed := seed(t, repo, "2023-06-01", "9:00 AM", domain.BookingConfirmed)
	completed := seed(t, repo, "2023-06-01", "9:00 AM", domain.BookingCompleted)
	pending := seed(t, repo, "2023-06-01", "9:00 AM", domain.BookingPending)
	cancelled := seed(t, repo, "2023-06-01", "9:00 AM", domain.BookingCancelled)
	future := seed(t, repo, "2030-06-01", "9:00 AM", domain.BookingConfirmed)

	deleted, err := NewSweeper(repo, time.UTC).Sweep(context.Background(), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	assert.False(t, exists(t, repo, confirmed.ID))
	assert.False(t, exists(t, repo, completed.ID))
	assert.True(t, exists(t, repo, pending.ID))
	assert.True(t, exists(t, repo, cancelled.ID))
	assert.True(t, exists(t, repo, future.ID))
}

func TestSweepIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo, "2023-06-01", "9:00 AM", domain.BookingConfirmed)
	seed(t, repo, "2023-06-02", "12:00 PM", domain.BookingCompleted)
	s := NewSweeper(repo, time.UTC)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := s.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, first)

	second, err := s.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, second)
}

func TestSweepSkipsUnparseableRows(t *testing.T) {
	repo := newTestRepo(t)
	bad := seed(t, repo, "2023-06-01", "noon", domain.BookingConfirmed)
	good := seed(t, repo, "2023-06-01", "12:00 PM", domain.BookingConfirmed)

	deleted, err := NewSweeper(repo, time.UTC).Sweep(context.Background(), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
	assert.True(t, exists(t, repo, bad.ID))
	assert.False(t, exists(t, repo, good.ID))
}

type failingStore struct {
	listErr, deleteErr error
	rows               []Booking
}

func (f failingStore) ListByStatuses(context.Context, ...domain.BookingStatus) ([]Booking, error) {
	return f.rows, f.listErr
}

func (f failingStore) DeleteByIDs(context.Context, []uuid.UUID) (int64, error) {
	return 0, f.deleteErr
}

func TestSweepPropagatesStoreErrors(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := NewSweeper(failingStore{listErr: errors.New("boom")}, nil).Sweep(context.Background(), now)
	assert.Error(t, err)

	rows := []Booking{{ID: uuid.New(), BookingDate: "2023-01-01", BookingTime: "1:00 PM", Status: "confirmed"}}
	_, err = NewSweeper(failingStore{rows: rows, deleteErr: errors.New("boom")}, nil).Sweep(context.Background(), now)
	assert.Error(t, err)
}
