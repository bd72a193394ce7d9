package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turfbook/internal/database/dbtest"
	"turfbook/internal/domain"
	"turfbook/internal/realtime"
)

func newTestService(t *testing.T) (*Service, *Repository) {
	t.Helper()
	db := dbtest.Open(t, &Notification{})
	repo := NewRepository(db)
	return NewService(repo), repo
}

type recordingListener struct {
	mu  sync.Mutex
	got []domain.Notification
}

func (r *recordingListener) NotificationCreated(_ context.Context, n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
}

func TestServiceCreateNotifiesListeners(t *testing.T) {
	svc, _ := newTestService(t)
	rec := &recordingListener{}
	svc.OnInsert(rec)

	recipient := uuid.New()
	n, err := svc.Create(context.Background(), CreateInput{
		RecipientID: recipient,
		Title:       "Booking confirmed",
		Message:     "See you at 7",
		Link:        "/bookings/1",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, n.ID)
	assert.Equal(t, domain.NotifInfo, n.Type)
	assert.False(t, n.IsRead)
	require.Len(t, rec.got, 1)
	assert.Equal(t, n.ID, rec.got[0].ID)
	assert.Equal(t, recipient, rec.got[0].RecipientID)
}

func TestServiceCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Title: "x"})
	assert.ErrorIs(t, err, ErrNoRecipients)

	_, err = svc.Create(ctx, CreateInput{RecipientID: uuid.New(), Title: "  "})
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, err = svc.Create(ctx, CreateInput{RecipientID: uuid.New(), Title: "x", Type: "urgent"})
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestServiceListNewestFirstWithLimit(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	recipient := uuid.New()
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 25; i++ {
		require.NoError(t, repo.Create(ctx, &Notification{
			RecipientID: recipient,
			Title:       "n",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Create(ctx, &Notification{RecipientID: uuid.New(), Title: "other"}))

	items, unread, err := svc.List(ctx, recipient, 0)
	require.NoError(t, err)
	assert.Len(t, items, DefaultListLimit)
	assert.EqualValues(t, 25, unread)
	assert.True(t, items[0].CreatedAt.After(items[1].CreatedAt))
	for _, it := range items {
		assert.Equal(t, recipient, it.RecipientID)
	}

	items, _, err = svc.List(ctx, recipient, 500)
	require.NoError(t, err)
	assert.Len(t, items, 25)
}

func TestServiceMarkAsRead(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	recipient := uuid.New()

	n, err := svc.Create(ctx, CreateInput{RecipientID: recipient, Title: "hello"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.MarkAsRead(ctx, n.ID, uuid.New()), ErrNotificationNotFound)
	require.NoError(t, svc.MarkAsRead(ctx, n.ID, recipient))
	require.NoError(t, svc.MarkAsRead(ctx, n.ID, recipient))

	count, err := svc.UnreadCount(ctx, recipient)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestServiceMarkAllAsRead(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	recipient := uuid.New()
	other := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, CreateInput{RecipientID: recipient, Title: "n"})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, CreateInput{RecipientID: other, Title: "n"})
	require.NoError(t, err)

	updated, err := svc.MarkAllAsRead(ctx, recipient)
	require.NoError(t, err)
	assert.EqualValues(t, 3, updated)

	count, err := svc.UnreadCount(ctx, other)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestServiceBroadcastDedupesRecipients(t *testing.T) {
	svc, _ := newTestService(t)
	rec := &recordingListener{}
	svc.OnInsert(rec)
	ctx := context.Background()

	a, b := uuid.New(), uuid.New()
	created, err := svc.Broadcast(ctx, []uuid.UUID{a, b, a, uuid.Nil}, "Maintenance", "Tonight", "")
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	require.Len(t, rec.got, 2)
	for _, n := range rec.got {
		assert.Equal(t, domain.NotifBroadcast, n.Type)
	}

	_, err = svc.Broadcast(ctx, []uuid.UUID{uuid.Nil}, "x", "", "")
	assert.ErrorIs(t, err, ErrNoRecipients)
}

func TestRealtimePublisherRoutesToRecipient(t *testing.T) {
	svc, _ := newTestService(t)
	hub := realtime.NewHub(4)
	svc.OnInsert(NewRealtimePublisher(hub))

	recipient := uuid.New()
	sub := hub.Subscribe(realtime.Filter{Table: TableName, Type: realtime.EventInsert, Key: recipient.String()})
	defer sub.Cancel()

	n, err := svc.Create(context.Background(), CreateInput{RecipientID: recipient, Title: "Hi"})
	require.NoError(t, err)

	select {
	case ev := <-sub.Events():
		assert.Equal(t, TableName, ev.Table)
		assert.Contains(t, string(ev.Record), n.ID.String())
		assert.Contains(t, string(ev.Record), `"recipient_id"`)
	case <-time.After(time.Second):
		t.Fatal("expected realtime event")
	}
}
