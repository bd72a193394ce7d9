package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turfbook/internal/domain"
)

type fakeStore struct {
	mu         sync.Mutex
	list       []domain.Notification
	listErr    error
	markErr    error
	markAllErr error
	release    chan struct{}
	onList     func()
	marked     []uuid.UUID
	markedAll  int
}

func (s *fakeStore) ListRecent(_ context.Context, limit int) ([]domain.Notification, error) {
	if s.onList != nil {
		s.onList()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	if len(s.list) > limit {
		return append([]domain.Notification(nil), s.list[:limit]...), nil
	}
	return append([]domain.Notification(nil), s.list...), nil
}

func (s *fakeStore) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, id)
	return s.markErr
}

func (s *fakeStore) MarkAllAsRead(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markedAll++
	return s.markAllErr
}

type fakeStream struct {
	ch   chan domain.Notification
	once sync.Once
}

func newFakeStream() *fakeStream {
	return &fakeStream{ch: make(chan domain.Notification, 8)}
}

func (f *fakeStream) Events() <-chan domain.Notification { return f.ch }

func (f *fakeStream) Close() error {
	f.once.Do(func() { close(f.ch) })
	return nil
}

type fakeAlerter struct {
	mu     sync.Mutex
	cueErr error
	cues   int
	toasts []string
}

func (a *fakeAlerter) PlayCue() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cues++
	return a.cueErr
}

func (a *fakeAlerter) Toast(title, _ string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.toasts = append(a.toasts, title)
}

func (a *fakeAlerter) toastCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.toasts)
}

func unread(title string) domain.Notification {
	return domain.Notification{ID: uuid.New(), RecipientID: uuid.New(), Title: title, Type: domain.NotifInfo, CreatedAt: time.Now()}
}

func startController(t *testing.T, store *fakeStore, alerter *fakeAlerter) (*Controller, *fakeStream) {
	t.Helper()
	stream := newFakeStream()
	c := NewController(store, SourceFunc(func(context.Context) (Stream, error) { return stream, nil }), alerter)
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() { _ = c.Close() })
	return c, stream
}

func TestStartLoadsRecentNotifications(t *testing.T) {
	store := &fakeStore{}
	for i := 0; i < 25; i++ {
		store.list = append(store.list, unread("n"))
	}
	c, _ := startController(t, store, &fakeAlerter{})

	assert.Len(t, c.Notifications(), FetchLimit)
	assert.Equal(t, FetchLimit, c.UnreadCount())
}

func TestStartFetchFailureLeavesFeedEmpty(t *testing.T) {
	store := &fakeStore{listErr: errors.New("offline")}
	c, _ := startController(t, store, &fakeAlerter{})
	assert.Empty(t, c.Notifications())
}

func TestStartSubscribeFailure(t *testing.T) {
	c := NewController(&fakeStore{}, SourceFunc(func(context.Context) (Stream, error) {
		return nil, errors.New("no socket")
	}), &fakeAlerter{})
	assert.Error(t, c.Start(context.Background()))
	assert.NoError(t, c.Close())
}

func TestStartKeepsInsertsArrivingDuringFetch(t *testing.T) {
	stream := newFakeStream()
	older := unread("older")
	fresh := unread("fresh")
	store := &fakeStore{list: []domain.Notification{older}}
	store.onList = func() { stream.ch <- fresh }
	alerter := &fakeAlerter{}

	c := NewController(store, SourceFunc(func(context.Context) (Stream, error) { return stream, nil }), alerter)
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() { _ = c.Close() })

	require.Eventually(t, func() bool { return len(c.Notifications()) == 2 }, time.Second, 5*time.Millisecond)
	entries := c.Notifications()
	assert.Equal(t, fresh.ID, entries[0].ID)
	assert.Equal(t, older.ID, entries[1].ID)
	assert.Equal(t, 1, alerter.toastCount())
}

func TestStartMergeSkipsIdsAlreadyDelivered(t *testing.T) {
	stream := newFakeStream()
	shared := unread("shared")
	older := unread("older")
	store := &fakeStore{list: []domain.Notification{shared, older}}
	alerter := &fakeAlerter{}
	store.onList = func() {
		stream.ch <- shared
		require.Eventually(t, func() bool { return alerter.toastCount() == 1 }, time.Second, 5*time.Millisecond)
	}

	c := NewController(store, SourceFunc(func(context.Context) (Stream, error) { return stream, nil }), alerter)
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() { _ = c.Close() })

	entries := c.Notifications()
	require.Len(t, entries, 2)
	assert.Equal(t, shared.ID, entries[0].ID)
	assert.Equal(t, older.ID, entries[1].ID)
}

func TestStartFetchFailureKeepsLiveInserts(t *testing.T) {
	stream := newFakeStream()
	fresh := unread("fresh")
	store := &fakeStore{listErr: errors.New("offline")}
	store.onList = func() { stream.ch <- fresh }

	c := NewController(store, SourceFunc(func(context.Context) (Stream, error) { return stream, nil }), &fakeAlerter{})
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() { _ = c.Close() })

	require.Eventually(t, func() bool { return len(c.Notifications()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, fresh.ID, c.Notifications()[0].ID)
}

func TestCloseDuringSubscribeReleasesStream(t *testing.T) {
	stream := newFakeStream()
	entered := make(chan struct{})
	proceed := make(chan struct{})
	c := NewController(&fakeStore{}, SourceFunc(func(context.Context) (Stream, error) {
		close(entered)
		<-proceed
		return stream, nil
	}), &fakeAlerter{})

	done := make(chan error, 1)
	go func() { done <- c.Start(context.Background()) }()

	<-entered
	require.NoError(t, c.Close())
	close(proceed)

	require.NoError(t, <-done)
	_, ok := <-stream.Events()
	assert.False(t, ok)
	assert.Empty(t, c.Notifications())
}

func TestStartAndCloseConcurrently(t *testing.T) {
	for i := 0; i < 50; i++ {
		stream := newFakeStream()
		subscribed := false
		c := NewController(&fakeStore{list: []domain.Notification{unread("a")}},
			SourceFunc(func(context.Context) (Stream, error) {
				subscribed = true
				return stream, nil
			}), &fakeAlerter{})

		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); _ = c.Start(context.Background()) }()
		go func() { defer wg.Done(); _ = c.Close() }()
		wg.Wait()
		require.NoError(t, c.Close())

		if subscribed {
			_, ok := <-stream.Events()
			assert.False(t, ok)
		}
	}
}

func TestInsertEventsArePrependedWithAlerts(t *testing.T) {
	first := unread("first")
	store := &fakeStore{list: []domain.Notification{first}}
	alerter := &fakeAlerter{cueErr: errors.New("autoplay blocked")}
	c, stream := startController(t, store, alerter)

	fresh := unread("fresh")
	stream.ch <- fresh
	stream.ch <- fresh

	require.Eventually(t, func() bool { return alerter.toastCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	entries := c.Notifications()
	require.Len(t, entries, 2)
	assert.Equal(t, fresh.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)
	assert.Equal(t, 2, c.UnreadCount())
	assert.Equal(t, 1, alerter.toastCount())
}

func TestMarkAsReadIsOptimistic(t *testing.T) {
	n := unread("a")
	store := &fakeStore{list: []domain.Notification{n, unread("b")}, release: make(chan struct{})}
	c, _ := startController(t, store, &fakeAlerter{})

	before := c.UnreadCount()
	c.MarkAsRead(n.ID)
	assert.Equal(t, before-1, c.UnreadCount())
	assert.Equal(t, SyncPending, c.Notifications()[0].Sync)

	close(store.release)
	require.Eventually(t, func() bool { return c.Notifications()[0].Sync == SyncConfirmed }, time.Second, 5*time.Millisecond)
	assert.Empty(t, c.SyncFailed())
}

func TestMarkAsReadFailureIsNotRolledBack(t *testing.T) {
	n := unread("a")
	store := &fakeStore{list: []domain.Notification{n}, markErr: errors.New("500")}
	c, _ := startController(t, store, &fakeAlerter{})

	c.MarkAsRead(n.ID)
	require.Eventually(t, func() bool { return len(c.SyncFailed()) == 1 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, []uuid.UUID{n.ID}, c.SyncFailed())
	assert.True(t, c.Notifications()[0].IsRead)
	assert.Zero(t, c.UnreadCount())
}

func TestMarkAsReadIgnoresUnknownOrRead(t *testing.T) {
	n := unread("a")
	n.IsRead = true
	store := &fakeStore{list: []domain.Notification{n}}
	c, _ := startController(t, store, &fakeAlerter{})

	c.MarkAsRead(n.ID)
	c.MarkAsRead(uuid.New())
	require.NoError(t, c.Close())
	assert.Empty(t, store.marked)
}

func TestMarkAllAsReadWaitsForBackend(t *testing.T) {
	store := &fakeStore{list: []domain.Notification{unread("a"), unread("b")}, markAllErr: errors.New("down")}
	c, _ := startController(t, store, &fakeAlerter{})

	assert.Error(t, c.MarkAllAsRead(context.Background()))
	assert.Equal(t, 2, c.UnreadCount())

	store.mu.Lock()
	store.markAllErr = nil
	store.mu.Unlock()

	require.NoError(t, c.MarkAllAsRead(context.Background()))
	assert.Zero(t, c.UnreadCount())
}

func TestReconcileReplacesFeed(t *testing.T) {
	n := unread("a")
	store := &fakeStore{list: []domain.Notification{n}, markErr: errors.New("500")}
	c, _ := startController(t, store, &fakeAlerter{})

	c.MarkAsRead(n.ID)
	require.Eventually(t, func() bool { return len(c.SyncFailed()) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Reconcile(context.Background()))
	assert.Empty(t, c.SyncFailed())
	assert.Equal(t, 1, c.UnreadCount())
}

func TestCloseReleasesStream(t *testing.T) {
	store := &fakeStore{}
	c, stream := startController(t, store, &fakeAlerter{})

	require.NoError(t, c.Close())
	_, ok := <-stream.Events()
	assert.False(t, ok)
	assert.NoError(t, c.Close())
	assert.ErrorIs(t, c.Start(context.Background()), ErrClosed)
}

func TestUpdatesSignal(t *testing.T) {
	store := &fakeStore{list: []domain.Notification{unread("a")}}
	c, _ := startController(t, store, &fakeAlerter{})

	select {
	case <-c.Updates():
	case <-time.After(time.Second):
		t.Fatal("expected an update after start")
	}
}
