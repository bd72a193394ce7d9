package feed

import (
	"context"

	"github.com/google/uuid"

	"turfbook/internal/domain"
)

// FetchLimit is how many recent notifications a controller loads on start.
const FetchLimit = 20

// Store is the recipient-scoped persistence the controller talks to.
type Store interface {
	ListRecent(ctx context.Context, limit int) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context) error
}

// Stream is a cancelable sequence of inserted notifications. Close must close the Events channel.
type Stream interface {
	Events() <-chan domain.Notification
	Close() error
}

// Source opens the recipient's insert stream.
type Source interface {
	Subscribe(ctx context.Context) (Stream, error)
}

type SourceFunc func(ctx context.Context) (Stream, error)

func (f SourceFunc) Subscribe(ctx context.Context) (Stream, error) {
	return f(ctx)
}

// Alerter surfaces new notifications to the user.
type Alerter interface {
	PlayCue() error
	Toast(title, message string)
}

// SyncState tracks whether an entry's read flag matches the backend.
type SyncState int

const (
	SyncConfirmed SyncState = iota
	SyncPending
	SyncFailed
)

func (s SyncState) String() string {
	switch s {
	case SyncConfirmed:
		return "confirmed"
	case SyncPending:
		return "pending"
	case SyncFailed:
		return "failed"
	}
	return "unknown"
}

type Entry struct {
	domain.Notification
	Sync SyncState
}
