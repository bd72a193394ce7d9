package notification

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"turfbook/internal/domain"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// InsertListener is told about every notification after it is stored.
// Implementations must not block the caller.
type InsertListener interface {
	NotificationCreated(ctx context.Context, n domain.Notification)
}

// ListenerFunc adapts a function to InsertListener.
type ListenerFunc func(ctx context.Context, n domain.Notification)

func (f ListenerFunc) NotificationCreated(ctx context.Context, n domain.Notification) {
	f(ctx, n)
}

type CreateInput struct {
	RecipientID uuid.UUID
	Type        domain.NotificationType
	Title       string
	Message     string
	Link        string
}

type Service struct {
	repo *Repository

	mu        sync.RWMutex
	listeners []InsertListener
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// OnInsert registers l for every notification created through this service.
func (s *Service) OnInsert(l InsertListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Notification, error) {
	row, err := newRow(in)
	if err != nil {
		return domain.Notification{}, err
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return domain.Notification{}, fmt.Errorf("create notification: %w", err)
	}

	n := row.ToDomain()
	s.emit(ctx, n)
	return n, nil
}

// Broadcast stores one notification per distinct recipient and returns how many were created.
func (s *Service) Broadcast(ctx context.Context, recipients []uuid.UUID, title, message, link string) (int, error) {
	seen := make(map[uuid.UUID]struct{}, len(recipients))
	rows := make([]*Notification, 0, len(recipients))
	for _, id := range recipients {
		if id == uuid.Nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		row, err := newRow(CreateInput{
			RecipientID: id,
			Type:        domain.NotifBroadcast,
			Title:       title,
			Message:     message,
			Link:        link,
		})
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return 0, ErrNoRecipients
	}

	if err := s.repo.CreateBatch(ctx, rows); err != nil {
		return 0, fmt.Errorf("broadcast notifications: %w", err)
	}

	for _, row := range rows {
		s.emit(ctx, row.ToDomain())
	}
	log.Printf("notification_broadcast recipients=%d", len(rows))
	return len(rows), nil
}

// List returns up to limit recent notifications plus the recipient's unread count.
func (s *Service) List(ctx context.Context, recipientID uuid.UUID, limit int) ([]domain.Notification, int64, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := s.repo.ListRecent(ctx, recipientID, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	unread, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		log.Printf("notification_unread_count_failed recipient_id=%s err=%v", recipientID, err)
		unread = 0
	}

	out := make([]domain.Notification, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, unread, nil
}

func (s *Service) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, recipientID)
}

func (s *Service) MarkAsRead(ctx context.Context, id, recipientID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id, recipientID)
}

func (s *Service) MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, recipientID)
}

func (s *Service) emit(ctx context.Context, n domain.Notification) {
	s.mu.RLock()
	listeners := s.listeners
	s.mu.RUnlock()

	for _, l := range listeners {
		l.NotificationCreated(ctx, n)
	}
}

func newRow(in CreateInput) (*Notification, error) {
	if in.RecipientID == uuid.Nil {
		return nil, ErrNoRecipients
	}
	if in.Type == "" {
		in.Type = domain.NotifInfo
	}
	if !in.Type.Valid() {
		return nil, ErrInvalidType
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	return &Notification{
		RecipientID: in.RecipientID,
		Type:        string(in.Type),
		Title:       title,
		Message:     in.Message,
		Link:        strings.TrimSpace(in.Link),
	}, nil
}
