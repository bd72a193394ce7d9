package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrNotSignedIn = errors.New("no signed-in session")

// Factory builds an unstarted controller for one recipient.
type Factory func(recipient uuid.UUID) (*Controller, error)

// Manager holds at most one live controller, tied to the signed-in recipient.
type Manager struct {
	factory Factory

	mu        sync.Mutex
	recipient uuid.UUID
	current   *Controller
}

func NewManager(factory Factory) *Manager {
	return &Manager{factory: factory}
}

// SignIn tears down any previous session's controller, then starts a new one.
func (m *Manager) SignIn(ctx context.Context, recipient uuid.UUID) (*Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.teardown(); err != nil {
		return nil, err
	}

	c, err := m.factory(recipient)
	if err != nil {
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}

	m.recipient = recipient
	m.current = c
	return c, nil
}

func (m *Manager) SignOut() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.teardown()
}

// Current returns the live controller or ErrNotSignedIn.
func (m *Manager) Current() (*Controller, uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, uuid.Nil, ErrNotSignedIn
	}
	return m.current, m.recipient, nil
}

// teardown must be called with m.mu held.
func (m *Manager) teardown() error {
	if m.current == nil {
		return nil
	}
	err := m.current.Close()
	m.current = nil
	m.recipient = uuid.Nil
	return err
}
