// Package memory holds in-process repository implementations used in
// development mode and tests, where a Redis instance is not required.
package memory

import (
	"context"
	"sync"

	"github.com/gamingty/storefront/internal/domain"
	"github.com/gamingty/storefront/internal/mailbox"
)

// PendingStore implements repository.PendingRepository with one in-memory
// mailbox per client. Slots do not survive a restart, matching the
// best-effort durability of the deferred-add flow.
type PendingStore struct {
	mu    sync.Mutex
	slots map[string]*mailbox.Mailbox[domain.PendingAction]
}

// NewPendingStore creates an empty in-memory pending-action store.
func NewPendingStore() *PendingStore {
	return &PendingStore{
		slots: make(map[string]*mailbox.Mailbox[domain.PendingAction]),
	}
}

func (s *PendingStore) slot(clientID string) *mailbox.Mailbox[domain.PendingAction] {
	s.mu.Lock()
	defer s.mu.Unlock()

	mb, ok := s.slots[clientID]
	if !ok {
		mb = mailbox.New[domain.PendingAction]()
		s.slots[clientID] = mb
	}
	return mb
}

// Get returns the parked action for a client, or nil when the slot is empty.
func (s *PendingStore) Get(_ context.Context, clientID string) (*domain.PendingAction, error) {
	action, ok := s.slot(clientID).Peek()
	if !ok {
		return nil, nil
	}
	return &action, nil
}

// Put parks an action, replacing any previous one.
func (s *PendingStore) Put(_ context.Context, clientID string, action domain.PendingAction) error {
	s.slot(clientID).Put(action)
	return nil
}

// Clear empties the slot.
func (s *PendingStore) Clear(_ context.Context, clientID string) error {
	s.slot(clientID).Clear()
	return nil
}
