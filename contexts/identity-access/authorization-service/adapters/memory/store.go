package memory

import (
	"context"
	"sync"
	"time"
)

// Store keeps the authorized-account set in process memory.
type Store struct {
	mu      sync.RWMutex
	members map[string]time.Time
}

func NewStore() *Store {
	return &Store{members: make(map[string]time.Time)}
}

func (s *Store) AddMember(_ context.Context, accountID string, grantedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[accountID]; ok {
		return nil
	}
	s.members[accountID] = grantedAt.UTC()
	return nil
}

func (s *Store) RemoveMember(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, accountID)
	return nil
}

func (s *Store) IsMember(_ context.Context, accountID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[accountID]
	return ok, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}
