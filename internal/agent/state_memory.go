package agent

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStateStore is a process-local StateStore. It backs single-node
// deployments that run without a database and is the store of choice in
// tests.
type MemoryStateStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]any
}

// NewMemoryStateStore creates an empty in-memory state store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{
		sessions: make(map[string]map[string]any),
	}
}

// Ensure MemoryStateStore implements the StateStore interface
var _ StateStore = (*MemoryStateStore)(nil)

// CreateSession implements StateStore.CreateSession.
func (s *MemoryStateStore) CreateSession(ctx context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	s.sessions[id] = map[string]any{}
	return id, nil
}

// State implements StateStore.State. The returned map is a shallow copy so
// callers can iterate it without holding the store's lock.
func (s *MemoryStateStore) State(ctx context.Context, sessionID string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	snapshot := make(map[string]any, len(state))
	for k, v := range state {
		snapshot[k] = v
	}
	return snapshot, nil
}

// SetState implements StateStore.SetState.
func (s *MemoryStateStore) SetState(ctx context.Context, sessionID, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}

	state[key] = value
	return nil
}

// DeleteSession implements StateStore.DeleteSession. Deleting an unknown
// session is a no-op.
func (s *MemoryStateStore) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}
