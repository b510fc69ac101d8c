package session

import (
	"context"
	"sync"
)

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

// Get retrieves a session by ID.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if sess.IsExpired() {
		return nil, ErrExpired
	}
	out := sess
	return &out, nil
}

// Set stores a copy of the session.
func (s *MemoryStore) Set(ctx context.Context, session *Session) error {
	s.mu.Lock()
	s.sessions[session.ID] = *session
	s.mu.Unlock()
	return nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// Cleanup removes expired sessions.
func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.IsExpired() {
			delete(s.sessions, id)
		}
	}
	return nil
}

// Close clears the store.
func (s *MemoryStore) Close(ctx context.Context) error {
	s.mu.Lock()
	s.sessions = make(map[string]Session)
	s.mu.Unlock()
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
