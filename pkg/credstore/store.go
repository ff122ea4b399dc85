package credstore

import "sync"

// Store holds the current session token.
type Store interface {
	// Token returns the persisted token and whether one is present.
	Token() (string, bool)
	// Save replaces the persisted token. Empty tokens are rejected.
	Save(token string) error
	// Clear removes the persisted token. Clearing an empty store is a no-op.
	Clear() error
}

// MemoryStore implements Store in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore creates an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *MemoryStore) Save(token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
