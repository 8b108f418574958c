package tokenstore

import "sync"

// MemoryStore is a process-local slot. It survives nothing; use it for
// tests and ephemeral runs.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore returns a store preloaded with token ("" for empty).
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (s *MemoryStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryStore) Set(token string) error {
	if Blank(token) {
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

func (s *MemoryStore) Close() error { return nil }
