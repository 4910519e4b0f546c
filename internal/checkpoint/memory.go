package checkpoint

import "sync"

// MemoryStore is an in-process Store, mainly for tests and dry runs
type MemoryStore struct {
	mu      sync.Mutex
	offset  int
	exists  bool
	history []int
	// SaveErr, when set, is returned by Save without storing anything
	SaveErr error
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{offset: None}
}

// NewMemoryStoreAt returns a store that already holds offset
func NewMemoryStoreAt(offset int) *MemoryStore {
	return &MemoryStore{offset: offset, exists: true}
}

func (s *MemoryStore) Load() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.exists {
		return None, nil
	}
	return s.offset, nil
}

func (s *MemoryStore) Save(offset int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.offset = offset
	s.exists = true
	s.history = append(s.history, offset)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offset = None
	s.exists = false
	return nil
}

// Exists reports whether state is currently stored
func (s *MemoryStore) Exists() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exists
}

// History lists every saved offset in order
func (s *MemoryStore) History() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.history...)
}
