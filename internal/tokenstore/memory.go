package tokenstore

import "sync"

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	sess Session
}

var _ Store = (*MemoryStore)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(tokens Tokens, user User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = Session{Tokens: tokens, User: user}
	return nil
}

func (m *MemoryStore) Load() (Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess, m.sess.Access != "", nil
}

func (m *MemoryStore) SetAccessToken(access string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess.Access = access
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = Session{}
	return nil
}
