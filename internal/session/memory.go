package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Sessions are stored encoded
// so callers never share state with the store.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	now      func() time.Time
}

// NewMemoryStore creates a store whose sessions expire ttl after their last
// save. A zero ttl disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	data, err := encode(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.live(s.ID); ok {
		return ErrExists
	}
	m.sessions[s.ID] = m.entry(data)
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	e, ok := m.live(id)
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(e.data)
}

// Save overwrites an existing session and refreshes its expiry. It never
// recreates a deleted or expired session.
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	data, err := encode(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.live(s.ID); !ok {
		return ErrNotFound
	}
	m.sessions[s.ID] = m.entry(data)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.live(id); !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Sweep drops expired sessions that were never touched again and reports
// how many are still live.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id := range m.sessions {
		if _, ok := m.live(id); ok {
			n++
		}
	}
	return n
}

// live returns the entry for id, dropping it if it expired. m.mu must be held.
func (m *MemoryStore) live(id string) (memoryEntry, bool) {
	e, ok := m.sessions[id]
	if !ok {
		return memoryEntry{}, false
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.sessions, id)
		return memoryEntry{}, false
	}
	return e, true
}

func (m *MemoryStore) entry(data []byte) memoryEntry {
	e := memoryEntry{data: data}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}
	return e
}
