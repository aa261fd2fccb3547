package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data      Data
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Used when no Redis is configured.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Create(_ context.Context, data *Data) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()

	id := newID()
	d := *data
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now().UTC()
	}
	s.entries[id] = memoryEntry{data: d, expiresAt: s.now().Add(s.ttl)}
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, id)
		return nil, ErrNotFound
	}

	e.expiresAt = s.now().Add(s.ttl)
	s.entries[id] = e

	d := e.data
	d.Flashes = append([]Flash(nil), e.data.Flashes...)
	return &d, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, data *Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return ErrNotFound
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, id)
		return ErrNotFound
	}
	s.entries[id] = memoryEntry{data: *data, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) sweepLocked() {
	now := s.now()
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}
