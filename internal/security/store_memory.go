package security

import (
	"context"
	"sync"
	"time"
)

const memorySweepInterval = time.Minute

type memoryRecord struct {
	attempt Attempt
	expires time.Time
}

// MemoryStore keeps attempts in process memory. State is lost on restart and
// is not shared between instances. Records expire after the ttl passed to
// Save, like keys in RedisStore.
type MemoryStore struct {
	mu        sync.RWMutex
	records   map[string]memoryRecord
	now       func() time.Time
	nextSweep time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]memoryRecord), now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, identifier string) (Attempt, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[identifier]
	if !ok || !s.now().Before(r.expires) {
		return Attempt{}, false, nil
	}
	return r.attempt, true, nil
}

// Save stores a until ttl elapses. Expired records are swept at most once per
// memorySweepInterval.
func (s *MemoryStore) Save(_ context.Context, identifier string, a Attempt, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if !now.Before(s.nextSweep) {
		s.sweep(now)
		s.nextSweep = now.Add(memorySweepInterval)
	}
	s.records[identifier] = memoryRecord{attempt: a, expires: now.Add(ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, identifier)
	return nil
}

func (s *MemoryStore) sweep(now time.Time) {
	for id, r := range s.records {
		if !now.Before(r.expires) {
			delete(s.records, id)
		}
	}
}

// Len reports how many records are held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
