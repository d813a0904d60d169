package attemptstore

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/projectshelf/internal/domain/auth"
	"github.com/yanqian/projectshelf/pkg/util"
)

type counter struct {
	count     int64
	expiresAt time.Time
}

// MemoryStore keeps fixed-window counters in process memory for tests/dev.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]counter
	now      util.Clock
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(util.NowUTC)
}

// NewMemoryStoreWithClock lets tests move time forward.
func NewMemoryStoreWithClock(clock util.Clock) *MemoryStore {
	return &MemoryStore{counters: make(map[string]counter), now: clock}
}

// Increment bumps key, opening a new window when the previous one has expired.
func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	c, ok := s.counters[key]
	if !ok || c.expired(now) {
		c = counter{}
		if window > 0 {
			c.expiresAt = now.Add(window)
		}
	}
	c.count++
	s.counters[key] = c
	return c.count, nil
}

// Count returns the live counter for key.
func (s *MemoryStore) Count(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[key]
	if !ok {
		return 0, nil
	}
	if c.expired(s.now()) {
		delete(s.counters, key)
		return 0, nil
	}
	return c.count, nil
}

// Reset drops the counter.
func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counters, key)
	return nil
}

func (c counter) expired(now time.Time) bool {
	if c.expiresAt.IsZero() {
		return false
	}
	return !now.Before(c.expiresAt)
}

var _ auth.AttemptStore = (*MemoryStore)(nil)
