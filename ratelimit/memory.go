package ratelimit

import (
	"context"
	"sync"
	"time"
)

// DefaultSweepInterval is how often MemoryStore removes expired entries.
const DefaultSweepInterval = time.Minute

// MemoryStore is the in-process reference Store: a mutex-guarded map with
// lazy expiry on access and a periodic sweep for abandoned keys.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*Entry
	done    chan struct{}
	once    sync.Once
}

// NewMemoryStore creates a MemoryStore sweeping at the given interval.
// A non-positive interval uses DefaultSweepInterval.
func NewMemoryStore(sweepInterval time.Duration) *MemoryStore {
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	s := &MemoryStore{
		entries: make(map[string]*Entry),
		done:    make(chan struct{}),
	}
	go s.sweep(sweepInterval)
	return s
}

// Get returns the live entry for key, or nil if absent or expired.
func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	if e.Expired(time.Now()) {
		delete(s.entries, key)
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

// Set stores an entry for key.
func (s *MemoryStore) Set(_ context.Context, key string, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *e
	s.entries[key] = &cp
	return nil
}

// Increment counts one request against key, starting a fresh window when the
// key is absent or its window lapsed.
func (s *MemoryStore) Increment(_ context.Context, key string, limit int, window time.Duration) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	e, ok := s.entries[key]
	if !ok || e.Expired(now) {
		e = &Entry{Limit: limit, Used: 1, ResetAt: now.Add(window)}
		s.entries[key] = e
	} else {
		e.Used++
	}
	cp := *e
	return &cp, nil
}

// Reset removes the entry for key.
func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops the sweep goroutine. Safe to call more than once.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *MemoryStore) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for key, e := range s.entries {
				if e.Expired(now) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}
