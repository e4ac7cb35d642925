package cache

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int64
	resetAt time.Time
}

// InMemoryRateLimitStore implements RateLimitStore with a process-local map.
// Counts are not shared between server instances.
type InMemoryRateLimitStore struct {
	mu        sync.Mutex
	windows   map[string]*window
	limit     int
	period    time.Duration
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryRateLimitStore creates a store allowing limit requests per period.
// It starts a background goroutine that drops stale windows.
func NewInMemoryRateLimitStore(limit int, period time.Duration) *InMemoryRateLimitStore {
	return newInMemoryRateLimitStore(limit, period, time.Now)
}

func newInMemoryRateLimitStore(limit int, period time.Duration, now func() time.Time) *InMemoryRateLimitStore {
	s := &InMemoryRateLimitStore{
		windows:  make(map[string]*window),
		limit:    limit,
		period:   period,
		now:      now,
		stopChan: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop(period * 2)

	return s
}

// Allow implements RateLimitStore
func (s *InMemoryRateLimitStore) Allow(ctx context.Context, key string) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, exists := s.windows[key]
	if !exists || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(s.period)}
		s.windows[key] = w
	}
	w.count++

	return decide(w.count, s.limit, w.resetAt), nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryRateLimitStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of tracked keys
func (s *InMemoryRateLimitStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

func (s *InMemoryRateLimitStore) cleanupLoop(every time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryRateLimitStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, key)
		}
	}
}

var _ RateLimitStore = (*InMemoryRateLimitStore)(nil)
