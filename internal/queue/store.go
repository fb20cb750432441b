package queue

import (
	"sync"
	"time"
)

// resultStore is the in-memory result index. Terminal results expire
// ResultTTL after completion; non-terminal entries expire ResultTTL after
// enqueue so abandoned tasks cannot accumulate.
type resultStore struct {
	mu      sync.RWMutex
	results map[string]*Result
}

func newResultStore() *resultStore {
	return &resultStore{results: make(map[string]*Result)}
}

func (s *resultStore) put(r *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[r.TaskID] = r
}

func (s *resultStore) get(taskID string) (*Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[taskID]
	if !ok {
		return nil, false
	}
	// Copy so callers never race with worker updates.
	cp := *r
	return &cp, true
}

func (s *resultStore) setStatus(taskID string, status Status, retries int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.results[taskID]; ok {
		r.Status = status
		r.Retries = retries
	}
}

// finish applies a terminal mutation and stamps CompletedAt.
func (s *resultStore) finish(taskID string, mutate func(*Result)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[taskID]
	if !ok {
		return
	}
	mutate(r)
	now := time.Now().UTC()
	r.CompletedAt = &now
}

// purgeExpired drops terminal results older than ttl past completion, and
// non-terminal entries older than ttl past enqueue. The latter covers tasks
// that were still queued or running when the pool shut down.
func (s *resultStore) purgeExpired(ttl time.Duration) {
	cutoff := time.Now().UTC().Add(-ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.results {
		expired := r.CompletedAt != nil && r.CompletedAt.Before(cutoff)
		stale := r.CompletedAt == nil && r.EnqueuedAt.Before(cutoff)
		if expired || stale {
			delete(s.results, id)
		}
	}
}
