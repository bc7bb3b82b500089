package stream

import (
	"sync"
	"time"
)

const defaultMaxIdle = 30 * time.Minute

// Store hands out per-owner stream states, where an owner is one
// browsing session. States idle beyond maxIdle are pruned lazily, which
// stands in for the view teardown a long-lived server never observes.
type Store[T any, K comparable] struct {
	mu      sync.Mutex
	key     func(T) K
	entries map[string]*storeEntry[T, K]
	maxIdle time.Duration
	now     func() time.Time
}

type storeEntry[T any, K comparable] struct {
	state *State[T, K]
	seen  time.Time
}

func NewStore[T any, K comparable](key func(T) K) *Store[T, K] {
	return &Store[T, K]{
		key:     key,
		entries: make(map[string]*storeEntry[T, K]),
		maxIdle: defaultMaxIdle,
		now:     time.Now,
	}
}

// Get returns the owner's stream state, creating it empty on first use.
func (s *Store[T, K]) Get(owner string) *State[T, K] {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, entry := range s.entries {
		if id != owner && now.Sub(entry.seen) > s.maxIdle {
			delete(s.entries, id)
		}
	}

	entry, ok := s.entries[owner]
	if !ok {
		entry = &storeEntry[T, K]{state: NewState(s.key)}
		s.entries[owner] = entry
	}
	entry.seen = now
	return entry.state
}

// Drop discards the owner's stream state, as on logout.
func (s *Store[T, K]) Drop(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, owner)
}

func (s *Store[T, K]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
