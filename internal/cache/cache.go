// Package cache provides the in-process stores shared by the extraction
// and decipher paths: a string-keyed store for fetched script bodies and
// a scope-qualified store for per-player memoized values.
package cache

import "sync"

// Store maps string keys to string values. Add is store-once: the first
// value written for a key wins, which keeps concurrent writers of
// identical content idempotent.
type Store struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{items: make(map[string]string)}
}

// Add stores value under key unless the key is already present.
func (s *Store) Add(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; ok {
		return
	}
	s.items[key] = value
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

// Contains reports whether key is present.
func (s *Store) Contains(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[key]
	return ok
}

// Len reports the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

type scopedKey struct {
	scope string
	key   string
}

// ScopedStore maps (scope, key) pairs to string values. Scopes partition
// unrelated memo spaces ("youtube-<name>", "sig-<player_url>",
// "n-<player_url>") inside one store.
type ScopedStore struct {
	mu    sync.RWMutex
	items map[scopedKey]string
}

// NewScopedStore returns an empty ScopedStore.
func NewScopedStore() *ScopedStore {
	return &ScopedStore{items: make(map[scopedKey]string)}
}

// Add stores value under (scope, key) unless already present.
func (s *ScopedStore) Add(scope, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := scopedKey{scope: scope, key: key}
	if _, ok := s.items[k]; ok {
		return
	}
	s.items[k] = value
}

// Get returns the value stored under (scope, key).
func (s *ScopedStore) Get(scope, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[scopedKey{scope: scope, key: key}]
	return v, ok
}

// Contains reports whether (scope, key) is present.
func (s *ScopedStore) Contains(scope, key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[scopedKey{scope: scope, key: key}]
	return ok
}
