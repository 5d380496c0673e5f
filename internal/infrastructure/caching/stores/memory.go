// Package stores provides concrete cache store implementations
package stores

import (
	"sort"
	"sync"
	"time"

	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/caching/types"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/observability/logging"
)

const defaultCapacity = 100

// MemoryStore is a bounded key/value store with per-entry TTL. When full, a
// Set for a new key evicts the entry with the lowest access count, breaking
// ties by the oldest last access.
type MemoryStore[T any] struct {
	name     string
	capacity int
	ttl      time.Duration
	now      func() time.Time
	logger   *logging.ChanneledLogger

	entries map[string]*types.CacheEntry[T]
	mu      sync.Mutex

	hits      int64
	misses    int64
	evictions int64
	expired   int64
}

// NewMemoryStore creates a store from config. A nil logger discards output.
func NewMemoryStore[T any](config types.StoreConfig, logger *logging.ChanneledLogger) *MemoryStore[T] {
	if config.Capacity <= 0 {
		config.Capacity = defaultCapacity
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &MemoryStore[T]{
		name:     config.Name,
		capacity: config.Capacity,
		ttl:      config.TTL,
		now:      config.Now,
		logger:   logger,
		entries:  make(map[string]*types.CacheEntry[T], config.Capacity),
	}
}

func (s *MemoryStore[T]) Name() string { return s.name }

// Get returns the cached value. Absent and expired keys count as misses;
// expired entries are removed on detection.
func (s *MemoryStore[T]) Get(key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	entry, exists := s.entries[key]
	if !exists {
		s.misses++
		s.logger.LogCacheOperation(s.name, "get", key, false)
		return zero, false
	}

	now := s.now()
	if entry.IsExpired(now, s.ttl) {
		delete(s.entries, key)
		s.misses++
		s.expired++
		s.logger.LogCacheOperation(s.name, "get", key, false)
		return zero, false
	}

	entry.AccessCount++
	entry.LastAccessed = now
	s.hits++
	s.logger.LogCacheOperation(s.name, "get", key, true)
	return entry.Data, true
}

// Set stores value under key, replacing any existing entry and resetting its
// counters.
func (s *MemoryStore[T]) Set(key string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.capacity {
		s.evictOne()
	}

	now := s.now()
	s.entries[key] = &types.CacheEntry[T]{
		Data:         value,
		InsertedAt:   now,
		LastAccessed: now,
	}
}

// evictOne removes the least used entry. Callers must hold s.mu.
func (s *MemoryStore[T]) evictOne() {
	var victim string
	var victimEntry *types.CacheEntry[T]
	for key, entry := range s.entries {
		if victimEntry == nil || lessUsed(entry, victimEntry, key, victim) {
			victim = key
			victimEntry = entry
		}
	}
	if victimEntry == nil {
		return
	}
	delete(s.entries, victim)
	s.evictions++
	s.logger.Cache().Debug("Cache entry evicted",
		"store", s.name,
		"key", victim,
		"accessCount", victimEntry.AccessCount,
		"lastAccessed", victimEntry.LastAccessed)
}

// lessUsed orders entries by access count, then last access, then key so the
// victim does not depend on map iteration order.
func lessUsed[T any](a, b *types.CacheEntry[T], aKey, bKey string) bool {
	if a.AccessCount != b.AccessCount {
		return a.AccessCount < b.AccessCount
	}
	if !a.LastAccessed.Equal(b.LastAccessed) {
		return a.LastAccessed.Before(b.LastAccessed)
	}
	return aKey < bKey
}

// Delete removes key and reports whether it was present.
func (s *MemoryStore[T]) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.entries[key]
	delete(s.entries, key)
	return exists
}

// DeleteMatching removes every key for which match returns true.
func (s *MemoryStore[T]) DeleteMatching(match func(key string) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.entries {
		if match(key) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Clear drops every entry. Hit and miss counters are kept.
func (s *MemoryStore[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*types.CacheEntry[T], s.capacity)
}

// PurgeExpired deletes all entries past their TTL and returns how many were
// removed.
func (s *MemoryStore[T]) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, entry := range s.entries {
		if entry.IsExpired(now, s.ttl) {
			delete(s.entries, key)
			removed++
		}
	}
	s.expired += int64(removed)
	return removed
}

// Keys returns the stored keys in sorted order, expired or not.
func (s *MemoryStore[T]) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s *MemoryStore[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore[T]) Stats() types.CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var hitRate float64
	if total := s.hits + s.misses; total > 0 {
		hitRate = float64(s.hits) / float64(total)
	}
	return types.CacheStats{
		Name:      s.name,
		Size:      len(s.entries),
		Capacity:  s.capacity,
		Hits:      s.hits,
		Misses:    s.misses,
		HitRate:   hitRate,
		Evictions: s.evictions,
		Expired:   s.expired,
		TTL:       s.ttl.String(),
	}
}
