// Package types defines the data structures shared by the cache stores.
package types

import "time"

// CacheEntry wraps a cached value with the bookkeeping used for expiry and
// eviction. Entries are replaced whole on every Set.
type CacheEntry[T any] struct {
	Data         T         `json:"data"`
	InsertedAt   time.Time `json:"insertedAt"`
	AccessCount  int64     `json:"accessCount"`
	LastAccessed time.Time `json:"lastAccessed"`
}

// IsExpired reports whether the entry is older than ttl at now. A zero ttl
// never expires.
func (e *CacheEntry[T]) IsExpired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(e.InsertedAt) > ttl
}

// StoreConfig configures a single memory store.
type StoreConfig struct {
	Name     string
	Capacity int
	TTL      time.Duration
	Now      func() time.Time
}

// CacheStats is a point-in-time view of a store's counters.
type CacheStats struct {
	Name      string  `json:"name"`
	Size      int     `json:"size"`
	Capacity  int     `json:"capacity"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	HitRate   float64 `json:"hitRate"`
	Evictions int64   `json:"evictions"`
	Expired   int64   `json:"expired"`
	TTL       string  `json:"ttl"`
}
