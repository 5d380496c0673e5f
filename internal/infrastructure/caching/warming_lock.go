// Package caching provides application-wide caching utilities.
package caching

import (
	"sort"
	"sync"
	"time"
)

// LockInfo describes who holds a warming lock and since when.
type LockInfo struct {
	Key    string    `json:"key"`
	Holder string    `json:"holder"`
	Since  time.Time `json:"since"`
}

// WarmingLock keeps more than one warming pass from running for the same key.
// Callers that fail TryLock skip their pass instead of waiting.
type WarmingLock struct {
	mu    sync.Mutex
	held  map[string]LockInfo
	clock func() time.Time
}

func NewWarmingLock() *WarmingLock {
	return &WarmingLock{
		held:  make(map[string]LockInfo),
		clock: time.Now,
	}
}

// TryLock acquires key for holder without blocking and reports whether it
// succeeded.
func (l *WarmingLock) TryLock(key, holder string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, taken := l.held[key]; taken {
		return false
	}
	l.held[key] = LockInfo{Key: key, Holder: holder, Since: l.clock()}
	return true
}

// Unlock releases key whoever holds it.
func (l *WarmingLock) Unlock(key string) {
	l.mu.Lock()
	delete(l.held, key)
	l.mu.Unlock()
}

// Holder returns the current owner of key, if any.
func (l *WarmingLock) Holder(key string) (LockInfo, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	info, ok := l.held[key]
	return info, ok
}

// Snapshot lists held locks ordered by key.
func (l *WarmingLock) Snapshot() []LockInfo {
	l.mu.Lock()
	out := make([]LockInfo, 0, len(l.held))
	for _, info := range l.held {
		out = append(out, info)
	}
	l.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
