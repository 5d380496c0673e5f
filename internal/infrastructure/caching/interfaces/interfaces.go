// Package interfaces defines cache contracts shared by the manager and the
// cleanup worker.
package interfaces

import (
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/caching/types"
)

// Sweepable is a store the cleanup worker can purge on an interval.
type Sweepable interface {
	Name() string
	PurgeExpired() int
	Stats() types.CacheStats
}

// Store is the generic cache contract implemented by stores.MemoryStore.
type Store[T any] interface {
	Sweepable
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string) bool
	DeleteMatching(match func(key string) bool) int
	Clear()
	Keys() []string
	Len() int
}

// SweepSource exposes every store that should be swept.
type SweepSource interface {
	Sweepables() []Sweepable
}
