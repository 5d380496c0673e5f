package stores

import (
	"fmt"
	"testing"
	"time"

	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/caching/types"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(capacity int, ttl time.Duration) (*MemoryStore[int], *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore[int](types.StoreConfig{
		Name:     "test",
		Capacity: capacity,
		TTL:      ttl,
		Now:      clock.Now,
	}, nil)
	return store, clock
}

func TestMemoryStoreGetSet(t *testing.T) {
	store, _ := newTestStore(4, time.Minute)

	if _, ok := store.Get("missing"); ok {
		t.Fatalf("want miss for absent key")
	}
	store.Set("a", 1)
	got, ok := store.Get("a")
	if !ok || got != 1 {
		t.Fatalf("want=1 got=%v (ok=%v)", got, ok)
	}

	stats := store.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Size != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.HitRate != 0.5 {
		t.Fatalf("want hitRate=0.5 got=%v", stats.HitRate)
	}
}

func TestMemoryStoreLazyExpiry(t *testing.T) {
	store, clock := newTestStore(4, time.Minute)
	store.Set("a", 1)

	clock.Advance(59 * time.Second)
	if _, ok := store.Get("a"); !ok {
		t.Fatalf("entry expired too early")
	}

	clock.Advance(2 * time.Second)
	if _, ok := store.Get("a"); ok {
		t.Fatalf("want expired entry to miss")
	}
	if store.Len() != 0 {
		t.Fatalf("expired entry should be deleted on read, len=%d", store.Len())
	}
}

func TestMemoryStoreEvictsLeastAccessed(t *testing.T) {
	const capacity = 5
	store, clock := newTestStore(capacity, time.Hour)

	for i := 0; i < capacity; i++ {
		store.Set(fmt.Sprintf("k%d", i), i)
		clock.Advance(time.Second)
	}
	// Every key except k3 is read at least once.
	for i := 0; i < capacity; i++ {
		if i == 3 {
			continue
		}
		store.Get(fmt.Sprintf("k%d", i))
		clock.Advance(time.Second)
	}

	store.Set("new", 99)

	if _, ok := store.Get("k3"); ok {
		t.Fatalf("want least-accessed key k3 evicted")
	}
	for _, key := range []string{"k0", "k1", "k2", "k4", "new"} {
		if _, ok := store.Get(key); !ok {
			t.Fatalf("want %s retained", key)
		}
	}
	if got := store.Stats().Evictions; got != 1 {
		t.Fatalf("want evictions=1 got=%d", got)
	}
}

func TestMemoryStoreEvictionTieBreaksOnLastAccess(t *testing.T) {
	store, clock := newTestStore(3, time.Hour)
	store.Set("a", 1)
	clock.Advance(time.Second)
	store.Set("b", 2)
	clock.Advance(time.Second)
	store.Set("c", 3)
	clock.Advance(time.Second)

	// All share accessCount=1; b was read first.
	store.Get("b")
	clock.Advance(time.Second)
	store.Get("a")
	clock.Advance(time.Second)
	store.Get("c")

	store.Set("d", 4)
	if _, ok := store.Get("b"); ok {
		t.Fatalf("want b evicted as oldest last access")
	}
}

func TestMemoryStoreSetResetsCounters(t *testing.T) {
	store, _ := newTestStore(2, time.Hour)
	store.Set("a", 1)
	store.Get("a")
	store.Get("a")
	store.Set("b", 2)
	store.Get("b")

	// Replacing a resets its access count below b's.
	store.Set("a", 10)
	store.Set("c", 3)

	if _, ok := store.Get("a"); ok {
		t.Fatalf("want replaced entry a evicted after counter reset")
	}
}

func TestMemoryStoreOverwriteAtCapacityDoesNotEvict(t *testing.T) {
	store, _ := newTestStore(2, time.Hour)
	store.Set("a", 1)
	store.Set("b", 2)
	store.Set("b", 3)

	if store.Len() != 2 {
		t.Fatalf("want len=2 got=%d", store.Len())
	}
	if got, _ := store.Get("b"); got != 3 {
		t.Fatalf("want=3 got=%d", got)
	}
}

func TestMemoryStorePurgeExpired(t *testing.T) {
	store, clock := newTestStore(10, time.Minute)
	store.Set("old1", 1)
	store.Set("old2", 2)
	clock.Advance(30 * time.Second)
	store.Set("fresh", 3)
	clock.Advance(45 * time.Second)

	if removed := store.PurgeExpired(); removed != 2 {
		t.Fatalf("want removed=2 got=%d", removed)
	}
	if keys := store.Keys(); len(keys) != 1 || keys[0] != "fresh" {
		t.Fatalf("want [fresh] got=%v", keys)
	}
}

func TestMemoryStoreDeleteAndClear(t *testing.T) {
	store, _ := newTestStore(10, time.Minute)
	store.Set("analysis:week::", 1)
	store.Set("analysis:month::", 2)
	store.Set("analysis:week:2024-01-01:", 3)

	if !store.Delete("analysis:month::") {
		t.Fatalf("want delete to report presence")
	}
	if store.Delete("analysis:month::") {
		t.Fatalf("want second delete to report absence")
	}

	removed := store.DeleteMatching(func(key string) bool { return key[:13] == "analysis:week" })
	if removed != 2 {
		t.Fatalf("want removed=2 got=%d", removed)
	}

	store.Set("x", 1)
	store.Clear()
	if store.Len() != 0 {
		t.Fatalf("want empty store after Clear, len=%d", store.Len())
	}
}
