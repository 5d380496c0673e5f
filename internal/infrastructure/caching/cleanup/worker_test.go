package cleanup

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/caching/interfaces"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/caching/types"
)

type storeSet []interfaces.Sweepable

func (s storeSet) Sweepables() []interfaces.Sweepable { return s }

func TestSweepOncePurgesExpiredEntries(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	a := stores.NewMemoryStore[string](types.StoreConfig{Name: "a", Capacity: 10, TTL: time.Minute, Now: clock}, nil)
	b := stores.NewMemoryStore[string](types.StoreConfig{Name: "b", Capacity: 10, TTL: time.Hour, Now: clock}, nil)
	a.Set("x", "1")
	a.Set("y", "2")
	b.Set("z", "3")

	now = now.Add(2 * time.Minute)

	var out bytes.Buffer
	worker := NewWorker(storeSet{a, b}, &Config{SweepInterval: time.Minute, VerboseReporting: true}, nil)
	worker.out = &out

	if removed := worker.SweepOnce(context.Background()); removed != 2 {
		t.Fatalf("want removed=2 got=%d", removed)
	}
	if a.Len() != 0 || b.Len() != 1 {
		t.Fatalf("want a empty and b untouched, got a=%d b=%d", a.Len(), b.Len())
	}
	if !strings.Contains(out.String(), "PERIODIC CACHE CLEANUP") {
		t.Fatalf("verbose sweep should print a report, got %q", out.String())
	}
}

func TestWorkerStopsOnCancel(t *testing.T) {
	worker := NewWorker(storeSet{}, &Config{SweepInterval: time.Second}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not stop after cancel")
	}
}
