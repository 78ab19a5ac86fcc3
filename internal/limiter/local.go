package limiter

import (
	"context"
	"sync"
	"time"

	"github.com/osama2-9/sentrix/internal/cache"
	"github.com/osama2-9/sentrix/internal/clock"
)

// clientWindow holds one client's attempts inside the trailing window.
// Owned exclusively by the cache entry for that key and mutated only under
// the limiter's lock.
type clientWindow struct {
	attempts  []time.Time
	firstSeen time.Time
}

// Local is a true sliding-window backend. State lives in a fixed-capacity
// LRU cache, so memory stays bounded under sustained unique-client load:
// the least-recently-checked client is evicted when a new one would exceed
// capacity.
type Local struct {
	mu      sync.Mutex
	windows *cache.LRU[string, *clientWindow]
	clk     clock.Clock
}

// NewLocal creates a local backend tracking at most capacity distinct
// client keys.
func NewLocal(capacity int, clk clock.Clock) *Local {
	if clk == nil {
		clk = clock.System()
	}
	return &Local{
		windows: cache.NewLRU[string, *clientWindow](capacity, nil),
		clk:     clk,
	}
}

// Check prunes timestamps older than the window, records the current
// attempt, and admits while the count stays within limit. The whole
// prune-append-store sequence runs under one lock so concurrent checks for
// the same key never interleave. It never returns an error.
func (l *Local) Check(_ context.Context, clientKey string, limit int, window time.Duration) (Decision, error) {
	now := l.clk.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows.Get(clientKey)
	if !ok {
		w = &clientWindow{firstSeen: now}
	}

	kept := w.attempts[:0]
	for _, t := range w.attempts {
		if now.Sub(t) < window {
			kept = append(kept, t)
		}
	}
	w.attempts = append(kept, now)
	l.windows.Set(clientKey, w)

	count := len(w.attempts)
	return Decision{
		Allowed:      count <= limit,
		CurrentCount: count,
		Limit:        limit,
		Window:       window,
	}, nil
}

// Reset forgets a client's window. Used by tests and operational tooling.
func (l *Local) Reset(clientKey string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.windows.Delete(clientKey)
}

// TrackedClients reports how many distinct clients currently hold state.
func (l *Local) TrackedClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.windows.Len()
}
