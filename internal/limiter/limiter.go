// Package limiter implements per-client admission counting behind a single
// Backend contract with two variants: an in-process sliding window bounded
// by an LRU cache, and a Redis-backed counter with rolling-reset expiry.
//
// The two variants intentionally differ under sustained load. The local
// window ages out individual requests, so the count always reflects exactly
// the trailing window. The shared counter refreshes its expiry on every
// increment, so a steadily active client keeps extending the same window
// until it pauses for a full window length. Callers pick one backend at
// construction and live with its semantics.
package limiter

import (
	"context"
	"errors"
	"math"
	"time"
)

// ErrBackendUnavailable reports that the shared counter store could not be
// reached. Over-limit is not an error; this is, and the gate fails closed
// on it.
var ErrBackendUnavailable = errors.New("rate limit backend unavailable")

// Decision is the immutable outcome of one admission check.
type Decision struct {
	Allowed      bool
	CurrentCount int
	Limit        int
	Window       time.Duration
}

// RetryAfter returns a conservative wait for denied clients: the full
// window length, rounded up to whole seconds.
func (d Decision) RetryAfter() time.Duration {
	secs := math.Ceil(d.Window.Seconds())
	if secs < 1 {
		secs = 1
	}
	return time.Duration(secs) * time.Second
}

// Backend is the decision contract shared by both variants. Check never
// fails for ordinary over-limit conditions; it returns allowed=false.
type Backend interface {
	Check(ctx context.Context, clientKey string, limit int, window time.Duration) (Decision, error)
}
