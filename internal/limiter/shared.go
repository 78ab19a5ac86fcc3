package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/osama2-9/sentrix/internal/client"
)

const rateLimitPrefix = "rate_limit:"

// defaultCallTimeout bounds every trip to the shared store. Calls are never
// retried: a retried increment would double-count the request.
const defaultCallTimeout = 5 * time.Second

// Shared counts admissions in Redis so multiple gate instances enforce one
// budget per client. Each check atomically increments the client's counter
// and refreshes its expiry to the window length, giving rolling-reset
// fixed-window semantics (see the package comment for how this differs
// from Local).
type Shared struct {
	client  *client.RedisClient
	timeout time.Duration
}

// NewShared creates a Redis-backed backend on an already connected client.
// The client's lifecycle stays with its owner.
func NewShared(c *client.RedisClient) *Shared {
	return &Shared{client: c, timeout: defaultCallTimeout}
}

// Check increments the client's counter and admits while the post-increment
// value stays within limit. An unreachable store surfaces as
// ErrBackendUnavailable; the caller decides fail-open versus fail-closed.
func (s *Shared) Check(ctx context.Context, clientKey string, limit int, window time.Duration) (Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	count, err := s.client.IncrWithExpire(ctx, rateLimitPrefix+clientKey, window)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	return Decision{
		Allowed:      count <= int64(limit),
		CurrentCount: int(count),
		Limit:        limit,
		Window:       window,
	}, nil
}

// Reset clears a client's counter. Used by tests and operational tooling.
func (s *Shared) Reset(ctx context.Context, clientKey string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Del(ctx, rateLimitPrefix+clientKey)
}
