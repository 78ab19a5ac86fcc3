package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/osama2-9/sentrix/internal/client"
)

const csrfTokenPrefix = "csrf_token:"

const sharedCallTimeout = 5 * time.Second

// SharedStore keeps tokens in Redis, relying on the store's native expiry.
// Any gate replica can validate a token issued by another.
type SharedStore struct {
	client *client.RedisClient
	ttl    time.Duration
}

// NewSharedStore creates a Redis-backed token store on an already connected
// client. The client's lifecycle stays with its owner.
func NewSharedStore(c *client.RedisClient, ttl time.Duration) *SharedStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SharedStore{client: c, ttl: ttl}
}

func (s *SharedStore) Issue(ctx context.Context, sessionID string) (string, error) {
	tok, err := randomHex()
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, sharedCallTimeout)
	defer cancel()

	if err := s.client.Set(ctx, csrfTokenPrefix+sessionID, tok, s.ttl); err != nil {
		return "", fmt.Errorf("%w: %v", client.ErrUnavailable, err)
	}
	return tok, nil
}

func (s *SharedStore) Lookup(ctx context.Context, sessionID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, sharedCallTimeout)
	defer cancel()

	tok, err := s.client.Get(ctx, csrfTokenPrefix+sessionID)
	if err != nil {
		if errors.Is(err, client.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", client.ErrUnavailable, err)
	}
	return tok, nil
}

// Close is a no-op; the Redis client is owned by the factory.
func (s *SharedStore) Close() error { return nil }
