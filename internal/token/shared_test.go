package token

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/osama2-9/sentrix/internal/client"
	"github.com/osama2-9/sentrix/internal/config"
)

// newTestRedis connects to a local Redis or skips the test.
func newTestRedis(t *testing.T) *client.RedisClient {
	t.Helper()

	cfg := &config.Config{
		Redis: config.RedisConfig{
			URL:      "redis://localhost:6379",
			PoolSize: 10,
		},
	}
	rc, err := client.NewRedisClient(cfg)
	if err != nil {
		t.Skipf("Skipping integration test: Redis not available (%v)", err)
	}
	t.Cleanup(func() { _ = rc.Close() })
	return rc
}

func TestSharedStore_Integration(t *testing.T) {
	rc := newTestRedis(t)
	store := NewSharedStore(rc, time.Minute)
	ctx := context.Background()

	session := fmt.Sprintf("sess_it_%d", time.Now().UnixNano())
	tok, err := store.Issue(ctx, session)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if len(tok) != TokenLength {
		t.Fatalf("expected %d-char token, got %d", TokenLength, len(tok))
	}

	got, err := store.Lookup(ctx, session)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if got != tok {
		t.Fatal("lookup returned a different token than issued")
	}

	// Any replica holding the same client sees the token.
	other := NewSharedStore(rc, time.Minute)
	if got, err := other.Lookup(ctx, session); err != nil || got != tok {
		t.Fatalf("second store instance: got %q err %v", got, err)
	}

	// Reissue replaces the stored value; the old token is dead.
	tok2, err := store.Issue(ctx, session)
	if err != nil {
		t.Fatalf("reissue failed: %v", err)
	}
	if tok2 == tok {
		t.Fatal("reissue returned the previous token")
	}
	if got, _ := store.Lookup(ctx, session); got != tok2 {
		t.Fatal("lookup should return the latest issued token")
	}
}

func TestSharedStore_ExpiryIsRedisNative(t *testing.T) {
	rc := newTestRedis(t)
	store := NewSharedStore(rc, time.Second)
	ctx := context.Background()

	session := fmt.Sprintf("sess_ttl_%d", time.Now().UnixNano())
	if _, err := store.Issue(ctx, session); err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	ttl, err := rc.TTL(ctx, csrfTokenPrefix+session)
	if err != nil {
		t.Fatalf("ttl failed: %v", err)
	}
	if ttl <= 0 || ttl > time.Second {
		t.Fatalf("expected TTL in (0, 1s], got %s", ttl)
	}
}

func TestSharedStore_MissingSession(t *testing.T) {
	rc := newTestRedis(t)
	store := NewSharedStore(rc, time.Minute)

	_, err := store.Lookup(context.Background(), "sess_never_issued")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSharedStore_UnavailableWrapped(t *testing.T) {
	rc := newTestRedis(t)
	store := NewSharedStore(rc, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Issue(ctx, "any"); !errors.Is(err, client.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := store.Lookup(ctx, "any"); !errors.Is(err, client.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
