package token

import (
	"context"
	"sync"
	"time"

	"github.com/osama2-9/sentrix/internal/clock"
)

const sweepInterval = time.Minute

type localEntry struct {
	token     string
	expiresAt time.Time
}

// LocalStore keeps tokens in process memory. Expired entries are dropped
// lazily on read and by a periodic sweep, so memory stays bounded even for
// sessions that never come back. The sweep goroutine is owned by the store
// and stops on Close.
type LocalStore struct {
	mu      sync.Mutex
	entries map[string]localEntry
	ttl     time.Duration
	clk     clock.Clock

	stop      chan struct{}
	closeOnce sync.Once
}

// NewLocalStore creates a local token store with the given TTL and starts
// its cleanup sweep.
func NewLocalStore(ttl time.Duration, clk clock.Clock) *LocalStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clk == nil {
		clk = clock.System()
	}
	s := &LocalStore{
		entries: make(map[string]localEntry),
		ttl:     ttl,
		clk:     clk,
		stop:    make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

func (s *LocalStore) Issue(_ context.Context, sessionID string) (string, error) {
	tok, err := randomHex()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.entries[sessionID] = localEntry{
		token:     tok,
		expiresAt: s.clk.Now().Add(s.ttl),
	}
	s.mu.Unlock()

	return tok, nil
}

func (s *LocalStore) Lookup(_ context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if !ok {
		return "", ErrNotFound
	}
	if !s.clk.Now().Before(e.expiresAt) {
		delete(s.entries, sessionID)
		return "", ErrNotFound
	}
	return e.token, nil
}

// Close stops the sweep goroutine. Safe to call more than once.
func (s *LocalStore) Close() error {
	s.closeOnce.Do(func() { close(s.stop) })
	return nil
}

// Len reports the number of stored entries, expired or not.
func (s *LocalStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *LocalStore) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *LocalStore) sweep() {
	now := s.clk.Now()
	s.mu.Lock()
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()
}
