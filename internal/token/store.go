// Package token manages session-bound anti-forgery tokens: issuance,
// bounded-lifetime storage, and timing-safe validation.
package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

const (
	// TokenLength is the hex-encoded length of a 32-byte random token.
	TokenLength = 64

	// DefaultTTL bounds the life of a token and its session cookie.
	DefaultTTL = time.Hour
)

// ErrNotFound reports that no live token exists for a session, either
// because none was issued or because it expired.
var ErrNotFound = errors.New("token not found")

// Store holds at most one live token per session. Issue overwrites any
// prior token for the session; there is no reuse window for the old value.
type Store interface {
	// Issue generates, stores, and returns a fresh token for the session.
	Issue(ctx context.Context, sessionID string) (string, error)
	// Lookup returns the live token for the session or ErrNotFound.
	Lookup(ctx context.Context, sessionID string) (string, error)
	// Close releases any background resources the store owns.
	Close() error
}

// NewSessionID generates an opaque session identifier: 32 random bytes,
// hex-encoded.
func NewSessionID() (string, error) {
	return randomHex()
}

func randomHex() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random value: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
