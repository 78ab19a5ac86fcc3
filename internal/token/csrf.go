package token

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"
)

const (
	// CookieName is the fixed session cookie name.
	CookieName = "sentrix_session"
	// HeaderName is the fixed request header carrying the submitted token.
	HeaderName = "X-CSRF-Token"
)

// CSRF validation reason codes. All of them surface to clients as one
// uniform 403; the specific code is for logs only.
const (
	ReasonMissingSession = "missing_session"
	ReasonMalformedToken = "malformed_token"
	ReasonTokenNotFound  = "token_expired_or_not_found"
	ReasonTokenMismatch  = "token_mismatch"
)

// ValidationError is a typed CSRF rejection.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "csrf validation failed: " + e.Reason
}

// Guard validates submitted anti-forgery tokens against the session-bound
// stored token.
type Guard struct {
	store Store
}

// NewGuard creates a CSRF guard over the given token store.
func NewGuard(store Store) *Guard {
	return &Guard{store: store}
}

// SafeMethod reports whether the method is read-only and bypasses CSRF
// validation entirely.
func SafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Validate checks a submitted token for a state-changing request. Obviously
// malformed input is rejected before any storage lookup; the stored
// comparison is constant-time so response timing reveals nothing about
// where the first mismatching byte sits.
func (g *Guard) Validate(ctx context.Context, method, sessionID, submitted string) error {
	if SafeMethod(method) {
		return nil
	}
	if sessionID == "" {
		return &ValidationError{Reason: ReasonMissingSession}
	}
	if len(submitted) != TokenLength {
		return &ValidationError{Reason: ReasonMalformedToken}
	}

	stored, err := g.store.Lookup(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &ValidationError{Reason: ReasonTokenNotFound}
		}
		return err
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) != 1 {
		return &ValidationError{Reason: ReasonTokenMismatch}
	}
	return nil
}

// Issue stores a fresh token for the session, replacing any prior one.
func (g *Guard) Issue(ctx context.Context, sessionID string) (string, error) {
	return g.store.Issue(ctx, sessionID)
}

// SessionCookie builds the client-held session cookie: unreadable to
// script, same-site only, lifetime matching the token TTL.
func SessionCookie(sessionID string, ttl time.Duration, secure bool) *http.Cookie {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}
