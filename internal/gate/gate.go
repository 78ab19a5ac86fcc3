// Package gate decides, per incoming request, whether to admit or reject:
// client identity resolution, declared payload size, then the rate-limit
// check, short-circuiting on the first rejection.
package gate

import (
	"fmt"
	"net/http"
	"time"

	"github.com/osama2-9/sentrix/internal/limiter"
)

// Reason is a machine-readable rejection code.
type Reason string

const (
	ReasonIdentityUnresolved Reason = "identity_unresolved"
	ReasonPayloadTooLarge    Reason = "payload_too_large"
	ReasonRateLimited        Reason = "rate_limit_exceeded"
)

// Rejection is a typed admission failure carrying everything the HTTP
// boundary needs to answer the client.
type Rejection struct {
	Reason     Reason
	Status     int
	RetryAfter time.Duration
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("request rejected: %s", r.Reason)
}

// Result is attached to admitted requests. It deliberately carries the
// configured limit and window for observability headers but not the live
// count, so adversaries probing the limit learn nothing about their usage.
type Result struct {
	ClientKey string
	Limit     int
	Window    time.Duration
}

// Gate evaluates admission for incoming requests against one rate-limit
// backend chosen at construction. A rejection is final for that attempt;
// the gate never retries.
type Gate struct {
	backend    limiter.Backend
	keyFn      KeyFunc
	limit      int
	window     time.Duration
	maxPayload int64
}

// New constructs a gate. keyFn resolves the client identity the limiter is
// keyed by.
func New(backend limiter.Backend, keyFn KeyFunc, limit int, window time.Duration, maxPayload int64) *Gate {
	return &Gate{
		backend:    backend,
		keyFn:      keyFn,
		limit:      limit,
		window:     window,
		maxPayload: maxPayload,
	}
}

// Evaluate runs the admission pipeline for one request. It returns a
// *Rejection for policy denials, a wrapped limiter.ErrBackendUnavailable
// when the shared store is unreachable (fail closed), and a Result on pass.
//
// The payload check runs before the rate-limit mutation, so an oversized
// request does not consume a slot. If the caller disconnects after the
// count was applied, the slot stays consumed; cancelling requests must not
// be a way to dodge the quota.
func (g *Gate) Evaluate(r *http.Request) (Result, error) {
	clientKey, err := g.keyFn(r)
	if err != nil || clientKey == "" {
		// Rate limiting cannot be keyed without an identity, so this is
		// itself a rate-limit class failure.
		return Result{}, &Rejection{
			Reason: ReasonIdentityUnresolved,
			Status: http.StatusTooManyRequests,
		}
	}

	if r.ContentLength > g.maxPayload {
		return Result{}, &Rejection{
			Reason:     ReasonPayloadTooLarge,
			Status:     http.StatusRequestEntityTooLarge,
			RetryAfter: retryAfter(g.window),
		}
	}

	dec, err := g.backend.Check(r.Context(), clientKey, g.limit, g.window)
	if err != nil {
		return Result{}, fmt.Errorf("admission check for %s: %w", clientKey, err)
	}
	if !dec.Allowed {
		return Result{}, &Rejection{
			Reason:     ReasonRateLimited,
			Status:     http.StatusTooManyRequests,
			RetryAfter: dec.RetryAfter(),
		}
	}

	return Result{
		ClientKey: clientKey,
		Limit:     g.limit,
		Window:    g.window,
	}, nil
}

func retryAfter(window time.Duration) time.Duration {
	return limiter.Decision{Window: window}.RetryAfter()
}
