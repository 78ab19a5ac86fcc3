package gate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/osama2-9/sentrix/internal/limiter"
)

// stubBackend records check calls and returns a scripted decision.
type stubBackend struct {
	calls   int
	allowed bool
	err     error
}

func (s *stubBackend) Check(_ context.Context, _ string, limit int, window time.Duration) (limiter.Decision, error) {
	s.calls++
	if s.err != nil {
		return limiter.Decision{}, s.err
	}
	return limiter.Decision{
		Allowed: s.allowed,
		Limit:   limit,
		Window:  window,
	}, nil
}

func newRequest(remoteAddr string, contentLength int64) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/echo", nil)
	r.RemoteAddr = remoteAddr
	r.ContentLength = contentLength
	return r
}

func TestGate_Pass(t *testing.T) {
	backend := &stubBackend{allowed: true}
	g := New(backend, IPKeyFunc(false), 10, time.Minute, 1024)

	res, err := g.Evaluate(newRequest("10.0.0.1:1234", 100))
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if res.ClientKey != "10.0.0.1" {
		t.Errorf("expected client key 10.0.0.1, got %q", res.ClientKey)
	}
	if res.Limit != 10 || res.Window != time.Minute {
		t.Errorf("expected limit/window metadata on pass, got %+v", res)
	}
	if backend.calls != 1 {
		t.Errorf("expected exactly one backend call, got %d", backend.calls)
	}
}

func TestGate_IdentityUnresolved(t *testing.T) {
	backend := &stubBackend{allowed: true}
	g := New(backend, IPKeyFunc(false), 10, time.Minute, 1024)

	_, err := g.Evaluate(newRequest("not-an-address", 0))
	var rej *Rejection
	if !errors.As(err, &rej) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if rej.Reason != ReasonIdentityUnresolved {
		t.Errorf("expected identity_unresolved, got %s", rej.Reason)
	}
	if rej.Status != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rej.Status)
	}
	if backend.calls != 0 {
		t.Errorf("unresolved identity must not reach the backend, got %d calls", backend.calls)
	}
}

func TestGate_PayloadTooLargePrecedesRateLimit(t *testing.T) {
	backend := &stubBackend{allowed: true}
	g := New(backend, IPKeyFunc(false), 10, time.Minute, 1024)

	_, err := g.Evaluate(newRequest("10.0.0.1:1234", 2048))
	var rej *Rejection
	if !errors.As(err, &rej) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if rej.Reason != ReasonPayloadTooLarge {
		t.Errorf("expected payload_too_large, got %s", rej.Reason)
	}
	if rej.Status != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rej.Status)
	}
	if rej.RetryAfter <= 0 {
		t.Error("expected a Retry-After hint")
	}
	// The oversized rejection must not consume a rate-limit slot.
	if backend.calls != 0 {
		t.Errorf("size check must run before the count mutation, got %d backend calls", backend.calls)
	}
}

func TestGate_RateLimited(t *testing.T) {
	backend := &stubBackend{allowed: false}
	g := New(backend, IPKeyFunc(false), 10, 90*time.Second, 1024)

	_, err := g.Evaluate(newRequest("10.0.0.1:1234", 100))
	var rej *Rejection
	if !errors.As(err, &rej) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if rej.Reason != ReasonRateLimited {
		t.Errorf("expected rate_limit_exceeded, got %s", rej.Reason)
	}
	if rej.Status != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rej.Status)
	}
	if rej.RetryAfter != 90*time.Second {
		t.Errorf("expected Retry-After 90s, got %s", rej.RetryAfter)
	}
}

func TestGate_BackendUnavailableFailsClosed(t *testing.T) {
	backend := &stubBackend{err: limiter.ErrBackendUnavailable}
	g := New(backend, IPKeyFunc(false), 10, time.Minute, 1024)

	_, err := g.Evaluate(newRequest("10.0.0.1:1234", 100))
	if err == nil {
		t.Fatal("expected hard failure when backend unavailable")
	}
	if !errors.Is(err, limiter.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
	var rej *Rejection
	if errors.As(err, &rej) {
		t.Fatal("backend unavailability is not a policy rejection")
	}
}

func TestGate_UnknownContentLengthPasses(t *testing.T) {
	backend := &stubBackend{allowed: true}
	g := New(backend, IPKeyFunc(false), 10, time.Minute, 1024)

	// ContentLength -1 means "not declared"; the size gate cannot apply.
	if _, err := g.Evaluate(newRequest("10.0.0.1:1234", -1)); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
}
