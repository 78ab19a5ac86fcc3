// Package outbound provides the HTTP client used for calls to external
// services: retry with backoff, a hard domain allowlist, and a per-host
// request throttle.
package outbound

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// ErrHostNotAllowed reports a destination outside the configured allowlist.
var ErrHostNotAllowed = errors.New("outbound host not allowed")

// Client is a retrying, allowlisted, throttled HTTP client.
type Client struct {
	http  *retryablehttp.Client
	allow map[string]struct{}

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// New builds an outbound client restricted to the given hostnames. An empty
// allowlist permits no destinations.
func New(allowedHosts []string, retryMax int, perHostRPS float64, burst int) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retryMax
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = nil // request logging happens at the call site

	allow := make(map[string]struct{}, len(allowedHosts))
	for _, h := range allowedHosts {
		allow[h] = struct{}{}
	}
	if burst < 1 {
		burst = 1
	}

	return &Client{
		http:     rc,
		allow:    allow,
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(perHostRPS),
		burst:    burst,
	}
}

// Do executes req after checking the allowlist and waiting for the
// destination host's rate budget.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	host := req.URL.Hostname()
	if _, ok := c.allow[host]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrHostNotAllowed, host)
	}

	if err := c.limiterFor(host).Wait(ctx); err != nil {
		return nil, fmt.Errorf("outbound throttle wait: %w", err)
	}

	rreq, err := retryablehttp.FromRequest(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to build outbound request: %w", err)
	}
	return c.http.Do(rreq)
}

// Get issues a GET to the given URL through the allowlist and throttle.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid outbound url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

func (c *Client) limiterFor(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if lim, ok := c.limiters[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(c.rps, c.burst)
	c.limiters[host] = lim
	return lim
}
