package gate

import (
	"errors"
	"net"
	"net/http"
	"strings"
)

// ErrNoClientKey reports that no client identity could be resolved from the
// request.
var ErrNoClientKey = errors.New("client key not determinable")

// KeyFunc resolves the identity the rate limiter is keyed by.
type KeyFunc func(r *http.Request) (string, error)

// IPKeyFunc returns a KeyFunc extracting the client IP. With trustProxy the
// first hop of X-Forwarded-For (then X-Real-IP) wins; otherwise only the
// transport-level peer address is trusted, since proxy headers are
// client-forgeable.
func IPKeyFunc(trustProxy bool) KeyFunc {
	return func(r *http.Request) (string, error) {
		if trustProxy {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
					return ip, nil
				}
			}
			if rip := strings.TrimSpace(r.Header.Get("X-Real-IP")); rip != "" {
				return rip, nil
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host, nil
		}
		// RemoteAddr may already be a bare IP (e.g. behind RealIP middleware).
		if ip := net.ParseIP(strings.TrimSpace(r.RemoteAddr)); ip != nil {
			return ip.String(), nil
		}
		return "", ErrNoClientKey
	}
}
