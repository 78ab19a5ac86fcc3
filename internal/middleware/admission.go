package middleware

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/osama2-9/sentrix/internal/gate"
)

type contextKey string

const clientKeyContextKey contextKey = "sentrix.client_key"

// ClientKey returns the admitted request's resolved client key, or "".
func ClientKey(ctx context.Context) string {
	key, _ := ctx.Value(clientKeyContextKey).(string)
	return key
}

// Admission gates every request through the admission pipeline. Admitted
// requests carry informational limit headers; the live count is withheld.
func Admission(g *gate.Gate, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := g.Evaluate(r)
			if err != nil {
				logger.Warn("request not admitted",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err))
				writeError(w, logger, err)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Window", strconv.Itoa(int(res.Window.Seconds())))

			ctx := context.WithValue(r.Context(), clientKeyContextKey, res.ClientKey)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
