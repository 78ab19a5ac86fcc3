package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/osama2-9/sentrix/internal/token"
)

// Csrf validates the anti-forgery token on state-changing requests. Safe
// methods pass straight through inside the guard.
func Csrf(guard *token.Guard, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if c, err := r.Cookie(token.CookieName); err == nil {
				sessionID = c.Value
			}

			submitted := r.Header.Get(token.HeaderName)
			if err := guard.Validate(r.Context(), r.Method, sessionID, submitted); err != nil {
				writeError(w, logger, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
