package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/osama2-9/sentrix/internal/auth"
)

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(verifier *auth.Verifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := auth.FromAuthorizationHeader(r.Header.Get("Authorization"))
			if raw == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing_bearer_token"})
				return
			}
			if _, err := verifier.Verify(raw); err != nil {
				logger.Warn("bearer token rejected", zap.Error(err))
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid_bearer_token"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
