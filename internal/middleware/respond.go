// Package middleware adapts the admission gate, CSRF guard, and bearer
// verification to chi HTTP middleware, and owns the single boundary that
// translates typed failures into protocol responses.
package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/osama2-9/sentrix/internal/client"
	"github.com/osama2-9/sentrix/internal/gate"
	"github.com/osama2-9/sentrix/internal/limiter"
	"github.com/osama2-9/sentrix/internal/token"
)

type errorBody struct {
	Error string `json:"error"`
}

// writeError is the single boundary translator: typed rejections map to
// their status and machine-readable reason; everything else is logged in
// full and answered with a generic failure so internals never leak.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var rej *gate.Rejection
	if errors.As(err, &rej) {
		if rej.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(rej.RetryAfter.Seconds())))
		}
		writeJSON(w, rej.Status, errorBody{Error: string(rej.Reason)})
		return
	}

	var csrfErr *token.ValidationError
	if errors.As(err, &csrfErr) {
		// The specific reason stays in the logs; clients see one uniform
		// CSRF failure regardless of cause.
		logger.Warn("CSRF validation failed", zap.String("reason", csrfErr.Reason))
		writeJSON(w, http.StatusForbidden, errorBody{Error: "csrf_rejected"})
		return
	}

	if errors.Is(err, limiter.ErrBackendUnavailable) || errors.Is(err, client.ErrUnavailable) {
		logger.Error("shared backend unavailable", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "backend_unavailable"})
		return
	}

	logger.Error("unexpected failure", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal_error"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
