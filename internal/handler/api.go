package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/osama2-9/sentrix/internal/token"
	"github.com/osama2-9/sentrix/internal/util"
	"github.com/osama2-9/sentrix/internal/validate"
)

// APIHandler serves the gate's own endpoints: health, token issuance, and
// a demo echo route exercising the full validation pipeline.
type APIHandler struct {
	guard         *token.Guard
	tokenTTL      time.Duration
	secureCookies bool
	sharedBackend bool
	healthCheck   func(r *http.Request) error
	logger        *zap.Logger
}

type healthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}

func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	backend := "local"
	if h.sharedBackend {
		backend = "shared"
	}

	if h.healthCheck != nil {
		if err := h.healthCheck(r); err != nil {
			h.logger.Error("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Backend: backend})
			return
		}
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Backend: backend})
}

type tokenResponse struct {
	CSRFToken string `json:"csrf_token"`
	ExpiresIn int    `json:"expires_in"`
}

// IssueToken establishes a session (new cookie if the caller has none) and
// issues a fresh anti-forgery token bound to it, replacing any prior one.
func (h *APIHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	sessionID := ""
	if c, err := r.Cookie(token.CookieName); err == nil && len(c.Value) == token.TokenLength {
		sessionID = c.Value
	}
	if sessionID == "" {
		var err error
		sessionID, err = token.NewSessionID()
		if err != nil {
			h.logger.Error("failed to create session id", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
			return
		}
		http.SetCookie(w, token.SessionCookie(sessionID, h.tokenTTL, h.secureCookies))
	}

	tok, err := h.guard.Issue(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to issue CSRF token", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "backend_unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		CSRFToken: tok,
		ExpiresIn: int(h.tokenTTL.Seconds()),
	})
}

type echoRequest struct {
	Message string `json:"message" validate:"required,max=1024"`
}

type echoResponse struct {
	Message string `json:"message"`
}

// Echo is the demo state-changing endpoint behind the full pipeline:
// admission, CSRF, optional bearer auth, then schema validation and
// sanitization here.
func (h *APIHandler) Echo(w http.ResponseWriter, r *http.Request) {
	var req echoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed_json"})
		return
	}
	if err := validate.Struct(req); err != nil {
		if errors.Is(err, validate.ErrInvalidPayload) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "invalid_payload"})
			return
		}
		h.logger.Error("validation failed unexpectedly", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		return
	}

	writeJSON(w, http.StatusOK, echoResponse{Message: util.SanitizeInput(req.Message)})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
