package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/osama2-9/sentrix/internal/auth"
	"github.com/osama2-9/sentrix/internal/gate"
	mw "github.com/osama2-9/sentrix/internal/middleware"
	"github.com/osama2-9/sentrix/internal/token"
)

// RouterDeps are the explicitly constructed collaborators the router wires
// into its middleware chain.
type RouterDeps struct {
	Gate     *gate.Gate
	Guard    *token.Guard
	Verifier *auth.Verifier // nil disables bearer auth

	// TrustProxy gates every interpretation of proxy-supplied headers.
	// When false, RemoteAddr is the only identity source and forwarded
	// headers are never consulted, let alone rewritten into RemoteAddr.
	TrustProxy bool

	// AllowedOrigins is the CORS origin allowlist; empty disables CORS
	// entirely, leaving the API same-origin only.
	AllowedOrigins []string

	TLSEnabled    bool
	SecureCookies bool
	TokenTTL      time.Duration
	SharedBackend bool
	HealthCheck   func(r *http.Request) error // nil when running purely local
	Logger        *zap.Logger
}

// NewRouter configures the chi router: health outside the admission chain,
// then admission, then per-route bearer verification and CSRF.
func NewRouter(deps RouterDeps) chi.Router {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	if deps.TrustProxy {
		router.Use(chimiddleware.RealIP)
	}
	router.Use(mw.RequestLogger(deps.Logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(60 * time.Second))

	if len(deps.AllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", token.HeaderName},
			ExposedHeaders:   []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Window"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Use(mw.SecurityHeaders(deps.TLSEnabled))

	h := &APIHandler{
		guard:         deps.Guard,
		tokenTTL:      deps.TokenTTL,
		secureCookies: deps.SecureCookies,
		sharedBackend: deps.SharedBackend,
		healthCheck:   deps.HealthCheck,
		logger:        deps.Logger,
	}

	// Monitoring probes must see real health even from a rate-limited
	// host, so /health never consumes admission budget.
	router.Get("/health", h.Health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Admission(deps.Gate, deps.Logger))

		r.Get("/csrf-token", h.IssueToken)

		r.Group(func(r chi.Router) {
			if deps.Verifier != nil {
				r.Use(mw.RequireAuth(deps.Verifier, deps.Logger))
			}
			r.Use(mw.Csrf(deps.Guard, deps.Logger))
			r.Post("/echo", h.Echo)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte(`{"error":"method not allowed"}`))
	})

	return router
}
