// Package factory constructs and owns the application's dependencies:
// configuration, logging, the optional Redis client, and the backend
// variants chosen once at startup.
package factory

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/osama2-9/sentrix/internal/auth"
	"github.com/osama2-9/sentrix/internal/client"
	"github.com/osama2-9/sentrix/internal/clock"
	"github.com/osama2-9/sentrix/internal/config"
	"github.com/osama2-9/sentrix/internal/gate"
	"github.com/osama2-9/sentrix/internal/limiter"
	"github.com/osama2-9/sentrix/internal/outbound"
	"github.com/osama2-9/sentrix/internal/tls"
	"github.com/osama2-9/sentrix/internal/token"
	"github.com/osama2-9/sentrix/internal/util"
)

// Factory owns the lifecycle of every constructed dependency. Backends are
// picked exactly once here; nothing downstream branches on configuration.
type Factory struct {
	config     *config.Config
	tlsManager *tls.Manager

	redisClient *client.RedisClient
	tokenStore  token.Store

	gate     *gate.Gate
	guard    *token.Guard
	verifier *auth.Verifier
	outbound *outbound.Client

	closeOnce sync.Once
}

// NewFactory loads configuration and wires every dependency. With REDIS_URL
// set, both the rate limiter and token store use the shared backend; the
// two are never mixed. Without it, everything runs in process memory.
func NewFactory() (*Factory, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)

	f := &Factory{config: cfg}

	if cfg.Server.EnableTLS {
		f.tlsManager = tls.NewManager(&tls.Config{
			AutoCert:    cfg.Server.AutoCert,
			Domain:      cfg.Server.Domain,
			CertFile:    cfg.Server.CertFile,
			KeyFile:     cfg.Server.KeyFile,
			AutoCertDir: cfg.Server.AutoCertDir,
			Email:       cfg.Server.Email,
		})
	}

	var backend limiter.Backend
	if cfg.HasRedis() {
		rc, err := client.NewRedisClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize shared backend: %w", err)
		}
		f.redisClient = rc
		backend = limiter.NewShared(rc)
		f.tokenStore = token.NewSharedStore(rc, cfg.CSRF.TokenTTL)
		util.Info("Shared backend selected",
			util.String("redis_url", cfg.Redis.URL))
	} else {
		backend = limiter.NewLocal(cfg.RateLimit.CacheSize, clock.System())
		f.tokenStore = token.NewLocalStore(cfg.CSRF.TokenTTL, clock.System())
		util.Info("Local backend selected",
			util.Int("cache_size", cfg.RateLimit.CacheSize))
	}

	f.gate = gate.New(
		backend,
		gate.IPKeyFunc(cfg.Server.TrustProxy),
		cfg.RateLimit.Limit,
		cfg.RateLimit.Window,
		cfg.RateLimit.MaxPayloadBytes,
	)
	f.guard = token.NewGuard(f.tokenStore)

	if cfg.Auth.Enabled {
		f.verifier = auth.NewVerifier(cfg.Auth.JWTSecret)
	}

	f.outbound = outbound.New(
		cfg.Outbound.AllowedHosts,
		cfg.Outbound.RetryMax,
		cfg.Outbound.PerHostRPS,
		cfg.Outbound.Burst,
	)

	util.Info("Factory initialized successfully",
		util.String("environment", cfg.Environment),
		util.Bool("tls_enabled", cfg.Server.EnableTLS),
		util.Bool("shared_backend", cfg.HasRedis()),
		util.Bool("auth_enabled", cfg.Auth.Enabled),
	)

	return f, nil
}

// HealthCheck verifies the shared backend when one is configured; a purely
// local deployment has nothing external to probe.
func (f *Factory) HealthCheck(r *http.Request) error {
	if f.redisClient == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	return f.redisClient.HealthCheck(ctx)
}

// Close releases every owned resource exactly once.
func (f *Factory) Close() error {
	f.closeOnce.Do(func() {
		util.Info("Shutting down factory...")

		if f.tokenStore != nil {
			if err := f.tokenStore.Close(); err != nil {
				util.Error("Failed to close token store", util.ErrorField(err))
			}
		}
		if f.redisClient != nil {
			if err := f.redisClient.Close(); err != nil {
				util.Error("Failed to close Redis client", util.ErrorField(err))
			}
		}

		util.Sync()
		util.Info("Factory shutdown completed")
	})
	return nil
}

func (f *Factory) Config() *config.Config     { return f.config }
func (f *Factory) TLSManager() *tls.Manager   { return f.tlsManager }
func (f *Factory) Gate() *gate.Gate           { return f.gate }
func (f *Factory) Guard() *token.Guard        { return f.guard }
func (f *Factory) Verifier() *auth.Verifier   { return f.verifier }
func (f *Factory) Outbound() *outbound.Client { return f.outbound }
func (f *Factory) UsingSharedBackend() bool   { return f.redisClient != nil }
