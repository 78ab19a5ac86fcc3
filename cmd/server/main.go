package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/osama2-9/sentrix/internal/factory"
	"github.com/osama2-9/sentrix/internal/handler"
	"github.com/osama2-9/sentrix/internal/util"
)

func main() {
	f, err := factory.NewFactory()
	if err != nil {
		util.Fatal("Failed to initialize factory", util.ErrorField(err))
	}
	defer f.Close()

	cfg := f.Config()
	router := handler.NewRouter(handler.RouterDeps{
		Gate:           f.Gate(),
		Guard:          f.Guard(),
		Verifier:       f.Verifier(),
		TrustProxy:     cfg.Server.TrustProxy,
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		TLSEnabled:     cfg.Server.EnableTLS,
		SecureCookies:  cfg.Server.EnableTLS || cfg.IsProduction(),
		TokenTTL:       cfg.CSRF.TokenTTL,
		SharedBackend:  f.UsingSharedBackend(),
		HealthCheck:    f.HealthCheck,
		Logger:         util.Get(),
	})

	addr := cfg.GetServerAddress()
	if cfg.Server.EnableTLS {
		addr = fmt.Sprintf(":%d", cfg.Server.TLSPort)
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	if cfg.Server.EnableTLS {
		tlsManager := f.TLSManager()
		server.TLSConfig = tlsManager.GetTLSConfig()

		// With AutoCert in production, a plain-HTTP listener on port 80
		// answers ACME challenges and redirects everything else.
		if cfg.IsProduction() && cfg.Server.AutoCert {
			acme := tlsManager.AutocertManager()
			if acme == nil {
				util.Fatal("AutoCert manager is not available in production")
			}
			challengeServer := &http.Server{
				Addr:    ":80",
				Handler: acme.HTTPHandler(nil),
			}
			group.Go(func() error {
				util.Info("Starting ACME challenge server", util.String("address", ":80"))
				return ignoreClosed(challengeServer.ListenAndServe())
			})
			group.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				return challengeServer.Shutdown(shutdownCtx)
			})
		}

		util.Info("Starting HTTPS server",
			util.String("environment", cfg.Environment),
			util.String("address", addr),
			util.Bool("auto_cert", cfg.Server.AutoCert),
		)
	} else {
		util.Warn("Starting HTTP server - TLS is disabled",
			util.String("environment", cfg.Environment),
			util.String("address", addr),
		)
	}

	group.Go(func() error {
		if cfg.Server.EnableTLS {
			// Certificates come from GetCertificate on the TLS config, so
			// no file paths are passed here.
			return ignoreClosed(server.ListenAndServeTLS("", ""))
		}
		return ignoreClosed(server.ListenAndServe())
	})

	group.Go(func() error {
		<-ctx.Done()
		util.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		util.Error("Server exited with error", util.ErrorField(err))
		f.Close()
		os.Exit(1)
	}
	util.Info("Server shutdown completed")
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
