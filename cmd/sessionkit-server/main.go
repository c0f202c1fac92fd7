// Command sessionkit-server serves the auth API: registration, login, refresh-token
// rotation and logout, backed by Redis and Firestore.
//
// Configuration comes from the environment and an optional .env file; see
// internal/appconfig for the keys. Without FIRESTORE_PROJECT_ID identities are kept in
// memory, which is only useful for local development.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrEthical07/sessionkit"
	"github.com/MrEthical07/sessionkit/audit"
	"github.com/MrEthical07/sessionkit/docstore"
	"github.com/MrEthical07/sessionkit/httpapi"
	"github.com/MrEthical07/sessionkit/internal/appconfig"
	"github.com/MrEthical07/sessionkit/metrics/export/prometheus"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run returns instead of exiting so deferred closes always execute.
func run() error {
	cfg, err := appconfig.Load()
	if err != nil {
		return err
	}
	log := appconfig.NewLogger(os.Stdout, cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		Username:     cfg.RedisUsername,
		Password:     cfg.RedisPassword,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	defer func() { _ = rdb.Close() }()

	var (
		identities sessionkit.IdentityStore
		sink       audit.Sink
	)
	if cfg.FirestoreProjectID != "" {
		fs := docstore.NewFirestore(docstore.Dialer(docstore.DialConfig{
			ProjectID:       cfg.FirestoreProjectID,
			CredentialsFile: cfg.CredentialsFile,
		}), cfg.FirestoreCallTimeout())
		defer func() {
			if err := fs.Close(); err != nil {
				log.Warn("firestore close failed", "error", err)
			}
		}()
		identities, sink = fs, fs.AuditSink()
		log.Info("identity store", "backend", "firestore", "project", cfg.FirestoreProjectID)
	} else {
		identities, sink = docstore.NewMemory(), audit.NewJSONWriterSink(os.Stderr)
		log.Warn("identity store", "backend", "memory")
	}

	engine, err := sessionkit.New().
		WithConfig(cfg.Engine()).
		WithRedis(rdb).
		WithIdentityStore(identities).
		WithAuditSink(sink).
		WithLogger(log).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	defer engine.Close()

	if _, err := engine.Ping(ctx); err != nil {
		log.Warn("redis not reachable at startup", "addr", cfg.RedisAddr(), "error", err)
	}

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := httpapi.New(engine, httpapi.Config{
		AppName:     cfg.AppName,
		AppTag:      cfg.AppTag,
		Production:  cfg.Production(),
		Debug:       cfg.AppDebug,
		CORSOrigins: cfg.Origins(),
		Metrics:     prometheus.Handler(prometheus.NewCollector(engine)),
		Logger:      log,
	})
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr(), "url", cfg.AppURL, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped", slog.Uint64("audit_dropped", engine.AuditDropped()))
	return nil
}
