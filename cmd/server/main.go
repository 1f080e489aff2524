// Command flowcached runs the cache engine behind the HTTP adapter: a single
// in-process, bounded, TTL-aware LRU cache exposed over net/http,
// instrumented for Prometheus, and configured from the environment.
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

	"go.uber.org/zap"

	"github.com/flowcache/flowcache/internal/cacheengine"
	"github.com/flowcache/flowcache/internal/config"
	"github.com/flowcache/flowcache/internal/httpapi"
	"github.com/flowcache/flowcache/internal/telemetry"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "flowcached: config:", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg.Dev)
	if err != nil {
		fmt.Fprintln(os.Stderr, "flowcached: logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	telemetry.SetBuildInfo(version, gitSHA)

	engine := cacheengine.New(cacheengine.Config{
		MaxSize:        cfg.MaxSize,
		DefaultTTL:     cfg.DefaultTTL,
		SweepInterval:  cfg.SweepInterval,
		SweepBatchSize: cfg.SweepBatchSize,
	}, log.Named("cacheengine"))
	defer engine.Shutdown()

	telemetry.RegisterEngineMetrics(engine)

	srv := httpapi.NewServer(engine, log.Named("httpapi"))

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("listening",
			zap.String("addr", cfg.ListenAddr),
			zap.Int("max_size", cfg.MaxSize),
			zap.Duration("default_ttl", cfg.DefaultTTL),
			zap.Duration("sweep_interval", cfg.SweepInterval),
		)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// version and gitSHA are overridden at build time via -ldflags.
var (
	version = "dev"
	gitSHA  = "none"
)

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
