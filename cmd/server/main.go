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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"lettings/internal/platform/config"
	"lettings/internal/platform/health"
	"lettings/internal/platform/logger"
	"lettings/internal/seeder"
	httptransport "lettings/internal/transport/http"
	"lettings/pkg/platform/middleware/request"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("initializing lettings",
		"addr", cfg.Addr,
		"env", cfg.Environment,
		"inspection_store", cfg.InspectionStore,
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checks := health.New(cfg.Environment)

	infra, err := openInfra(ctx, cfg, log, reg, checks)
	if err != nil {
		return err
	}
	defer infra.Close(log)

	stores := buildStores(cfg, infra)
	app := buildApp(cfg, stores, infra, log, reg)

	if cfg.SeedFile != "" {
		if err := seed(ctx, cfg.SeedFile, stores, log); err != nil {
			return err
		}
	}

	router := httptransport.NewRouter(httptransport.Config{
		Validator:      app.validator,
		TrustedProxies: cfg.TrustedProxies,
		Gatherer:       reg,
		Metrics:        request.NewMetrics(reg),
	}, checks, app.handlers, log)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// Drain observers and pending audit writes only once no request can
		// publish anymore.
		if busErr := app.bus.Close(shutdownTimeout); busErr != nil {
			log.Warn("event bus did not drain", "error", busErr)
		}
		app.auditor.Close()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		return err
	}
	log.Info("server stopped")
	return nil
}

func seed(ctx context.Context, path string, stores storeSet, log *slog.Logger) error {
	fx, err := seeder.LoadFile(path)
	if err != nil {
		return err
	}
	return seeder.New(stores.listings, stores.inspections, stores.audit, log).SeedAll(ctx, fx)
}
