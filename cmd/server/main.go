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

	"golang.org/x/sync/errgroup"

	"voteledger/internal/audit"
	"voteledger/internal/dispatch"
	jwttoken "voteledger/internal/jwt_token"
	"voteledger/internal/ledger/service"
	"voteledger/internal/ledger/store"
	"voteledger/internal/platform/config"
	"voteledger/internal/platform/httpserver"
	"voteledger/internal/platform/logger"
	"voteledger/internal/platform/metrics"
	httptransport "voteledger/internal/transport/http"
	"voteledger/pkg/platform/middleware/admin"
)

// main wires the ledger, its collaborators and the HTTP server, then blocks
// until SIGINT or SIGTERM. Business logic lives in internal packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "voteledger: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := openInfra(ctx, cfg, log, m)
	if err != nil {
		return err
	}
	defer deps.close()

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithPersister(deps.persister),
		service.WithNotifier(deps.notifier),
		service.WithPolicy(service.Policy{
			RequireRegistration: cfg.Policy.RequireRegistration,
			EnforceWindow:       cfg.Policy.EnforceWindow,
		}),
	}
	if deps.syncer != nil {
		opts = append(opts, service.WithSheetSync(deps.syncer))
	}
	svc, err := service.New(store.New(), audit.NewLog(audit.WithLogger(log)), opts...)
	if err != nil {
		return err
	}
	if err := svc.Restore(ctx); err != nil {
		return fmt.Errorf("restore ledger: %w", err)
	}

	var validator admin.Validator
	if cfg.Server.AdminJWTSecret != "" {
		validator = jwttoken.NewJWTService(cfg.Server.AdminJWTSecret, "voteledger")
	} else {
		log.Warn("ADMIN_JWT_SECRET is not set; admin actions are disabled")
	}

	d := dispatch.New(svc, dispatch.WithLogger(log), dispatch.WithMetrics(m))
	h := httptransport.New(d, deps.hub, svc,
		httptransport.WithLogger(log),
		httptransport.WithMetrics(m),
	)
	srv := httpserver.New(cfg.Server.Addr, httptransport.NewRouter(h, validator, log))
	// Event streams never go idle; end them when shutdown starts.
	srv.RegisterOnShutdown(deps.hub.Close)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting voteledger", "addr", cfg.Server.Addr, "persistence", cfg.Persistence.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		log.Info("shutting down")
		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("graceful shutdown failed: %w", err))
		}
		if err := deps.notifier.Close(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("drain broadcast queue: %w", err))
		}
		if deps.syncer != nil {
			if err := deps.syncer.Close(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("drain sheets queue: %w", err))
			}
		}
		if err := svc.Flush(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("final snapshot flush: %w", err))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		log.Error("voteledger stopped with errors", slog.Any("error", err))
		return err
	}
	log.Info("voteledger stopped")
	return nil
}
