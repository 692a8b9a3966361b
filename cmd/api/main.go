package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"labcalc/internal/config"
	"labcalc/internal/history"
	"labcalc/internal/observability"
	"labcalc/internal/refdata"
	"labcalc/internal/server"
	"labcalc/internal/solver"
)

func main() {

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Logger
	if err := observability.InitLogger(cfg.LogLevel); err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	// Tracing, logs and metrics
	telemetryShutdown, err := initTelemetry(ctx, cfg)
	if err != nil {
		observability.Logger.Fatal("starting telemetry", zap.Error(err))
	}
	defer telemetryShutdown(ctx)

	// Storage
	store, closeStore, err := openStore(cfg)
	if err != nil {
		observability.Logger.Fatal("opening store", zap.Error(err))
	}
	defer closeStore()

	log, err := history.Open(ctx, store, history.WithLimit(cfg.HistoryLimit))
	if err != nil {
		observability.Logger.Fatal("loading history", zap.Error(err))
	}

	// Router
	router := server.NewRouter(server.Deps{
		Catalog:   solver.Default(),
		Reference: refdata.Default(),
		History:   log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.Addr),
			zap.String("store", cfg.Store),
			zap.Bool("telemetry", cfg.Telemetry),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	waitForShutdown(srv, cfg.ShutdownTimeout)
}

func waitForShutdown(srv *http.Server, timeout time.Duration) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Warn("shutdown", zap.Error(err))
	}
	observability.Logger.Info("server stopped")
}
