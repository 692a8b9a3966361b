package main

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"labcalc/internal/calculator"
	"labcalc/internal/config"
	"labcalc/internal/kvstore"
	"labcalc/internal/observability"
	"labcalc/internal/projects"
)

// initTelemetry starts the OTLP trace, log and metric pipelines when enabled
// and returns one function that shuts them all down.
func initTelemetry(ctx context.Context, cfg config.Config) (func(context.Context) error, error) {
	var shutdowns []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	if cfg.Telemetry {
		for _, start := range []func(context.Context, string) (func(context.Context) error, error){
			observability.InitTracing,
			observability.InitLogging,
			observability.InitMetrics,
		} {
			stop, err := start(ctx, cfg.ServiceName)
			if err != nil {
				_ = shutdown(ctx)
				return nil, err
			}
			shutdowns = append(shutdowns, stop)
		}
	}

	// Domain instruments bind to the global meter provider, which is a no-op
	// when telemetry is off.
	if err := calculator.InitMetrics(); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}
	if err := projects.InitMetrics(); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	return shutdown, nil
}

// openStore returns the configured blob store and a function releasing it.
func openStore(cfg config.Config) (kvstore.Store, func() error, error) {
	if cfg.Store == config.MemoryStore {
		observability.Logger.Warn("using in-memory store, state is lost on exit")
		return kvstore.NewMemory(), func() error { return nil }, nil
	}

	store, err := kvstore.OpenSQLite(cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	observability.Logger.Info("using sqlite store", zap.String("path", cfg.Store))
	return store, store.Close, nil
}
