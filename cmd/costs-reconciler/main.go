package main

import (
	"context"
	"os"
	"time"
	_ "time/tzdata"

	"costs/internal/cli"
	applog "costs/internal/log"
	"costs/internal/reconcile"
)

func main() {
	cfg := cli.LoadAndValidateConfig()

	logger, err := cli.SetupLogger(cfg, applog.ComponentReconcile)
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Invalid log configuration", applog.FieldError, err.Error())
		os.Exit(1)
	}

	logger.Info("Starting costs-reconciler", "schedule", cfg.ReconcileSchedule, "backend", cfg.DataBackend)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	result, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open store", applog.FieldError, err.Error())
		os.Exit(1)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := result.Cleanup(closeCtx); err != nil {
			logger.Warn("Store close failed", applog.FieldError, err.Error())
		}
	}()

	reconciler := reconcile.NewReconciler(result.Store, logger)
	if err := reconciler.Start(ctx, cfg.ReconcileSchedule); err != nil {
		logger.Error("Failed to schedule reconciler", applog.FieldError, err.Error())
		os.Exit(1)
	}

	<-ctx.Done()
	reconciler.Stop()
	logger.Info("Costs-reconciler shutdown complete")
}
