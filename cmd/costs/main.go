package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"
	_ "time/tzdata"

	"golang.org/x/sync/errgroup"

	"costs/internal/amqp"
	"costs/internal/cache"
	"costs/internal/cli"
	"costs/internal/config"
	"costs/internal/core"
	apphttp "costs/internal/http"
	applog "costs/internal/log"
	"costs/internal/services"
)

func main() {
	cfg := cli.LoadAndValidateConfig()

	logger, err := cli.SetupLogger(cfg, applog.ComponentApp)
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Invalid log configuration", applog.FieldError, err.Error())
		os.Exit(1)
	}
	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	result, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	store := result.Store
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := result.Cleanup(closeCtx); err != nil {
			logger.Warn("Store close failed", applog.FieldError, err.Error())
		}
	}()

	reports, stopCache, err := newReportCache(cfg, logger)
	if err != nil {
		return err
	}
	defer stopCache()

	var publisher services.CostPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, cost events disabled", applog.FieldError, err.Error())
		} else {
			defer client.Close()
			publisher = client
			logger.Info("AMQP publisher ready", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled, cost events will not be published")
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Dependencies{
		Costs:              services.NewCostService(store, store, reports, publisher, loc),
		Reports:            services.NewReportService(store, reports, loc),
		Users:              services.NewUserService(store),
		Team:               services.NewTeamService(teamMembers(cfg.Team)),
		Store:              store,
		Location:           loc,
		ExposeErrorDetails: cfg.ExposeErrorDetails,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:             logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting costs server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"cache", cfg.CacheBackend,
			"timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		logger.Info("Shutting down server", applog.FieldOperation, applog.OpShutdown)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newReportCache returns nil when caching is off. The returned stop function
// is always safe to call.
func newReportCache(cfg *config.Config, logger *applog.Logger) (cache.Cache[core.MonthlyReport], func(), error) {
	cacheLogger := logger.WithComponent(applog.ComponentCache).Logger

	switch cfg.CacheBackend {
	case "memory":
		lru := cache.NewLRUCache[core.MonthlyReport](cfg.CacheSize, cfg.CacheTTL)
		manager := cache.NewManager(cacheLogger)
		manager.Register(lru)
		manager.StartCleanup(time.Minute)
		return lru, manager.Stop, nil
	case "memcached":
		mc, err := cache.NewMemcache[core.MonthlyReport](cfg.MemcachedHosts, "costs:", cfg.CacheTTL, cacheLogger)
		if err != nil {
			return nil, func() {}, err
		}
		return mc, func() {}, nil
	default:
		return nil, func() {}, nil
	}
}

func teamMembers(team []config.TeamMember) []core.TeamMember {
	members := make([]core.TeamMember, 0, len(team))
	for _, m := range team {
		members = append(members, core.TeamMember{FirstName: m.FirstName, LastName: m.LastName})
	}
	return members
}
