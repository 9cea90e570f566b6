package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/limited-access-backend/api/controllers"
	webhookcontrollers "github.com/angelmondragon/limited-access-backend/api/controllers/webhooks"
	"github.com/angelmondragon/limited-access-backend/api/middleware"
	"github.com/angelmondragon/limited-access-backend/api/routes"
	"github.com/angelmondragon/limited-access-backend/internal/waitlist"
	shopifywebhook "github.com/angelmondragon/limited-access-backend/internal/webhooks/shopify"
	"github.com/angelmondragon/limited-access-backend/pkg/config"
	"github.com/angelmondragon/limited-access-backend/pkg/db"
	"github.com/angelmondragon/limited-access-backend/pkg/env"
	"github.com/angelmondragon/limited-access-backend/pkg/instance"
	"github.com/angelmondragon/limited-access-backend/pkg/logger"
	"github.com/angelmondragon/limited-access-backend/pkg/metrics"
	"github.com/angelmondragon/limited-access-backend/pkg/migrate"
	"github.com/angelmondragon/limited-access-backend/pkg/redis"
)

const webhookDedupeScope = "shopify-webhook"

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	ctx = logg.WithFields(ctx, map[string]any{"instance": instance.GetID()})
	logg.Info(logg.WithFields(ctx, cfg.Redacted()), "config loaded")

	for _, msg := range cfg.StartupWarnings() {
		logg.Warn(ctx, msg)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()
	go logConnectionEvents(ctx, logg, dbClient.Watch(ctx, cfg.DB.MonitorInterval))

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	webhookMetrics := metrics.NewWebhookMetrics(reg)

	readiness := []controllers.ReadinessCheck{{Name: "database", Pinger: dbClient}}
	var (
		rateLimiter middleware.RateLimitStore
		guard       webhookcontrollers.DeliveryGuard
	)
	if cfg.Redis.Enabled() {
		var redisClient *redis.Client
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		var deliveryGuard *shopifywebhook.IdempotencyGuard
		deliveryGuard, err = shopifywebhook.NewIdempotencyGuard(redisClient, cfg.Shopify.DedupeTTL, webhookDedupeScope)
		if err != nil {
			return err
		}
		rateLimiter = redisClient
		guard = deliveryGuard
		readiness = append(readiness, controllers.ReadinessCheck{Name: "redis", Pinger: redisClient})
	} else {
		logg.Info(ctx, "redis not configured; webhook dedupe and admin rate limiting disabled")
	}

	waitlistService, err := waitlist.NewService(waitlist.ServiceParams{
		Repo:    waitlist.NewRepository(dbClient.DB()),
		Logger:  logg,
		Metrics: metrics.NewWaitlistMetrics(reg),
	})
	if err != nil {
		return err
	}

	dispatcher, err := shopifywebhook.NewDispatcher(shopifywebhook.DispatcherParams{
		Finder:  waitlistService,
		Logger:  logg,
		Metrics: webhookMetrics,
	})
	if err != nil {
		return err
	}
	if err := shopifywebhook.RegisterDefaults(dispatcher, shopifywebhook.HandlerParams{
		Updater:            waitlistService,
		Linker:             waitlistService,
		Logger:             logg,
		AutoApproveOnOrder: cfg.Shopify.AutoApproveOnOrder,
	}); err != nil {
		return err
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:         cfg,
			Logger:         logg,
			Waitlist:       waitlistService,
			Verifier:       shopifywebhook.NewVerifier(cfg.Shopify.WebhookSecret),
			Dispatcher:     dispatcher,
			DeliveryGuard:  guard,
			RateLimiter:    rateLimiter,
			WebhookMetrics: webhookMetrics,
			Gatherer:       reg,
			Readiness:      readiness,
		}),
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "addr", addr), "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func logConnectionEvents(ctx context.Context, logg *logger.Logger, events <-chan db.ConnectionEvent) {
	for event := range events {
		evCtx := logg.WithFields(ctx, map[string]any{"event": string(event.Type), "at": event.At})
		switch event.Type {
		case db.EventConnected, db.EventReconnected:
			logg.Info(evCtx, "database.connection")
		case db.EventDisconnected:
			logg.Warn(evCtx, "database.connection")
		default:
			logg.Error(evCtx, "database.connection", event.Err)
		}
	}
}
