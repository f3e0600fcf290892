package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/novathreads/storefront-backend/api/controllers"
	"github.com/novathreads/storefront-backend/api/routes"
	"github.com/novathreads/storefront-backend/internal/auth"
	"github.com/novathreads/storefront-backend/internal/catalog"
	"github.com/novathreads/storefront-backend/internal/newsletter"
	"github.com/novathreads/storefront-backend/internal/users"
	"github.com/novathreads/storefront-backend/pkg/config"
	"github.com/novathreads/storefront-backend/pkg/db"
	"github.com/novathreads/storefront-backend/pkg/logger"
	"github.com/novathreads/storefront-backend/pkg/metrics"
	"github.com/novathreads/storefront-backend/pkg/migrate"
	"github.com/novathreads/storefront-backend/pkg/pubsub"
	"github.com/novathreads/storefront-backend/pkg/ratelimit"
	"github.com/novathreads/storefront-backend/pkg/redis"
	"github.com/novathreads/storefront-backend/pkg/security"
)

const shutdownTimeout = 10 * time.Second

func main() {
	decimal.MarshalJSONWithoutQuotes = true

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
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func() error
	defer func() {
		var closeErr error
		for i := len(closers) - 1; i >= 0; i-- {
			closeErr = multierr.Append(closeErr, closers[i]())
		}
		if closeErr != nil {
			logg.Error(context.Background(), "error releasing resources", closeErr)
		}
	}()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	closers = append(closers, dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	readiness := map[string]controllers.Pinger{"database": dbClient}

	var rateStore ratelimit.Store
	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	switch {
	case err == nil:
		closers = append(closers, redisClient.Close)
		rateStore = redisClient
		readiness["redis"] = redisClient
	case cfg.App.IsProd():
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	default:
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "redis unavailable, using in-memory rate limits")
		rateStore = ratelimit.NewMemoryStore()
	}

	var publisher pubsub.EventPublisher = pubsub.NoopPublisher{}
	if cfg.PubSub.Enabled() {
		psClient, err := pubsub.NewClient(ctx, cfg.PubSub, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		jsonPublisher := pubsub.NewJSONPublisher(psClient.NewsletterPublisher())
		closers = append(closers, psClient.Close, func() error { jsonPublisher.Stop(); return nil })
		publisher = jsonPublisher
		readiness["pubsub"] = psClient
	}

	hasher := security.NewHasher(cfg.Password)
	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  users.NewRepository(dbClient.DB()),
		Hasher:    hasher,
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}

	newsletterService, err := newsletter.NewService(newsletter.ServiceParams{
		Repo:      newsletter.NewRepository(dbClient.DB()),
		Publisher: publisher,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create newsletter service", err)
		os.Exit(1)
	}

	if cfg.Seed.Enabled {
		seed(ctx, cfg, logg, catalogService, authService)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	srvCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:     cfg,
			Logger:     logg,
			Metrics:    httpMetrics,
			RateStore:  rateStore,
			Readiness:  readiness,
			Catalog:    catalogService,
			Auth:       authService,
			Newsletter: newsletterService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(srvCtx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(srvCtx, "api server stopped unexpectedly", err)
		}
	case <-ctx.Done():
		logg.Info(srvCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(srvCtx, "graceful shutdown failed", err)
		}
	}
}

// seed fills an empty catalog and creates the configured admin. Failures
// are logged and never stop the server.
func seed(ctx context.Context, cfg *config.Config, logg *logger.Logger, catalogService catalog.Service, authService auth.Service) {
	if _, err := catalogService.SeedIfEmpty(ctx); err != nil {
		logg.Error(ctx, "catalog seed failed", err)
	}

	if cfg.Seed.AdminPassword == "" {
		return
	}
	adminCtx := logg.WithField(ctx, "admin_email", cfg.Seed.AdminEmail)
	created, err := authService.EnsureAdmin(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
	if err != nil {
		logg.Error(adminCtx, "admin seed failed", err)
		return
	}
	if created {
		logg.Info(adminCtx, "admin user created")
	}
}
