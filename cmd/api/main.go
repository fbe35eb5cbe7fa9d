// estateadmin | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mseddi/estateadmin/internal/admin"
	"github.com/mseddi/estateadmin/internal/audit"
	"github.com/mseddi/estateadmin/internal/auth"
	"github.com/mseddi/estateadmin/internal/config"
	"github.com/mseddi/estateadmin/internal/core"
	"github.com/mseddi/estateadmin/internal/health"
	"github.com/mseddi/estateadmin/internal/listing"
	"github.com/mseddi/estateadmin/internal/message"
	"github.com/mseddi/estateadmin/internal/middleware"
	"github.com/mseddi/estateadmin/internal/sales"
	"github.com/mseddi/estateadmin/internal/server"
	"github.com/mseddi/estateadmin/internal/shop"
	"github.com/mseddi/estateadmin/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	verifier, err := auth.NewVerifier(cfg.Identity)
	if err != nil {
		return err
	}
	logger.Info("token verifier initialized",
		"algorithm", "ES256",
		"issuer", cfg.Identity.Issuer,
	)

	auditRepo := audit.NewRepository(db.DB)
	auditHandler := audit.NewHandler(auditRepo)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, auditRepo)
	userHandler := user.NewHandler(userSvc)

	listingStore := listing.NewStore(db)
	listingSvc := listing.NewService(listingStore, userRepo)
	listingHandler := listing.NewHandler(listingSvc)

	salesStore := sales.NewStore(db)
	salesSvc := sales.NewService(salesStore, listingStore.Listings())
	salesHandler := sales.NewHandler(salesSvc)

	messageStore := message.NewStore(db)
	messageSvc := message.NewService(messageStore)
	messageHandler := message.NewHandler(messageSvc)

	shopStore := shop.NewStore(db)
	shopSvc := shop.NewService(shopStore, userRepo)
	shopHandler := shop.NewHandler(shopSvc)

	healthHandler := health.NewHandler(db, redis)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:      db.Stats,
		RedisStats:   redis.PoolStats,
		DBPing:       db.Ping,
		RedisPing:    redis.Ping,
		ListingStats: listingStore.Listings(),
		SalesStats:   salesSvc,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", verifier.GetJWKSHandler())

	authenticator := middleware.Authenticator(verifier)
	optionalAuth := middleware.OptionalAuth(verifier)
	staffOnly := middleware.RequireStaff
	superAdminOnly := middleware.RequireSuperAdmin

	router.Route("/v1", func(r chi.Router) {
		userHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterAdminRoutes(
			r, authenticator, staffOnly, superAdminOnly,
		)

		listingHandler.RegisterRoutes(r, authenticator, staffOnly)
		shopHandler.RegisterRoutes(r, optionalAuth, authenticator)

		salesHandler.RegisterRoutes(
			r, authenticator, staffOnly, superAdminOnly,
		)
		messageHandler.RegisterRoutes(r, authenticator, staffOnly)
		auditHandler.RegisterRoutes(r, authenticator, staffOnly)
		adminHandler.RegisterRoutes(r, authenticator, staffOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
