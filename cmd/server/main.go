package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forgo/backoffice/api/internal/config"
	"github.com/forgo/backoffice/api/internal/handler"
	"github.com/forgo/backoffice/api/internal/middleware"
	"github.com/forgo/backoffice/api/internal/service"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := openStorage(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open database",
			slog.String("driver", cfg.Database.Driver),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
	defer func() { _ = store.close() }()

	slog.Info("connected to database", slog.String("driver", cfg.Database.Driver))

	// Initialize services
	customerService := service.NewCustomerService(store.customers)
	userService := service.NewUserService(service.UserServiceConfig{
		UserRepo:   store.users,
		BcryptCost: cfg.Security.BcryptCost,
	})
	seederService := service.NewSeederService(service.SeederServiceConfig{
		CustomerRepo: store.customers,
		UserRepo:     store.users,
		Enabled:      cfg.Seed.Enabled,
	})

	if cfg.Seed.Enabled && (cfg.Seed.Customers > 0 || cfg.Seed.Users > 0) {
		res, err := seederService.SeedIfEmpty(ctx, service.SeedRequest{
			Customers: cfg.Seed.Customers,
			Users:     cfg.Seed.Users,
		})
		if err != nil {
			slog.Error("startup seeding failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if res != nil {
			slog.Info("seeded database",
				slog.Int("customers", res.Customers),
				slog.Int("users", res.Users),
			)
		}
	}

	// Initialize middleware state
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   cfg.RateLimit.Rate,
		Window: cfg.RateLimit.Window,
		Burst:  cfg.RateLimit.Burst,
	})
	defer rateLimiter.Stop()

	idempotencyStore := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{
		TTL: cfg.Security.IdempotencyTTL,
	})
	defer idempotencyStore.Stop()

	metrics := middleware.NewMetrics("backoffice")
	registerRecordGauges(metrics.Registry(), store)

	// Initialize handlers
	customerHandler := handler.NewCustomerHandler(customerService)
	userHandler := handler.NewUserHandler(userService)
	adminSeederHandler := handler.NewAdminSeederHandler(seederService)
	healthHandler := handler.NewHealthHandler(store.ping, cfg.Database.Driver)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.Health)
	if cfg.Server.MetricsEnabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	customerHandler.RegisterRoutes(mux)
	userHandler.RegisterRoutes(mux)
	adminSeederHandler.RegisterRoutes(mux)

	// Apply global middleware
	chain := []middleware.Middleware{
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		metrics.Middleware,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.Compress,
	}
	if cfg.RateLimit.Enabled {
		chain = append(chain, middleware.RateLimit(rateLimiter))
	}
	chain = append(chain, middleware.Idempotency(idempotencyStore))
	wrapped := middleware.Chain(mux, chain...)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
