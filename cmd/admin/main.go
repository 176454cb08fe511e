package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront-admin/internal/backend"
	"storefront-admin/internal/config"
	"storefront-admin/internal/database"
	"storefront-admin/internal/logger"
	"storefront-admin/internal/repository"
	"storefront-admin/internal/server"
	"storefront-admin/internal/staging"
	"storefront-admin/internal/transport"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Entries kept when the activity log has no database
const memoryActivityCapacity = 1000

func gracefulShutdown(adminServer *server.Server, logger *zap.Logger, stopSweeper context.CancelFunc, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 30 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := adminServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	stopSweeper()

	// Close server resources
	if err := adminServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting storefront admin dashboard",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("backend", cfg.Backend.BaseURL),
	)

	deps := server.Deps{}

	// Activity log storage
	if cfg.Database.ActivityLogEnabled {
		dbService, err := database.New(cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		log.Info("Database health check", zap.Any("health", dbService.Health()))

		// Run migrations
		if err := database.RunMigrations(dbService.DB(), database.MigrationsDir, log); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
		log.Info("Database migrations completed successfully")

		deps.DB = dbService
		deps.Activity = repository.NewActivityLogRepository(dbService.DB())
	} else {
		log.Warn("Activity log database disabled, keeping recent entries in memory")
		deps.Activity = repository.NewMemoryActivityLogRepository(memoryActivityCapacity)
	}

	// Redis backs the category cache and the sign-in rate limiter
	deps.Redis = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	if err := deps.Redis.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unavailable, caching and rate limiting are bypassed", zap.Error(err))
	}
	cancelPing()

	deps.Backend, err = backend.New(cfg.Backend.BaseURL, cfg.Backend.Timeout, log)
	if err != nil {
		log.Fatal("Invalid backend configuration", zap.Error(err))
	}

	deps.Views = transport.NewTemplateCache()
	if err := deps.Views.Load(); err != nil {
		log.Fatal("Failed to load templates", zap.Error(err))
	}

	deps.Staging = staging.NewStore(cfg.Upload.StagingTTL, cfg.Upload.ImageMaxWidth, log)
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go deps.Staging.Run(sweepCtx)

	// Create server
	srv := server.NewServer(cfg, log, deps)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(srv, log, stopSweeper, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")
}
