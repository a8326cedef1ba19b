package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jorge-Marco5/go-api-template/internal/config"
	"github.com/Jorge-Marco5/go-api-template/internal/database"
	"github.com/Jorge-Marco5/go-api-template/internal/di"
	"github.com/Jorge-Marco5/go-api-template/internal/logger"
	"github.com/Jorge-Marco5/go-api-template/internal/middleware"
	"github.com/Jorge-Marco5/go-api-template/internal/redisclient"
	"github.com/Jorge-Marco5/go-api-template/internal/router"
	"github.com/Jorge-Marco5/go-api-template/internal/telemetry"
)

// sessionCleanupInterval is how often expired session rows are purged.
const sessionCleanupInterval = time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info(fmt.Sprintf("Starting %s...", cfg.App.Name))

	ctx := context.Background()

	// Initialize OpenTelemetry
	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	} else if telemetryCfg.Enabled {
		appLog.Info(fmt.Sprintf("Telemetry initialized (collector: %s)", telemetryCfg.CollectorAddr))
	}
	defer telemetry.Shutdown(ctx)

	// Initialize database connection
	db, err := database.NewPostgres(ctx, &cfg.Database, database.Options{
		ConnectTimeout: 5 * time.Second,
		MaxRetries:     3,
		RetryInterval:  1 * time.Second,
		EnableTracing:  cfg.OTel.Enabled,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)",
		cfg.Database.MinConns, cfg.Database.MaxConns))

	// Redis backs the rate limiter; the API runs without it
	var limiter middleware.RateLimitClient
	if cfg.Redis.Enabled {
		rdb, err := redisclient.New(ctx, &cfg.Redis)
		if err != nil {
			appLog.Warn(fmt.Sprintf("Redis connection failed, rate limiting disabled: %v", err))
		} else {
			defer rdb.Close()
			limiter = rdb
			appLog.Info(fmt.Sprintf("Redis connected (%s)", cfg.Redis.Addr()))
		}
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:         db,
		JWT:        &cfg.JWT,
		Production: cfg.IsProduction(),
	})

	// Periodically reclaim expired session rows.
	cleanupCtx, cleanupCancel := context.WithCancel(ctx)
	defer cleanupCancel()
	go func() {
		ticker := time.NewTicker(sessionCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				if err := container.AuthService.PurgeExpiredSessions(cleanupCtx); err != nil {
					appLog.Warn(fmt.Sprintf("Session cleanup failed: %v", err))
				}
			}
		}
	}()

	engine := router.New(router.Options{
		Config:      cfg,
		Container:   container,
		Logger:      appLog,
		RateLimiter: limiter,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("%s listening on %s", cfg.App.Name, addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
