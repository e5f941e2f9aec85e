// Package main provides the API server entry point for the IFRS 17 reporting service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ifrs17-reporting/internal/api"
	"github.com/ifrs17-reporting/internal/auth"
	"github.com/ifrs17-reporting/internal/config"
	"github.com/ifrs17-reporting/internal/ifrs17"
	"github.com/ifrs17-reporting/internal/logging"
	"github.com/ifrs17-reporting/internal/retry"
	"github.com/ifrs17-reporting/internal/service"
	"github.com/ifrs17-reporting/internal/storage"
)

func main() {
	fmt.Println("IFRS 17 Reporting API Server")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize structured logging
	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), time.Minute)
	defer cancelStartup()

	logger.Info("Connecting to databases...")

	startup := retry.DefaultConfig()

	// Schema first, so the user repository can rely on it
	err = retry.Do(startupCtx, startup, "postgres_migrations", func(ctx context.Context) error {
		return storage.RunMigrations(cfg.Database.Postgres.DatabaseURL(), storage.DefaultMigrationsPath)
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to apply Postgres migrations")
	}

	var postgres *storage.PostgresDB
	err = retry.Do(startupCtx, startup, "postgres_connect", func(ctx context.Context) error {
		db, connErr := storage.NewPostgresDB(ctx, &cfg.Database.Postgres)
		postgres = db
		return connErr
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	var redisStore *storage.RedisStore
	err = retry.Do(startupCtx, startup, "redis_connect", func(ctx context.Context) error {
		store, connErr := storage.NewRedisStore(ctx, &cfg.Database.Redis)
		redisStore = store
		return connErr
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisStore.Close()

	logger.Info("Database connections established")

	// Initialize repositories and stores
	userRepo := storage.NewUserRepository(postgres)
	denylist := storage.NewTokenDenylist(redisStore.Client())
	snapshots := ifrs17.NewFileStore(cfg.Data.Path, logger)

	// Initialize services
	logger.Info("Initializing services...")

	tokens := auth.NewTokenManager(cfg.Auth.SecretKey, cfg.Auth.AccessTokenTTL)
	userService := service.NewUserService(userRepo, denylist, tokens, logger)
	reportingService := service.NewReportingService(snapshots, logger)

	if cfg.Auth.BootstrapAdmin {
		if err := userService.EnsureDefaultAdmin(startupCtx, cfg.Auth.DefaultAdminEmail, cfg.Auth.DefaultAdminPassword); err != nil {
			logger.WithError(err).Fatal("Failed to create default admin")
		}
	}

	// Warm the snapshot cache; a missing file is reported per request as 503
	if _, err := snapshots.Load(startupCtx); err != nil {
		logger.WithError(err).WithField("path", cfg.Data.Path).Warn("IFRS 17 data not loaded at startup")
	}

	logger.Info("Services initialized")

	serverConfig := &api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RateLimitRPS:    cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst:  cfg.RateLimit.Burst,
	}

	server := api.NewServer(serverConfig, reportingService, userService, logger)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host":      cfg.Server.Host,
		"port":      cfg.Server.Port,
		"data_path": cfg.Data.Path,
	}).Info("Server started successfully")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
