// Package main is the entry point for the job board service.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kaojob/jobboard-service/internal/cache"
	"github.com/kaojob/jobboard-service/internal/config"
	"github.com/kaojob/jobboard-service/internal/database"
	"github.com/kaojob/jobboard-service/internal/handlers"
	"github.com/kaojob/jobboard-service/internal/httputil"
	"github.com/kaojob/jobboard-service/internal/logger"
	"github.com/kaojob/jobboard-service/internal/metrics"
	"github.com/kaojob/jobboard-service/internal/middleware"
	"github.com/kaojob/jobboard-service/internal/repository"
	"github.com/kaojob/jobboard-service/internal/routes"
	"github.com/kaojob/jobboard-service/internal/seed"
	"github.com/kaojob/jobboard-service/internal/service"
	"github.com/kaojob/jobboard-service/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

// @title KaoJob Job Board API
// @version 1.0
// @description Accounts, bearer tokens and job postings for the KaoJob job board
// @host localhost:3000
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel, cfg.Environment, os.Stdout)
	slog.SetDefault(appLogger)
	if cfg.UsingDevSecret {
		appLogger.Warn("JWT_SECRET is not set; signing tokens with the built-in development secret. Never run like this in production.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) error {
	// Initialize database
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.RunMigrations {
		if err := database.Migrate(ctx, sqlDB); err != nil {
			return err
		}
		appLogger.Info("database migrations applied")
	}

	// Initialize Redis; nil when REDIS_ADDR is empty
	redisClient, err := redis.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		appLogger.Info("job list cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.JobsCacheTTL)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	jobRepo := repository.NewJobRepository(db)

	// Initialize services
	metricsCollector := metrics.New()
	jwtService, err := service.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		return err
	}
	appLogger.Info("token signing configured", "algorithm", "HS256", "expiry", jwtService.GetExpiry())
	authService := service.NewAuthService(userRepo, jwtService, metricsCollector)
	jobService := service.NewJobService(jobRepo, cache.NewJobListCache(redisClient, cfg.JobsCacheTTL), metricsCollector, appLogger)

	if cfg.SeedDemoData {
		if err := seed.Run(ctx, authService, jobService, appLogger); err != nil {
			return err
		}
	}

	// Initialize handlers
	responder := httputil.NewResponder(appLogger, !cfg.IsProduction())

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(appLogger),
		metricsCollector.Middleware(),
	)
	routes.Setup(router, routes.Dependencies{
		Auth:      handlers.NewAuthHandler(authService, responder),
		Jobs:      handlers.NewJobHandler(jobService, responder),
		Health:    handlers.NewHealthHandler(),
		Tokens:    jwtService,
		Responder: responder,
		Metrics:   metricsCollector,
	}, cfg)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("job board service listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	appLogger.Info("shutting down job board service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
