package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agendamoz/barber-platform/internal/api/router"
	"github.com/agendamoz/barber-platform/internal/app/bootstrap"
	appconfig "github.com/agendamoz/barber-platform/internal/config"
	"github.com/agendamoz/barber-platform/internal/notify"
	"github.com/agendamoz/barber-platform/internal/observability/metrics"
	"github.com/agendamoz/barber-platform/internal/payments"
	"github.com/agendamoz/barber-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting barber-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Postgres
	pool, err := bootstrap.BuildDatabasePool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Redis-backed confirm-attempt limiter
	var velocity *payments.VelocityChecker
	if redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true); redisClient != nil {
		velocityCfg := payments.VelocityConfig{
			MaxAttemptsPerAppointment: cfg.VelocityMaxAttempts,
			WindowHours:               cfg.VelocityWindowHours,
			Enabled:                   true,
		}
		velocity = payments.NewVelocityChecker(redisClient, velocityCfg, logger)
	} else {
		logger.Warn("redis unavailable; confirm velocity checks disabled")
	}

	// Receipt queue
	queue, err := bootstrap.BuildReceiptQueue(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build receipt queue", "error", err)
		os.Exit(1)
	}
	receipts := notify.NewPublisher(queue, logger)

	// Metrics
	paymentMetrics := metrics.NewPaymentMetrics(prometheus.DefaultRegisterer)

	// Confirm flow
	repo := payments.NewRepository(pool)
	service := payments.NewConfirmService(repo, velocity, receipts, paymentMetrics, logger).
		WithConfirmWindow(cfg.ConfirmWindowHours)
	paymentsHandler := payments.NewHandler(service, paymentMetrics, logger)

	var adminHandler *payments.AdminHandler
	if velocity != nil {
		adminHandler = payments.NewAdminHandler(velocity, logger)
	}

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		PaymentsHandler:    paymentsHandler,
		AdminPayments:      adminHandler,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSOrigins,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
