// Command sweepd runs the background cleanup sweeper against a SurrealDB
// instance: empty shared groups past their grace period are removed on a
// fixed interval, and sweep counters are exposed for Prometheus.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/forgo/wander/engine/internal/config"
	"github.com/forgo/wander/engine/internal/database"
	"github.com/forgo/wander/engine/internal/jobs"
	"github.com/forgo/wander/engine/internal/repository"
	"github.com/forgo/wander/engine/internal/service"
)

func main() {
	// Initialize structured logging
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	// Initialize repositories
	groupRepo := repository.NewSharedGroupRepository(db)
	sharedTripRepo := repository.NewSharedTripRepository(db)

	// Initialize services
	cleanupService := service.NewCleanupService(service.CleanupServiceConfig{
		Groups:      groupRepo,
		Trips:       sharedTripRepo,
		GracePeriod: cfg.Engine.GracePeriod,
		Logger:      logger,
	})

	sweeper := jobs.NewSweeper(jobs.SweeperConfig{
		Owners:   groupRepo,
		Cleanup:  cleanupService,
		Interval: cfg.Engine.SweepInterval,
		Logger:   logger,
	})
	sweeper.Start()
	defer sweeper.Stop()

	// Expose sweep counters
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    cfg.Server.MetricsAddr,
		Handler: mux,
	}
	go func() {
		slog.Info("metrics listening", slog.String("addr", cfg.Server.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server failed", slog.String("error", err.Error()))
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics shutdown failed", slog.String("error", err.Error()))
	}
}
