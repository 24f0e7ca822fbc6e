package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/dataguard-br/privacy-engine/internal/api/rest"
	"github.com/dataguard-br/privacy-engine/internal/infrastructure/config"
	"github.com/dataguard-br/privacy-engine/internal/infrastructure/telemetry"
	"github.com/dataguard-br/privacy-engine/internal/scheduler"
	"github.com/dataguard-br/privacy-engine/internal/service/lifecycle"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := telemetry.NewLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := telemetry.NewMetrics(registry)

	manager := lifecycle.NewManager(lifecycle.Config{
		DetectionOnlyMode: cfg.Privacy.DetectionOnlyMode,
		DefaultRetention:  cfg.DefaultRetentionPolicy(),
	}, logger.Named("lifecycle"), metrics)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Privacy.CleanupEnabled {
		sched, err := scheduler.New(cfg.Privacy.CleanupSchedule, manager, logger.Named("scheduler"))
		if err != nil {
			logger.Fatal("failed to build cleanup scheduler", zap.Error(err))
		}
		sched.Start()
		defer sched.Stop()
	}

	server := rest.NewServer(cfg, manager, registry, logger.Named("rest"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancelShutdown()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
