package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	exportApp "github.com/calltrack/golang_services/internal/export_service/app"
	exportDomain "github.com/calltrack/golang_services/internal/export_service/domain"
	exportPg "github.com/calltrack/golang_services/internal/export_service/repository/postgres"
	"github.com/calltrack/golang_services/internal/numbers_service/adapters/carrier"
	numbersApp "github.com/calltrack/golang_services/internal/numbers_service/app"
	numbersDomain "github.com/calltrack/golang_services/internal/numbers_service/domain"
	numbersPg "github.com/calltrack/golang_services/internal/numbers_service/repository/postgres"
	"github.com/calltrack/golang_services/internal/platform/config"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/calltrack/golang_services/internal/platform/logger"
	"github.com/calltrack/golang_services/internal/platform/messagebroker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName     = "worker_service"
	shutdownTimeout = 15 * time.Second

	releaseQueueGroup = "number_release_workers"
	exportQueueGroup  = "export_workers"
)

func newCarrier(cfg *config.Config, logger *slog.Logger) numbersDomain.Carrier {
	if cfg.IsCarrierTestMode() {
		return carrier.NewMockCarrier(logger)
	}
	return carrier.NewRESTCarrier(logger, cfg.CarrierAPIURL, cfg.CarrierAccountSID, cfg.CarrierAuthToken,
		&http.Client{Timeout: cfg.CarrierHTTPTimeout})
}

func main() {
	mainCtx, mainCancel := context.WithCancel(context.Background())
	defer mainCancel()

	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}
	appLogger := logger.New(cfg.LogLevel).With("service", serviceName)
	if err := cfg.Validate(); err != nil {
		appLogger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.ExportDir, 0o750); err != nil {
		appLogger.Error("Failed to create export directory", "path", cfg.ExportDir, "error", err)
		os.Exit(1)
	}
	appLogger.Info("Worker service starting...",
		"export_dir", cfg.ExportDir,
		"polling_interval", cfg.SchedulerPollingInterval,
		"carrier_mode", cfg.CarrierMode,
	)

	dbPool, err := database.NewDBPool(mainCtx, cfg.PostgresDSN, appLogger)
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	natsClient, err := messagebroker.NewNATSClient(cfg.NATSUrl, serviceName, appLogger)
	if err != nil {
		appLogger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer natsClient.Close()

	phoneRepo := numbersPg.NewPgPhoneNumberRepository(appLogger)
	releaseService := numbersApp.NewReleaseService(numbersApp.ReleaseServiceDeps{
		DB:              dbPool,
		PhoneRepo:       phoneRepo,
		BankRepo:        numbersPg.NewPgBankedNumberRepository(appLogger),
		PoolRepo:        numbersPg.NewPgPoolRepository(appLogger),
		KeywordPoolRepo: numbersPg.NewPgKeywordPoolRepository(appLogger),
		SessionRepo:     numbersPg.NewPgKeywordSessionRepository(appLogger),
		Campaigns:       phoneRepo,
		Carrier:         newCarrier(cfg, appLogger),
		Publisher:       natsClient,
		TestMode:        cfg.IsCarrierTestMode(),
	}, appLogger)
	releaseConsumer := numbersApp.NewReleaseConsumer(releaseService, appLogger)

	scheduleRepo := exportPg.NewPgScheduledExportRepository(appLogger)
	exportService := exportApp.NewExportService(dbPool, scheduleRepo, exportPg.NewPgExportSource(appLogger), natsClient, cfg.ExportDir, appLogger)
	exportConsumer := exportApp.NewExportConsumer(exportService, natsClient, appLogger)
	poller := exportApp.NewExportPoller(dbPool, scheduleRepo, natsClient, exportApp.PollerConfig{
		PollingInterval: cfg.SchedulerPollingInterval,
		BatchSize:       cfg.SchedulerBatchSize,
	}, appLogger)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.WorkerMetricsPort),
		Handler: metricsMux,
	}

	g, groupCtx := errgroup.WithContext(mainCtx)

	for _, subject := range releaseConsumer.Subjects() {
		subject := subject
		g.Go(func() error {
			return natsClient.SubscribeToSubjectWithQueue(groupCtx, subject, releaseQueueGroup, releaseConsumer.MsgHandler())
		})
	}

	g.Go(func() error {
		return natsClient.SubscribeToSubjectWithQueue(groupCtx, exportDomain.SubjectExportRequested, exportQueueGroup, exportConsumer.MsgHandler())
	})

	g.Go(func() error {
		return poller.Run(groupCtx)
	})

	g.Go(func() error {
		appLogger.Info("Metrics server starting", "address", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	stopSignal := make(chan os.Signal, 1)
	signal.Notify(stopSignal, syscall.SIGINT, syscall.SIGTERM)

	g.Go(func() error {
		select {
		case sig := <-stopSignal:
			appLogger.Info("Received termination signal", "signal", sig.String())
			mainCancel()
		case <-groupCtx.Done():
		}
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	appLogger.Info("Worker service is ready and running.")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("Worker service stopped with error", "error", err)
		os.Exit(1)
	}
	appLogger.Info("Worker service shut down successfully.")
}
