package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	accountApp "github.com/calltrack/golang_services/internal/account_service/app"
	accountPg "github.com/calltrack/golang_services/internal/account_service/repository/postgres"
	billingHTTP "github.com/calltrack/golang_services/internal/billing_service/adapters/http"
	"github.com/calltrack/golang_services/internal/billing_service/adapters/paymentgateway"
	billingApp "github.com/calltrack/golang_services/internal/billing_service/app"
	billingPg "github.com/calltrack/golang_services/internal/billing_service/repository/postgres"
	campaignApp "github.com/calltrack/golang_services/internal/campaign_service/app"
	campaignPg "github.com/calltrack/golang_services/internal/campaign_service/repository/postgres"
	contactApp "github.com/calltrack/golang_services/internal/contact_service/app"
	contactPg "github.com/calltrack/golang_services/internal/contact_service/repository/postgres"
	exportApp "github.com/calltrack/golang_services/internal/export_service/app"
	exportPg "github.com/calltrack/golang_services/internal/export_service/repository/postgres"
	"github.com/calltrack/golang_services/internal/numbers_service/adapters/carrier"
	numbersApp "github.com/calltrack/golang_services/internal/numbers_service/app"
	numbersDomain "github.com/calltrack/golang_services/internal/numbers_service/domain"
	numbersPg "github.com/calltrack/golang_services/internal/numbers_service/repository/postgres"
	"github.com/calltrack/golang_services/internal/platform/config"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/calltrack/golang_services/internal/platform/logger"
	"github.com/calltrack/golang_services/internal/platform/messagebroker"
	httptransport "github.com/calltrack/golang_services/internal/public_api_service/transport/http"
	grpcprom "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const (
	serviceName     = "api_service"
	shutdownTimeout = 15 * time.Second
)

func newCarrier(cfg *config.Config, logger *slog.Logger) numbersDomain.Carrier {
	if cfg.IsCarrierTestMode() {
		logger.Warn("Carrier in test mode; numbers are simulated locally")
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
	appLogger.Info("API service starting...",
		"http_port", cfg.APIServicePort,
		"metrics_port", cfg.MetricsPort,
		"grpc_health_port", cfg.GRPCHealthPort,
		"carrier_mode", cfg.CarrierMode,
	)

	dbPool, err := database.NewDBPool(mainCtx, cfg.PostgresDSN, appLogger)
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// Without NATS, pool releases run inline in the request.
	var publisher messagebroker.Publisher
	natsClient, err := messagebroker.NewNATSClient(cfg.NATSUrl, serviceName, appLogger)
	if err != nil {
		appLogger.Warn("NATS unavailable; release and export jobs will not be queued", "error", err)
	} else {
		defer natsClient.Close()
		publisher = natsClient
	}

	// Repositories
	accountRepo := accountPg.NewPgAccountRepository(dbPool, appLogger)
	userRepo := accountPg.NewPgUserRepository(dbPool, appLogger)
	companyRepo := accountPg.NewPgCompanyRepository(dbPool, appLogger)
	billingRepo := billingPg.NewPgBillingRepository(appLogger)
	transactionRepo := billingPg.NewPgTransactionRepository(appLogger)
	paymentIntentRepo := billingPg.NewPgPaymentIntentRepository(appLogger)
	phoneRepo := numbersPg.NewPgPhoneNumberRepository(appLogger)
	bankRepo := numbersPg.NewPgBankedNumberRepository(appLogger)
	poolRepo := numbersPg.NewPgPoolRepository(appLogger)
	keywordPoolRepo := numbersPg.NewPgKeywordPoolRepository(appLogger)
	sessionRepo := numbersPg.NewPgKeywordSessionRepository(appLogger)
	idempotencyRepo := numbersPg.NewPgIdempotencyRepository(appLogger)
	campaignRepo := campaignPg.NewPgCampaignRepository(appLogger)
	contactRepo := contactPg.NewPgContactRepository(appLogger)
	blockedRepo := contactPg.NewPgBlockedNumberRepository(appLogger)
	scheduleRepo := exportPg.NewPgScheduledExportRepository(appLogger)

	// Services
	gateway := paymentgateway.NewMockPaymentGatewayAdapter(appLogger, cfg.PaymentWebhookSecret)
	billingService := billingApp.NewBillingService(dbPool, billingRepo, transactionRepo, paymentIntentRepo, gateway, cfg.DefaultCurrency, appLogger)
	authService := accountApp.NewAuthService(accountRepo, userRepo, accountApp.AuthConfig{
		JWTSecret:      cfg.JWTSecret,
		JWTExpiryHours: cfg.JWTExpiryHours,
	}, appLogger)

	carrierClient := newCarrier(cfg, appLogger)
	provisioner := numbersApp.NewProvisioner(phoneRepo, bankRepo, carrierClient, billingService, cfg.InboundWebhookBaseURL, appLogger)
	numberService := numbersApp.NewNumberService(dbPool, phoneRepo, bankRepo, provisioner, appLogger)
	poolService := numbersApp.NewPoolService(dbPool, poolRepo, phoneRepo, provisioner, appLogger)
	keywordPoolService := numbersApp.NewKeywordPoolService(dbPool, keywordPoolRepo, phoneRepo, sessionRepo, provisioner, cfg.KeywordSessionTTL, appLogger)
	releaseService := numbersApp.NewReleaseService(numbersApp.ReleaseServiceDeps{
		DB:              dbPool,
		PhoneRepo:       phoneRepo,
		BankRepo:        bankRepo,
		PoolRepo:        poolRepo,
		KeywordPoolRepo: keywordPoolRepo,
		SessionRepo:     sessionRepo,
		Campaigns:       phoneRepo,
		Carrier:         carrierClient,
		Publisher:       publisher,
		TestMode:        cfg.IsCarrierTestMode(),
	}, appLogger)
	idempotencyService := numbersApp.NewIdempotencyService(dbPool, idempotencyRepo, cfg.IdempotencyPendingTimeout, appLogger)
	accountService := accountApp.NewAccountService(accountRepo, companyRepo, numberService, appLogger)
	campaignService := campaignApp.NewCampaignService(dbPool, campaignRepo, poolRepo, phoneRepo, appLogger)
	contactService := contactApp.NewContactService(dbPool, contactRepo, blockedRepo, appLogger)
	exportService := exportApp.NewExportService(dbPool, scheduleRepo, exportPg.NewPgExportSource(appLogger), publisher, cfg.ExportDir, appLogger)

	// HTTP
	validate := httptransport.NewValidator()
	router := httptransport.NewRouter(httptransport.Handlers{
		Auth:           httptransport.NewAuthHandler(authService, validate, appLogger),
		Account:        httptransport.NewAccountHandler(accountService, validate, appLogger),
		Billing:        httptransport.NewBillingHandler(billingService, validate, appLogger),
		Numbers:        httptransport.NewNumberHandler(numberService, releaseService, idempotencyService, validate, appLogger),
		Pools:          httptransport.NewPoolHandler(poolService, releaseService, idempotencyService, validate, appLogger),
		KeywordPools:   httptransport.NewKeywordPoolHandler(keywordPoolService, releaseService, idempotencyService, validate, appLogger),
		Campaigns:      httptransport.NewCampaignHandler(campaignService, validate, appLogger),
		Contacts:       httptransport.NewContactHandler(contactService, accountService, validate, appLogger),
		Exports:        httptransport.NewExportHandler(exportService, validate, appLogger),
		PaymentWebhook: billingHTTP.NewWebhookHandler(billingService, appLogger).HandlePaymentWebhook,
	}, authService, accountService, appLogger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.APIServicePort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler: metricsMux,
	}

	// gRPC health endpoint for orchestrators
	grpcMetrics := grpcprom.NewServerMetrics(grpcprom.WithServerHandlingTimeHistogram())
	if err := prometheus.DefaultRegisterer.Register(grpcMetrics); err != nil {
		appLogger.Warn("Failed to register gRPC Prometheus metrics", "error", err)
	}
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(grpcMetrics.StreamServerInterceptor()),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	grpcMetrics.InitializeMetrics(grpcServer)

	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCHealthPort))
	if err != nil {
		appLogger.Error("Failed to listen for gRPC", "port", cfg.GRPCHealthPort, "error", err)
		os.Exit(1)
	}

	g, groupCtx := errgroup.WithContext(mainCtx)

	g.Go(func() error {
		appLogger.Info("HTTP server starting", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		appLogger.Info("Metrics server starting", "address", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		appLogger.Info("gRPC health server starting", "address", grpcListener.Addr().String())
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
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
		appLogger.Info("Initiating graceful shutdown...")
		healthServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var shutdownErrors error
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			shutdownErrors = errors.Join(shutdownErrors, fmt.Errorf("http shutdown: %w", err))
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			shutdownErrors = errors.Join(shutdownErrors, fmt.Errorf("metrics shutdown: %w", err))
		}
		grpcServer.GracefulStop()
		return shutdownErrors
	})

	appLogger.Info("API service is ready and running.")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("API service stopped with error", "error", err)
		os.Exit(1)
	}
	appLogger.Info("API service shut down successfully.")
}
