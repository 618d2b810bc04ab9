package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lusopay/paypay-gateway/internal/application/services"
	"github.com/lusopay/paypay-gateway/internal/config"
	"github.com/lusopay/paypay-gateway/internal/infrastructure/orders"
	"github.com/lusopay/paypay-gateway/internal/infrastructure/persistence/postgres"
	"github.com/lusopay/paypay-gateway/internal/infrastructure/processor"
	"github.com/lusopay/paypay-gateway/internal/interfaces/rest/handlers"
	"github.com/lusopay/paypay-gateway/internal/interfaces/rest/middleware"
	"github.com/lusopay/paypay-gateway/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting gateway service",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	loc, err := time.LoadLocation(cfg.Processor.Timezone)
	if err != nil {
		logger.Error("invalid processor timezone", "timezone", cfg.Processor.Timezone, "error", err)
		os.Exit(1)
	}

	recordRepo := postgres.NewRecordRepository(db)
	subscriptionRepo := postgres.NewSubscriptionRepository(db)

	processorClient := processor.NewProcessorClient(cfg.Processor)
	orderGateway := orders.NewOrderGateway(cfg.Shop)

	orderAdapter := services.NewOrderAdapter(orderGateway, recordRepo, logger)
	engine := services.NewEngine(recordRepo, orderAdapter, loc, logger)
	dispatcher := services.NewWebhookDispatcher(engine, logger)
	checkout := services.NewCheckoutService(recordRepo, orderAdapter, processorClient, cfg.Server.PublicBaseURL, logger)
	subscription := services.NewSubscriptionService(processorClient, subscriptionRepo, cfg.Processor.NIF, cfg.Server.PublicBaseURL, logger)

	reconciler := worker.NewReconciler(
		recordRepo,
		processorClient,
		engine,
		cfg.Worker.Interval,
		cfg.Worker.BatchSize,
		logger,
	)

	h := handlers.NewHandlers(dispatcher, checkout, subscription, reconciler, logger)

	mux := http.NewServeMux()
	h.Routes(mux)

	handler := middleware.Recovery(logger)(mux)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Timeout(cfg.Server.ReadTimeout)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go reconciler.Start(workerCtx)

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
