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

	"price-aggregator/config"
	"price-aggregator/internal/api"
	"price-aggregator/internal/app"
	"price-aggregator/internal/broker"
	"price-aggregator/internal/service"
	"price-aggregator/internal/util"
	"price-aggregator/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting price aggregator")

	if cfg.Observ.TracingEnabled {
		tp, err := util.InitTracer(cfg.Observ.JaegerEndpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				logger.Error("Error shutting down tracer", zap.Error(err))
			}
		}()
	}

	sources, err := app.BuildSources(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize upstream sources", zap.Error(err))
	}
	defer sources.Close()

	aggregator := service.NewPriceAggregator(sources.Products, sources.Inventories, cfg.Pricing.Workers)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var (
		repricingWorker *worker.RepricingWorker
		refresher       api.RefreshPublisher
	)
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicCatalog)
		defer producer.Close()

		publisher := broker.NewEventPublisher(producer)
		refresher = publisher

		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicCatalog, cfg.Kafka.ConsumerGroup)
		repricingWorker = worker.NewRepricingWorker(consumer, aggregator, publisher)
		go func() {
			if err := repricingWorker.Start(workerCtx); err != nil && err != context.Canceled {
				logger.Error("Repricing worker error", zap.Error(err))
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(aggregator, refresher)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if repricingWorker != nil {
		_ = repricingWorker.Stop()
	}

	logger.Info("Server exited")
}
