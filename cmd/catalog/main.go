// Command catalog computes the demand-adjusted catalog once and prints it.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"price-aggregator/config"
	"price-aggregator/internal/app"
	"price-aggregator/internal/service"
	"price-aggregator/internal/util"

	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Printf("Failed to initialize logger: %v", err)
		return 1
	}
	defer util.SyncLogger()
	logger := util.GetLogger()

	sources, err := app.BuildSources(cfg)
	if err != nil {
		logger.Error("Failed to initialize upstream sources", zap.Error(err))
		return 1
	}
	defer sources.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	aggregator := service.NewPriceAggregator(sources.Products, sources.Inventories, cfg.Pricing.Workers)
	products, err := aggregator.ComputeAdjustedCatalog(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	for _, p := range products {
		fmt.Println(p)
	}
	return 0
}
