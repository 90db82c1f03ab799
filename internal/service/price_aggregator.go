package service

import (
	"context"
	"fmt"
	"time"

	"price-aggregator/internal/models"
	"price-aggregator/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source labels used in metrics and logs
const (
	sourceProducts    = "products"
	sourceInventories = "inventories"
)

// PriceAggregator joins the product catalog with the inventory ledger and
// reprices products by demand and total stock.
type PriceAggregator struct {
	products    ProductSource
	inventories InventorySource
	workers     int
	logger      *zap.Logger
}

// NewPriceAggregator creates a new price aggregator. workers bounds the
// per-product pricing fan-out; values below 1 price sequentially.
func NewPriceAggregator(products ProductSource, inventories InventorySource, workers int) *PriceAggregator {
	return &PriceAggregator{
		products:    products,
		inventories: inventories,
		workers:     workers,
		logger:      util.GetLogger(),
	}
}

// ComputeAdjustedCatalog fetches products and inventories concurrently and
// returns every product with its demand-adjusted price, in fetch order.
// Upstream failures are returned as *AggregationError; no partial result is
// ever returned.
func (a *PriceAggregator) ComputeAdjustedCatalog(ctx context.Context) ([]models.AdjustedProduct, error) {
	ctx, span := util.StartSpan(ctx, "PriceAggregator.ComputeAdjustedCatalog")
	defer span.End()

	start := time.Now()
	defer func() {
		util.AggregationLatency.Observe(time.Since(start).Seconds())
	}()

	productRes, inventoryRes := a.fetchBoth(ctx)

	if err := ctx.Err(); err != nil {
		util.AggregationsTotal.WithLabelValues("cancelled").Inc()
		span.SetStatus(codes.Error, "cancelled")
		return nil, err
	}

	if !productRes.OK || !inventoryRes.OK {
		aggErr := &AggregationError{
			ProductOK:         productRes.OK,
			ProductResponse:   productRes.Message,
			InventoryOK:       inventoryRes.OK,
			InventoryResponse: inventoryRes.Message,
		}
		util.AggregationsTotal.WithLabelValues("upstream_failure").Inc()
		span.RecordError(aggErr)
		span.SetStatus(codes.Error, "upstream failure")
		a.logger.Error("Catalog aggregation failed",
			zap.Bool("products_ok", productRes.OK),
			zap.String("product_response", productRes.Message),
			zap.Bool("inventories_ok", inventoryRes.OK),
			zap.String("inventory_response", inventoryRes.Message))
		return nil, aggErr
	}

	adjusted, err := a.priceAll(ctx, productRes.Items, StockBySKU(inventoryRes.Items))
	if err != nil {
		util.AggregationsTotal.WithLabelValues("cancelled").Inc()
		span.SetStatus(codes.Error, "pricing interrupted")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("catalog.products", len(productRes.Items)),
		attribute.Int("catalog.inventories", len(inventoryRes.Items)),
	)
	util.AggregationsTotal.WithLabelValues("success").Inc()
	a.logger.Debug("Catalog aggregated",
		zap.Int("products", len(productRes.Items)),
		zap.Int("inventories", len(inventoryRes.Items)))

	return adjusted, nil
}

// fetchBoth runs both fetches in parallel and waits for both, even when one
// fails early, so the caller always gets both diagnostics.
func (a *PriceAggregator) fetchBoth(ctx context.Context) (FetchResult[models.Product], FetchResult[models.Inventory]) {
	var (
		productRes   FetchResult[models.Product]
		inventoryRes FetchResult[models.Inventory]
		g            errgroup.Group
	)

	g.Go(func() error {
		productRes = fetchGuarded(ctx, sourceProducts, a.products.FetchProducts)
		return nil
	})
	g.Go(func() error {
		inventoryRes = fetchGuarded(ctx, sourceInventories, a.inventories.FetchInventories)
		return nil
	})
	_ = g.Wait()

	return productRes, inventoryRes
}

// fetchGuarded runs one fetch inside its own span and turns a panic into a
// failed result.
func fetchGuarded[T any](ctx context.Context, source string, fetch func(context.Context) FetchResult[T]) (res FetchResult[T]) {
	ctx, span := util.StartSpan(ctx, "fetch."+source)
	defer span.End()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = Failed[T](fmt.Sprintf("%s fetch panicked: %v", source, r))
		}
		util.UpstreamFetchLatency.WithLabelValues(source).Observe(time.Since(start).Seconds())
		if !res.OK {
			util.UpstreamFetchFailures.WithLabelValues(source).Inc()
			span.SetStatus(codes.Error, res.Message)
		}
		span.SetAttributes(attribute.Int("fetch.items", len(res.Items)))
	}()

	return fetch(ctx)
}

// priceAll reprices every product. Each worker writes only its own index, so
// the output keeps the input order.
func (a *PriceAggregator) priceAll(ctx context.Context, products []models.Product, stock map[string]int64) ([]models.AdjustedProduct, error) {
	adjusted := make([]models.AdjustedProduct, len(products))

	if a.workers <= 1 {
		for i := range products {
			adjusted[i] = a.priceOne(products[i], stock[products[i].SKU])
		}
		return adjusted, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i := range products {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			adjusted[i] = a.priceOne(products[i], stock[products[i].SKU])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return adjusted, nil
}

func (a *PriceAggregator) priceOne(p models.Product, totalStock int64) models.AdjustedProduct {
	if !p.Type.Known() {
		util.UnknownDemandTypesTotal.Inc()
		a.logger.Warn("Unrecognised demand type, keeping base price",
			zap.String("sku", p.SKU),
			zap.String("type", string(p.Type)))
	}

	util.PricedProductsTotal.WithLabelValues(PricingTier(p.Type, totalStock)).Inc()
	return models.NewAdjustedProduct(p, AdjustedPrice(p.Type, p.Price, totalStock))
}
