package worker

import (
	"context"
	"errors"
	"time"

	"price-aggregator/internal/broker"
	"price-aggregator/internal/models"
	"price-aggregator/internal/service"
	"price-aggregator/internal/util"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Aggregator computes the adjusted catalog
type Aggregator interface {
	ComputeAdjustedCatalog(ctx context.Context) ([]models.AdjustedProduct, error)
}

// Publisher announces repricing outcomes
type Publisher interface {
	PublishCatalogPriced(ctx context.Context, event *models.CatalogPricedEvent) error
	PublishCatalogPricingFailed(ctx context.Context, event *models.CatalogPricingFailedEvent) error
}

// RepricingWorker reprices the catalog whenever a refresh is requested
type RepricingWorker struct {
	consumer   *broker.Consumer
	aggregator Aggregator
	publisher  Publisher
	logger     *zap.Logger
}

// NewRepricingWorker creates a new repricing worker
func NewRepricingWorker(consumer *broker.Consumer, aggregator Aggregator, publisher Publisher) *RepricingWorker {
	return &RepricingWorker{
		consumer:   consumer,
		aggregator: aggregator,
		publisher:  publisher,
		logger:     util.GetLogger(),
	}
}

// Start starts the worker
func (w *RepricingWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting repricing worker")
	return w.consumer.StartConsuming(ctx, w.HandleMessage)
}

// Stop stops the worker
func (w *RepricingWorker) Stop() error {
	w.logger.Info("Stopping repricing worker")
	return w.consumer.Close()
}

// HandleMessage runs one aggregation per refresh request and publishes the
// outcome. Other event types are acknowledged without work.
func (w *RepricingWorker) HandleMessage(ctx context.Context, msg kafka.Message) error {
	req, ok, err := broker.DecodeRefreshRequest(msg)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	ctx, span := util.StartSpan(ctx, "RepricingWorker.HandleMessage")
	defer span.End()

	w.logger.Info("Repricing catalog",
		zap.String("request_id", req.EventID),
		zap.String("requested_by", req.RequestedBy))

	products, err := w.aggregator.ComputeAdjustedCatalog(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return w.publisher.PublishCatalogPricingFailed(ctx, failedEvent(req.EventID, err))
	}

	return w.publisher.PublishCatalogPriced(ctx, pricedEvent(req.EventID, products))
}

func newBase(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

func pricedEvent(requestID string, products []models.AdjustedProduct) *models.CatalogPricedEvent {
	highDemand := 0
	for _, p := range products {
		if p.Type == models.DemandHigh {
			highDemand++
		}
	}
	return &models.CatalogPricedEvent{
		BaseEvent:       newBase(models.EventTypeCatalogPriced),
		RequestID:       requestID,
		ProductCount:    len(products),
		HighDemandCount: highDemand,
		Products:        products,
	}
}

func failedEvent(requestID string, err error) *models.CatalogPricingFailedEvent {
	event := &models.CatalogPricingFailedEvent{
		BaseEvent: newBase(models.EventTypeCatalogPricingFailed),
		RequestID: requestID,
		Reason:    err.Error(),
	}

	var aggErr *service.AggregationError
	if errors.As(err, &aggErr) {
		event.ProductResponse = aggErr.ProductResponse
		event.InventoryResponse = aggErr.InventoryResponse
	}
	return event
}
