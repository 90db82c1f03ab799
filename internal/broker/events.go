package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"price-aggregator/internal/models"
	"price-aggregator/internal/util"

	"github.com/segmentio/kafka-go"
)

// eventWriter is the part of Producer the publisher needs
type eventWriter interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

// EventPublisher handles publishing catalog events
type EventPublisher struct {
	producer eventWriter
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

func catalogKey(requestID string) string {
	return fmt.Sprintf("catalog-%s", requestID)
}

// PublishRefreshRequested publishes CatalogRefreshRequested event
func (ep *EventPublisher) PublishRefreshRequested(ctx context.Context, event *models.CatalogRefreshRequestedEvent) error {
	return ep.publish(ctx, catalogKey(event.EventID), event.EventType, event)
}

// PublishCatalogPriced publishes CatalogPriced event
func (ep *EventPublisher) PublishCatalogPriced(ctx context.Context, event *models.CatalogPricedEvent) error {
	return ep.publish(ctx, catalogKey(event.RequestID), event.EventType, event)
}

// PublishCatalogPricingFailed publishes CatalogPricingFailed event
func (ep *EventPublisher) PublishCatalogPricingFailed(ctx context.Context, event *models.CatalogPricingFailedEvent) error {
	return ep.publish(ctx, catalogKey(event.RequestID), event.EventType, event)
}

func (ep *EventPublisher) publish(ctx context.Context, key, eventType string, event interface{}) error {
	if err := ep.producer.PublishEvent(ctx, key, event); err != nil {
		return err
	}
	util.CatalogEventsPublished.WithLabelValues(eventType).Inc()
	return nil
}

// DecodeRefreshRequest extracts a refresh request from msg. ok is false for
// any other event type.
func DecodeRefreshRequest(msg kafka.Message) (event *models.CatalogRefreshRequestedEvent, ok bool, err error) {
	var base models.BaseEvent
	if err := json.Unmarshal(msg.Value, &base); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	if base.EventType != models.EventTypeCatalogRefreshRequested {
		return nil, false, nil
	}

	var req models.CatalogRefreshRequestedEvent
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal CatalogRefreshRequested event: %w", err)
	}
	return &req, true, nil
}
