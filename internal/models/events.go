package models

import "time"

// Event types
const (
	EventTypeCatalogRefreshRequested = "CATALOG_REFRESH_REQUESTED"
	EventTypeCatalogPriced           = "CATALOG_PRICED"
	EventTypeCatalogPricingFailed    = "CATALOG_PRICING_FAILED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// CatalogRefreshRequestedEvent asks the worker to reprice the catalog
type CatalogRefreshRequestedEvent struct {
	BaseEvent
	RequestedBy string `json:"requested_by,omitempty"`
}

// CatalogPricedEvent published after a successful aggregation
type CatalogPricedEvent struct {
	BaseEvent
	RequestID       string            `json:"request_id"`
	ProductCount    int               `json:"product_count"`
	HighDemandCount int               `json:"high_demand_count"`
	Products        []AdjustedProduct `json:"products"`
}

// CatalogPricingFailedEvent published when either upstream fetch failed
type CatalogPricingFailedEvent struct {
	BaseEvent
	RequestID         string `json:"request_id"`
	ProductResponse   string `json:"product_response,omitempty"`
	InventoryResponse string `json:"inventory_response,omitempty"`
	Reason            string `json:"reason"`
}
