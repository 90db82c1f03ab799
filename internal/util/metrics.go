package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AggregationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_aggregations_total",
		Help: "Total number of catalog aggregations by outcome",
	}, []string{"outcome"})

	AggregationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_aggregation_latency_seconds",
		Help:    "Latency of a full fetch-join-price aggregation",
		Buckets: prometheus.DefBuckets,
	})

	UpstreamFetchLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_fetch_latency_seconds",
		Help:    "Latency of upstream product and inventory fetches",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	UpstreamFetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_fetch_failures_total",
		Help: "Total number of failed upstream fetches",
	}, []string{"source"})

	PricedProductsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "priced_products_total",
		Help: "Total number of products priced by pricing tier",
	}, []string{"tier"})

	UnknownDemandTypesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unknown_demand_types_total",
		Help: "Products seen with an unrecognised demand classification",
	})

	CatalogEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_events_published_total",
		Help: "Total number of catalog events published to Kafka",
	}, []string{"type"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
