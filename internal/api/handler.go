package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"price-aggregator/internal/models"
	"price-aggregator/internal/service"
	"price-aggregator/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// CatalogAggregator computes the demand-adjusted catalog
type CatalogAggregator interface {
	ComputeAdjustedCatalog(ctx context.Context) ([]models.AdjustedProduct, error)
}

// RefreshPublisher hands refresh requests to the repricing worker
type RefreshPublisher interface {
	PublishRefreshRequested(ctx context.Context, event *models.CatalogRefreshRequestedEvent) error
}

// Handler contains HTTP handlers
type Handler struct {
	aggregator CatalogAggregator
	refresher  RefreshPublisher
	logger     *zap.Logger
}

// NewHandler creates a new HTTP handler. refresher may be nil when Kafka is
// disabled; the refresh route is then not registered.
func NewHandler(aggregator CatalogAggregator, refresher RefreshPublisher) *Handler {
	return &Handler{
		aggregator: aggregator,
		refresher:  refresher,
		logger:     util.GetLogger(),
	}
}

// RefreshRequest is the optional body of a refresh request
type RefreshRequest struct {
	RequestedBy string `json:"requested_by"`
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listAdjustedProducts)
		if h.refresher != nil {
			v1.POST("/catalog/refresh", h.requestRefresh)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// listAdjustedProducts returns the whole catalog with demand-adjusted prices
func (h *Handler) listAdjustedProducts(c *gin.Context) {
	products, err := h.aggregator.ComputeAdjustedCatalog(c.Request.Context())
	if err != nil {
		h.writeAggregationError(c, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// requestRefresh queues an asynchronous repricing of the catalog
func (h *Handler) requestRefresh(c *gin.Context) {
	var req RefreshRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request body",
				"details": err.Error(),
			})
			return
		}
	}

	event := &models.CatalogRefreshRequestedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCatalogRefreshRequested,
			Timestamp: time.Now(),
		},
		RequestedBy: req.RequestedBy,
	}

	if err := h.refresher.PublishRefreshRequested(c.Request.Context(), event); err != nil {
		h.logger.Error("Failed to publish refresh request", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to queue catalog refresh",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"request_id": event.EventID,
		"status":     "queued",
	})
}

func (h *Handler) writeAggregationError(c *gin.Context, err error) {
	var aggErr *service.AggregationError
	switch {
	case errors.As(err, &aggErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":              "Failed to fetch products or inventories",
			"details":            aggErr.Error(),
			"product_response":   aggErr.ProductResponse,
			"inventory_response": aggErr.InventoryResponse,
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Request cancelled",
			"details": err.Error(),
		})
	default:
		h.logger.Error("Unexpected aggregation error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to compute adjusted catalog",
			"details": err.Error(),
		})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
