package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"price-aggregator/internal/models"
	"price-aggregator/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRefresher struct {
	mock.Mock
}

func (m *MockRefresher) PublishRefreshRequested(ctx context.Context, event *models.CatalogRefreshRequestedEvent) error {
	return m.Called(ctx, event).Error(0)
}

type stubAggregator struct {
	products []models.AdjustedProduct
	err      error
}

func (s stubAggregator) ComputeAdjustedCatalog(ctx context.Context) ([]models.AdjustedProduct, error) {
	return s.products, s.err
}

func newRouter(agg CatalogAggregator) *gin.Engine {
	return newRouterWithRefresher(agg, nil)
}

func newRouterWithRefresher(agg CatalogAggregator, refresher RefreshPublisher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(agg, refresher).SetupRoutes(router)
	return router
}

func post(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	return rec
}

func serve(router *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(rec, req)
	return rec
}

func TestListAdjustedProducts(t *testing.T) {
	router := newRouter(stubAggregator{products: []models.AdjustedProduct{
		{ID: "1", SKU: "ABC123", Name: "Electronic Watch", Price: 100, Type: models.DemandHigh, Image: "image1.jpg"},
		{ID: "2", SKU: "DEF456", Name: "Sports Shoes", Price: 120, Type: models.DemandHigh, Image: "image2.jpg"},
	}})

	rec := serve(router, "/api/v1/products")
	require.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "ABC123", body[0]["SKU"])
	assert.Equal(t, "DEF456", body[1]["SKU"])
	assert.Equal(t, 120.0, body[1]["price"])
	assert.Equal(t, "HIGH_DEMAND", body[1]["type"])
}

func TestListAdjustedProducts_UpstreamFailure(t *testing.T) {
	router := newRouter(stubAggregator{err: &service.AggregationError{
		ProductResponse:   "Internal Server Error",
		InventoryOK:       true,
		InventoryResponse: "OK",
	}})

	rec := serve(router, "/api/v1/products")
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal Server Error", body["product_response"])
	assert.Equal(t, "OK", body["inventory_response"])
	assert.Contains(t, body["details"], "Product Response: Internal Server Error Inventory Response: OK")
}

func TestListAdjustedProducts_Cancelled(t *testing.T) {
	router := newRouter(stubAggregator{err: context.Canceled})

	rec := serve(router, "/api/v1/products")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListAdjustedProducts_UnexpectedError(t *testing.T) {
	router := newRouter(stubAggregator{err: errors.New("boom")})

	rec := serve(router, "/api/v1/products")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthAndReady(t *testing.T) {
	router := newRouter(stubAggregator{})

	assert.Equal(t, http.StatusOK, serve(router, "/health").Code)
	assert.Equal(t, http.StatusOK, serve(router, "/ready").Code)
	assert.Equal(t, http.StatusOK, serve(router, "/metrics").Code)
}

func TestRequestRefresh_PublishesEvent(t *testing.T) {
	refresher := new(MockRefresher)
	refresher.On("PublishRefreshRequested", mock.Anything, mock.MatchedBy(func(e *models.CatalogRefreshRequestedEvent) bool {
		_, err := uuid.Parse(e.EventID)
		return err == nil &&
			e.EventType == models.EventTypeCatalogRefreshRequested &&
			e.RequestedBy == "ops" &&
			!e.Timestamp.IsZero()
	})).Return(nil).Once()
	router := newRouterWithRefresher(stubAggregator{}, refresher)

	rec := post(router, "/api/v1/catalog/refresh", `{"requested_by":"ops"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "queued", body["status"])
	_, err := uuid.Parse(body["request_id"])
	assert.NoError(t, err)
	refresher.AssertExpectations(t)
}

func TestRequestRefresh_EmptyBody(t *testing.T) {
	refresher := new(MockRefresher)
	refresher.On("PublishRefreshRequested", mock.Anything, mock.AnythingOfType("*models.CatalogRefreshRequestedEvent")).Return(nil).Once()
	router := newRouterWithRefresher(stubAggregator{}, refresher)

	rec := post(router, "/api/v1/catalog/refresh", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	refresher.AssertExpectations(t)
}

func TestRequestRefresh_InvalidBody(t *testing.T) {
	refresher := new(MockRefresher)
	router := newRouterWithRefresher(stubAggregator{}, refresher)

	rec := post(router, "/api/v1/catalog/refresh", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	refresher.AssertNotCalled(t, "PublishRefreshRequested", mock.Anything, mock.Anything)
}

func TestRequestRefresh_PublishFailure(t *testing.T) {
	refresher := new(MockRefresher)
	refresher.On("PublishRefreshRequested", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()
	router := newRouterWithRefresher(stubAggregator{}, refresher)

	rec := post(router, "/api/v1/catalog/refresh", `{}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestRefresh_NotRoutedWithoutKafka(t *testing.T) {
	router := newRouter(stubAggregator{})

	rec := post(router, "/api/v1/catalog/refresh", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
