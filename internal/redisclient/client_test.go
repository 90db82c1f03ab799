package redisclient

import (
	"context"
	"testing"

	"price-aggregator/internal/models"
	"price-aggregator/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLedger(t *testing.T) {
	records, err := parseLedger("ABC123", map[string]string{
		"CN_NORTH": "50",
		"CN_EAST":  "100",
	})
	require.NoError(t, err)

	assert.Equal(t, []models.Inventory{
		{ID: "ABC123/CN_EAST", SKU: "ABC123", Zone: "CN_EAST", Quantity: 100},
		{ID: "ABC123/CN_NORTH", SKU: "ABC123", Zone: "CN_NORTH", Quantity: 50},
	}, records)
}

func TestParseLedger_Empty(t *testing.T) {
	records, err := parseLedger("ABC123", map[string]string{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseLedger_RejectsBadQuantities(t *testing.T) {
	_, err := parseLedger("ABC123", map[string]string{"CN_NORTH": "lots"})
	assert.Error(t, err)

	_, err = parseLedger("ABC123", map[string]string{"CN_NORTH": "-5"})
	assert.Error(t, err)
}

func newLedger(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewClientFromRedis(rdb), mr
}

func TestUniqueKeys(t *testing.T) {
	keys := uniqueKeys([]string{"inventory:GHI789", "inventory:ABC123", "inventory:GHI789", "inventory:ABC123"})
	assert.Equal(t, []string{"inventory:ABC123", "inventory:GHI789"}, keys)
	assert.Empty(t, uniqueKeys(nil))
}

func TestFetchInventories_SumsZonesOncePerSKU(t *testing.T) {
	client, _ := newLedger(t)
	ctx := context.Background()

	require.NoError(t, client.SetZoneQuantity(ctx, "ABC123", "CN_NORTH", 50))
	require.NoError(t, client.SetZoneQuantity(ctx, "ABC123", "CN_EAST", 100))
	require.NoError(t, client.SetZoneQuantity(ctx, "GHI789", "EU_CENTRAL", 10))
	require.NoError(t, client.SetZoneQuantity(ctx, "GHI789", "EU_WEST", 10))
	assert.Error(t, client.SetZoneQuantity(ctx, "ABC123", "CN_WEST", -1))

	res := client.FetchInventories(ctx)
	require.True(t, res.OK)
	assert.Equal(t, "OK", res.Message)

	assert.Equal(t, []models.Inventory{
		{ID: "ABC123/CN_EAST", SKU: "ABC123", Zone: "CN_EAST", Quantity: 100},
		{ID: "ABC123/CN_NORTH", SKU: "ABC123", Zone: "CN_NORTH", Quantity: 50},
		{ID: "GHI789/EU_CENTRAL", SKU: "GHI789", Zone: "EU_CENTRAL", Quantity: 10},
		{ID: "GHI789/EU_WEST", SKU: "GHI789", Zone: "EU_WEST", Quantity: 10},
	}, res.Items)

	totals := service.StockBySKU(res.Items)
	assert.Equal(t, int64(150), totals["ABC123"])
	assert.Equal(t, int64(20), totals["GHI789"])
}

func TestFetchInventories_IgnoresOtherKeys(t *testing.T) {
	client, mr := newLedger(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("session:abc", "x"))
	require.NoError(t, client.SetZoneQuantity(ctx, "DEF456", "US_WEST", 100))

	res := client.FetchInventories(ctx)
	require.True(t, res.OK)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "DEF456", res.Items[0].SKU)
}

func TestFetchInventories_EmptyLedger(t *testing.T) {
	client, _ := newLedger(t)

	res := client.FetchInventories(context.Background())

	require.True(t, res.OK)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
}

func TestFetchInventories_BadQuantityFails(t *testing.T) {
	client, mr := newLedger(t)

	mr.HSet("inventory:ABC123", "CN_NORTH", "lots")

	res := client.FetchInventories(context.Background())

	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "invalid quantity")
	assert.Empty(t, res.Items)
}

func TestFetchInventories_ServerDown(t *testing.T) {
	client, mr := newLedger(t)
	mr.Close()

	res := client.FetchInventories(context.Background())

	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "failed to scan inventory keys")
}
