package redisclient

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"price-aggregator/internal/models"
	"price-aggregator/internal/service"
	"price-aggregator/internal/util"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	keyPrefix = "inventory:"
	scanBatch = 500
)

// Client reads the inventory ledger kept in Redis: one hash per SKU under
// "inventory:<SKU>", mapping storage zone to quantity.
type Client struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewClientFromRedis(rdb), nil
}

// NewClientFromRedis wraps an already configured go-redis client
func NewClientFromRedis(rdb *redis.Client) *Client {
	return &Client{rdb: rdb, logger: util.GetLogger()}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func ledgerKey(sku string) string {
	return keyPrefix + sku
}

// SetZoneQuantity records the quantity of a SKU held in one zone
func (c *Client) SetZoneQuantity(ctx context.Context, sku, zone string, quantity int64) error {
	if quantity < 0 {
		return fmt.Errorf("negative quantity %d for %s/%s", quantity, sku, zone)
	}
	return c.rdb.HSet(ctx, ledgerKey(sku), zone, quantity).Err()
}

// GetInventories reads every ledger hash once. Records come back sorted by
// SKU then zone.
func (c *Client) GetInventories(ctx context.Context) ([]models.Inventory, error) {
	var keys []string
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan inventory keys: %w", err)
	}
	keys = uniqueKeys(keys)

	inventories := []models.Inventory{}
	if len(keys) == 0 {
		return inventories, nil
	}

	pipe := c.rdb.Pipeline()
	cmds := make([]*redis.StringStringMapCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.HGetAll(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to read inventory hashes: %w", err)
	}

	for i, key := range keys {
		records, err := parseLedger(strings.TrimPrefix(key, keyPrefix), cmds[i].Val())
		if err != nil {
			return nil, err
		}
		inventories = append(inventories, records...)
	}
	return inventories, nil
}

// uniqueKeys sorts keys and drops repeats; SCAN may return a key more than
// once while the keyspace is rehashed.
func uniqueKeys(keys []string) []string {
	slices.Sort(keys)
	return slices.Compact(keys)
}

// parseLedger turns one hash into inventory records
func parseLedger(sku string, zones map[string]string) ([]models.Inventory, error) {
	names := make([]string, 0, len(zones))
	for zone := range zones {
		names = append(names, zone)
	}
	sort.Strings(names)

	records := make([]models.Inventory, 0, len(names))
	for _, zone := range names {
		qty, err := strconv.ParseInt(zones[zone], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity %q for %s/%s: %w", zones[zone], sku, zone, err)
		}
		if qty < 0 {
			return nil, fmt.Errorf("negative quantity %d for %s/%s", qty, sku, zone)
		}
		records = append(records, models.Inventory{
			ID:       sku + "/" + zone,
			SKU:      sku,
			Zone:     zone,
			Quantity: qty,
		})
	}
	return records, nil
}

// FetchInventories implements service.InventorySource
func (c *Client) FetchInventories(ctx context.Context) service.FetchResult[models.Inventory] {
	inventories, err := c.GetInventories(ctx)
	if err != nil {
		c.logger.Warn("Failed to read inventory ledger", zap.Error(err))
		return service.Failed[models.Inventory](err.Error())
	}
	return service.Succeeded(inventories)
}
